package models

import "fmt"

// TodoResource is the resource name used for permissions and routing
const TodoResource = "Todo"

// Todo is a single item of a todo list
type Todo struct {
	Audit `bson:",inline"`

	Name string `json:"name" db:"name" bson:"name" gorm:"column:name" validate:"required,max=255"`
}

// NewTodo creates a todo with the given name
func NewTodo(name string) *Todo {
	return &Todo{Name: name}
}

// DefaultTodos returns the rows a fresh memory store starts with
func DefaultTodos() []*Todo {
	return []*Todo{
		NewTodo("wake up"),
		NewTodo("do dishes"),
		NewTodo("take out trash"),
	}
}

// TableName is the gorm table of todos
func (Todo) TableName() string {
	return "tbl_todo"
}

// Properties returns persisted fields keyed by filter name
func (t *Todo) Properties() map[string]any {
	props := t.Audit.Properties()
	props["name"] = t.Name
	return props
}

// TodoFromProperties restores a todo from a property map
func TodoFromProperties(props map[string]any) (*Todo, error) {
	t := &Todo{}
	t.Audit.SetProperties(props)
	if v, ok := props["name"]; ok && v != nil {
		name, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("todo name has type %T", v)
		}
		t.Name = name
	}
	return t, nil
}

// Clone returns a copy
func (t *Todo) Clone() *Todo {
	c := *t
	return &c
}

// String representation for logs
func (t *Todo) String() string {
	return fmt.Sprintf("Todo(id=%d name=%q)", t.ID, t.Name)
}

var _ Entity = (*Todo)(nil)
