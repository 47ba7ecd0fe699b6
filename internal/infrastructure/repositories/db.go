package repositories

// TableID identifies the table, collection or node label of an entity type
type TableID int

const (
	// TblTodos table 'todos'
	TblTodos TableID = iota
)

// SchemaName database scheme name
const SchemaName = "dataaccess"

// String stringer interface impl
func (tid TableID) String() string {
	return tableID2string[tid]
}

// Qualified returns the schema qualified table name
func (tid TableID) Qualified() string {
	return SchemaName + "." + tid.String()
}

var tableID2string = map[TableID]string{
	TblTodos: "tbl_todo",
}
