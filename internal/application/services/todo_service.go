package services

import (
	"context"
	"strings"

	"dataaccess-backend/internal/application/validation"
	"dataaccess-backend/internal/domain/models"
	"dataaccess-backend/internal/domain/ports"
)

// TodoService is the access layer of todos with name normalisation and validation hooks
type TodoService struct {
	*AccessLayer[*models.Todo]
}

// NewTodoService creates the todo access layer. Options given here override the default hooks.
func NewTodoService(adapter ports.Adapter[*models.Todo], opts ...Option[*models.Todo]) *TodoService {
	v := validation.NewStructValidator()
	write := WriteHooks[*models.Todo]{
		ValidateBefore: func(ctx context.Context, t *models.Todo) error {
			return v.Validate(ctx, t)
		},
		Before: func(_ context.Context, t *models.Todo) error {
			t.Name = strings.TrimSpace(t.Name)
			return nil
		},
	}
	hooks := Hooks[*models.Todo]{Insert: write, Update: write}

	opts = append([]Option[*models.Todo]{WithHooks(hooks)}, opts...)
	return &TodoService{
		AccessLayer: NewAccessLayer(adapter, models.TodoResource, opts...),
	}
}
