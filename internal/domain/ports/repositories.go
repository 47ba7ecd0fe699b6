package ports

import (
	"context"

	"dataaccess-backend/internal/domain/models"
	"dataaccess-backend/internal/domain/search"
)

type (
	// Reader defines read operations of a backend adapter
	Reader[T models.Entity] interface {
		// Translator returns the filter dialect of the backend
		Translator() search.FilterTranslator

		// Find streams the rows matching the query to consume
		Find(ctx context.Context, q Query, consume func(T) error) error

		// Count returns the number of rows matching the query filter, ignoring sort and window
		Count(ctx context.Context, q Query) (int64, error)

		// FindByID returns ErrNotFound when no row has the id
		FindByID(ctx context.Context, id int64) (T, error)
	}

	// Writer defines write operations of a backend adapter
	Writer[T models.Entity] interface {
		Insert(ctx context.Context, entity T) (T, error)
		Update(ctx context.Context, entity T) (T, error)
		Delete(ctx context.Context, entity T) error
	}

	// Adapter is a backend owning its own connection or session lifecycle
	Adapter[T models.Entity] interface {
		Reader[T]
		Writer[T]
		Close() error
	}

	// PermissionResolver returns the filter clause that scopes an operation of the caller
	// on a resource. An empty clause means no restriction.
	PermissionResolver interface {
		ResolveFilterClause(ctx context.Context, resource, operation string) (string, error)
	}
)
