package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"dataaccess-backend/internal/domain/models"
	"dataaccess-backend/internal/domain/ports"
	"dataaccess-backend/internal/domain/search"
	"dataaccess-backend/internal/infrastructure/repositories/sqlfilter"
)

// Querier is the part of pgxpool.Pool the registry needs
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// TableAlias qualifies columns of the entity table in generated SQL
const TableAlias = "t"

// Table describes where and how an entity type is stored
type Table[T models.Entity] struct {
	// Name is the schema qualified table name
	Name string
	// Scan reads one row; pgx.RowToAddrOfStructByName fits for structs with db tags
	Scan pgx.RowToFunc[T]
}

// Registry is the PostgreSQL backend adapter: declarative SQL with named parameters
type Registry[T models.Entity] struct {
	db         Querier
	table      Table[T]
	translator sqlfilter.Translator
}

// NewRegistry creates a registry over a pool or any other Querier
func NewRegistry[T models.Entity](db Querier, table Table[T]) *Registry[T] {
	return &Registry[T]{
		db:         db,
		table:      table,
		translator: sqlfilter.NewTranslator("postgresql", TableAlias, sqlfilter.Named, false),
	}
}

// Translator returns the PostgreSQL dialect
func (r *Registry[T]) Translator() search.FilterTranslator {
	return r.translator
}

// Close is a no-op; the pool belongs to the ConnectionManager
func (r *Registry[T]) Close() error {
	return nil
}

var _ ports.Adapter[*models.Todo] = (*Registry[*models.Todo])(nil)
