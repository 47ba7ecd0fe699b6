package pg

import (
	"context"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"dataaccess-backend/internal/domain/ports"
	"dataaccess-backend/internal/infrastructure/repositories/sqlfilter"
)

// Insert writes a new row and sets the generated id
func (r *Registry[T]) Insert(ctx context.Context, entity T) (T, error) {
	var zero T
	columns, args := r.columns(entity)

	marks := make([]string, 0, len(columns))
	for _, c := range columns {
		marks = append(marks, "@"+c)
	}
	query := "INSERT INTO " + r.table.Name + " (" + strings.Join(columns, ", ") +
		") VALUES (" + strings.Join(marks, ", ") + ") RETURNING id"

	var id int64
	if err := r.db.QueryRow(ctx, query, args).Scan(&id); err != nil {
		return zero, errors.Wrapf(err, "failed to insert into %s", r.table.Name)
	}
	entity.SetID(id)
	return entity, nil
}

// Update rewrites every column of an existing row
func (r *Registry[T]) Update(ctx context.Context, entity T) (T, error) {
	var zero T
	columns, args := r.columns(entity)

	sets := make([]string, 0, len(columns))
	for _, c := range columns {
		sets = append(sets, c+" = @"+c)
	}
	args[argID] = entity.GetID()
	query := "UPDATE " + r.table.Name + " SET " + strings.Join(sets, ", ") + " WHERE id = @" + argID

	tag, err := r.db.Exec(ctx, query, args)
	if err != nil {
		return zero, errors.Wrapf(err, "failed to update %s", r.table.Name)
	}
	if tag.RowsAffected() == 0 {
		return zero, errors.Wrapf(ports.ErrNotFound, "update %s id %d", r.table.Name, entity.GetID())
	}
	return entity, nil
}

// Delete removes the row of the entity
func (r *Registry[T]) Delete(ctx context.Context, entity T) error {
	query := "DELETE FROM " + r.table.Name + " WHERE id = @" + argID
	tag, err := r.db.Exec(ctx, query, pgx.NamedArgs{argID: entity.GetID()})
	if err != nil {
		return errors.Wrapf(err, "failed to delete from %s", r.table.Name)
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(ports.ErrNotFound, "delete %s id %d", r.table.Name, entity.GetID())
	}
	return nil
}

// columns returns sorted column names of all properties but the id, and their values
func (r *Registry[T]) columns(entity T) ([]string, pgx.NamedArgs) {
	args := pgx.NamedArgs{}
	for key, value := range entity.Properties() {
		if key == argID {
			continue
		}
		args[sqlfilter.ColumnName(key)] = value
	}

	columns := make([]string, 0, len(args))
	for c := range args {
		columns = append(columns, c)
	}
	sort.Strings(columns)
	return columns, args
}
