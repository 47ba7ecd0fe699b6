package pg

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"dataaccess-backend/internal/domain/ports"
)

const (
	argLimit  = "row_limit"
	argOffset = "row_offset"
	argID     = "id"
)

// Find streams rows matching the query
func (r *Registry[T]) Find(ctx context.Context, q ports.Query, consume func(T) error) error {
	query, args := r.selectSQL(q)
	klog.V(5).Infof("pg: %s %v", query, args)

	rows, err := r.db.Query(ctx, query, args)
	if err != nil {
		return errors.Wrapf(err, "failed to query %s", r.table.Name)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := r.table.Scan(rows)
		if err != nil {
			return errors.Wrapf(err, "failed to scan %s", r.table.Name)
		}
		if err := consume(item); err != nil {
			return err
		}
	}
	return errors.Wrapf(rows.Err(), "failed to read %s", r.table.Name)
}

// Count counts rows matching the query filter
func (r *Registry[T]) Count(ctx context.Context, q ports.Query) (int64, error) {
	query, args := r.countSQL(q)
	klog.V(5).Infof("pg: %s %v", query, args)

	var n int64
	if err := r.db.QueryRow(ctx, query, args).Scan(&n); err != nil {
		return 0, errors.Wrapf(err, "failed to count %s", r.table.Name)
	}
	return n, nil
}

// FindByID returns the row with id
func (r *Registry[T]) FindByID(ctx context.Context, id int64) (T, error) {
	var zero T
	query := "SELECT " + TableAlias + ".* FROM " + r.from("") + " WHERE " + TableAlias + ".id = @" + argID

	rows, err := r.db.Query(ctx, query, pgx.NamedArgs{argID: id})
	if err != nil {
		return zero, errors.Wrapf(err, "failed to query %s", r.table.Name)
	}
	item, err := pgx.CollectExactlyOneRow(rows, r.table.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return zero, ports.ErrNotFound
	}
	if err != nil {
		return zero, errors.Wrapf(err, "failed to scan %s", r.table.Name)
	}
	return item, nil
}

func (r *Registry[T]) from(variables string) string {
	from := r.table.Name + " " + TableAlias
	if variables = strings.TrimSpace(variables); variables != "" {
		from += " " + variables
	}
	return from
}

func (r *Registry[T]) where(q ports.Query) string {
	if q.Filter == "" {
		return ""
	}
	return " WHERE " + q.Filter
}

func (r *Registry[T]) selectSQL(q ports.Query) (string, pgx.NamedArgs) {
	args := pgx.NamedArgs(q.Params.Map())

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(TableAlias)
	sb.WriteString(".* FROM ")
	sb.WriteString(r.from(q.QueryVariables()))
	sb.WriteString(r.where(q))
	if order := r.translator.OrderBy(q.Sort); order != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(order)
	}
	if q.Window.Applied {
		sb.WriteString(" LIMIT @" + argLimit + " OFFSET @" + argOffset)
		args[argLimit] = q.Window.Width()
		args[argOffset] = q.Window.Lower
	}
	return sb.String(), args
}

func (r *Registry[T]) countSQL(q ports.Query) (string, pgx.NamedArgs) {
	query := "SELECT count(*) FROM " + r.from(q.QueryVariables()) + r.where(q)
	return query, pgx.NamedArgs(q.Params.Map())
}
