// Package orm is the object session store backend built on gorm.
// Every operation opens a fresh session from the shared *gorm.DB.
package orm

import (
	"context"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"dataaccess-backend/internal/domain/models"
	"dataaccess-backend/internal/domain/ports"
	"dataaccess-backend/internal/domain/search"
	"dataaccess-backend/internal/infrastructure/repositories/sqlfilter"
)

// Registry is the gorm backend adapter; filters bind positional ? parameters
type Registry[T models.Entity] struct {
	db         *gorm.DB
	table      string
	newEntity  func() T
	translator sqlfilter.Translator
}

// NewRegistry creates a registry for the table. newEntity allocates an empty row.
func NewRegistry[T models.Entity](db *gorm.DB, table string, newEntity func() T) *Registry[T] {
	return &Registry[T]{
		db:         db,
		table:      table,
		newEntity:  newEntity,
		translator: sqlfilter.NewTranslator("gorm", "", sqlfilter.Positional, true),
	}
}

// Translator returns the positional SQL dialect
func (r *Registry[T]) Translator() search.FilterTranslator {
	return r.translator
}

// Close is a no-op; the session factory is shared
func (r *Registry[T]) Close() error {
	return nil
}

func (r *Registry[T]) session(ctx context.Context) (*gorm.DB, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.db.New().Table(r.table), nil
}

// scoped applies query variables as joins and the rendered filter
func (r *Registry[T]) scoped(s *gorm.DB, q ports.Query) *gorm.DB {
	if v := q.QueryVariables(); v != "" {
		s = s.Joins(v)
	}
	if q.Filter != "" {
		s = s.Where(q.Filter, q.Params.Values()...)
	}
	return s
}

// Find loads matching rows in one statement and hands them to consume
func (r *Registry[T]) Find(ctx context.Context, q ports.Query, consume func(T) error) error {
	s, err := r.session(ctx)
	if err != nil {
		return err
	}
	s = r.scoped(s, q)
	if order := r.translator.OrderBy(q.Sort); order != "" {
		s = s.Order(order)
	}
	if q.Window.Applied {
		s = s.Offset(q.Window.Lower).Limit(q.Window.Width())
	}

	var rows []T
	if err := s.Find(&rows).Error; err != nil {
		return errors.Wrapf(err, "failed to query %s", r.table)
	}
	klog.V(5).Infof("orm: find %s returned %d rows", q, len(rows))

	for _, row := range rows {
		if err := consume(row); err != nil {
			return err
		}
	}
	return nil
}

// Count counts rows matching the filter
func (r *Registry[T]) Count(ctx context.Context, q ports.Query) (int64, error) {
	s, err := r.session(ctx)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := r.scoped(s, q).Count(&n).Error; err != nil {
		return 0, errors.Wrapf(err, "failed to count %s", r.table)
	}
	return n, nil
}

// FindByID loads the row with id
func (r *Registry[T]) FindByID(ctx context.Context, id int64) (T, error) {
	var zero T
	s, err := r.session(ctx)
	if err != nil {
		return zero, err
	}
	item := r.newEntity()
	err = s.Where("id = ?", id).First(item).Error
	if gorm.IsRecordNotFoundError(err) {
		return zero, ports.ErrNotFound
	}
	if err != nil {
		return zero, errors.Wrapf(err, "failed to load %s", r.table)
	}
	return item, nil
}

// Insert creates the row; gorm fills in the generated id
func (r *Registry[T]) Insert(ctx context.Context, entity T) (T, error) {
	var zero T
	s, err := r.session(ctx)
	if err != nil {
		return zero, err
	}
	if err := s.Create(entity).Error; err != nil {
		return zero, errors.Wrapf(err, "failed to insert into %s", r.table)
	}
	return entity, nil
}

// Update saves every field of an existing row
func (r *Registry[T]) Update(ctx context.Context, entity T) (T, error) {
	var zero T
	s, err := r.session(ctx)
	if err != nil {
		return zero, err
	}
	res := s.Where("id = ?", entity.GetID()).Updates(columns(entity))
	if res.Error != nil {
		return zero, errors.Wrapf(res.Error, "failed to update %s", r.table)
	}
	if res.RowsAffected == 0 {
		return zero, errors.Wrapf(ports.ErrNotFound, "update %s id %d", r.table, entity.GetID())
	}
	return entity, nil
}

// Delete removes the row of the entity
func (r *Registry[T]) Delete(ctx context.Context, entity T) error {
	s, err := r.session(ctx)
	if err != nil {
		return err
	}
	res := s.Where("id = ?", entity.GetID()).Delete(r.newEntity())
	if res.Error != nil {
		return errors.Wrapf(res.Error, "failed to delete from %s", r.table)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(ports.ErrNotFound, "delete %s id %d", r.table, entity.GetID())
	}
	return nil
}

// columns maps properties to column names, the id excluded
func columns(entity models.Entity) map[string]interface{} {
	ret := make(map[string]interface{})
	for key, value := range entity.Properties() {
		if key == "id" {
			continue
		}
		ret[sqlfilter.ColumnName(key)] = value
	}
	return ret
}

var _ ports.Adapter[*models.Todo] = (*Registry[*models.Todo])(nil)
