// Package services holds the generic access layer that turns search criteria into
// backend queries and runs entity hooks around every operation.
package services

import (
	"context"
	"strconv"
	"time"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"dataaccess-backend/internal/application/validation"
	"dataaccess-backend/internal/domain/models"
	"dataaccess-backend/internal/domain/ports"
	"dataaccess-backend/internal/domain/search"
	"dataaccess-backend/internal/patterns"
	"dataaccess-backend/internal/security"
)

// AccessLayer provides find, count and write operations over one backend adapter
type AccessLayer[T models.Entity] struct {
	adapter  ports.Adapter[T]
	resource string
	hooks    Hooks[T]
	resolver ports.PermissionResolver
	subject  patterns.Subject
	log      logr.Logger
	now      func() time.Time
}

// Option configures an AccessLayer
type Option[T models.Entity] func(*AccessLayer[T])

// WithHooks sets the stage hooks
func WithHooks[T models.Entity](h Hooks[T]) Option[T] {
	return func(a *AccessLayer[T]) { a.hooks = h }
}

// WithResolver sets the permission resolver; without one every operation is allowed
func WithResolver[T models.Entity](r ports.PermissionResolver) Option[T] {
	return func(a *AccessLayer[T]) { a.resolver = r }
}

// WithSubject publishes a ChangeEvent after each mutation
func WithSubject[T models.Entity](s patterns.Subject) Option[T] {
	return func(a *AccessLayer[T]) { a.subject = s }
}

// WithLogger sets the logger
func WithLogger[T models.Entity](l logr.Logger) Option[T] {
	return func(a *AccessLayer[T]) { a.log = l }
}

// WithClock sets the time source of audit stamps
func WithClock[T models.Entity](now func() time.Time) Option[T] {
	return func(a *AccessLayer[T]) { a.now = now }
}

// NewAccessLayer creates an access layer for resource over adapter
func NewAccessLayer[T models.Entity](adapter ports.Adapter[T], resource string, opts ...Option[T]) *AccessLayer[T] {
	a := &AccessLayer[T]{
		adapter:  adapter,
		resource: resource,
		log:      klog.Background(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.WithValues("resource", resource)
	return a
}

// Resource returns the resource name
func (a *AccessLayer[T]) Resource() string {
	return a.resource
}

// Find returns the rows matching criteria. When paging is enabled the matching rows are
// counted first and only the page is fetched; the count is recorded on criteria.
func (a *AccessLayer[T]) Find(ctx context.Context, criteria *search.SearchCriteria) ([]T, error) {
	if criteria == nil {
		criteria = search.NewSearchCriteria()
	}
	h := a.hooks.Find
	if err := call(ctx, h.ValidateBefore, criteria); err != nil {
		return nil, err
	}
	if err := call(ctx, h.Before, criteria); err != nil {
		return nil, err
	}
	criteria.SetRowCount(search.Unset)

	q, err := a.query(ctx, criteria)
	if err != nil {
		return nil, err
	}

	if criteria.IsPaginationEnabled() {
		n, err := a.adapter.Count(ctx, q.Unranged())
		if err != nil {
			a.log.Error(err, "count failed", "query", q.String())
			return nil, err
		}
		criteria.SetRowCount(n)
		q.Criteria.SetRowCount(n)
		if n == 0 {
			return a.afterFind(ctx, nil)
		}
		q.Window = q.Criteria.Window()
	}

	var rows []T
	err = a.adapter.Find(ctx, q, func(row T) error {
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		a.log.Error(err, "find failed", "query", q.String())
		return nil, err
	}
	if criteria.RowCount() == search.Unset {
		criteria.SetRowCount(int64(len(rows)))
	}

	a.log.V(4).Info("find", "criteria", criteria.String(), "window", q.Window, "rows", len(rows))
	return a.afterFind(ctx, rows)
}

func (a *AccessLayer[T]) afterFind(ctx context.Context, rows []T) ([]T, error) {
	h := a.hooks.Find
	for _, row := range rows {
		if err := call(ctx, h.After, row); err != nil {
			return nil, err
		}
	}
	if err := call(ctx, h.ValidateAfter, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// FindOne returns the only row matching criteria. found is false when nothing matches;
// several matches are an *ports.AmbiguousResultError.
func (a *AccessLayer[T]) FindOne(ctx context.Context, criteria *search.SearchCriteria) (ret T, found bool, err error) {
	rows, err := a.Find(ctx, criteria)
	if err != nil {
		return ret, false, err
	}
	switch len(rows) {
	case 0:
		return ret, false, nil
	case 1:
		return rows[0], true, nil
	default:
		return ret, false, &ports.AmbiguousResultError{Resource: a.resource, Count: len(rows)}
	}
}

// FindByID returns the row with id or ports.ErrNotFound. A read filter of the caller's role
// still applies.
func (a *AccessLayer[T]) FindByID(ctx context.Context, id int64) (T, error) {
	var zero T
	c := search.NewSearchCriteria()
	if err := c.AddFilter("id", strconv.FormatInt(id, 10)); err != nil {
		return zero, err
	}
	row, found, err := a.FindOne(ctx, c)
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, errors.Wrapf(ports.ErrNotFound, "%s id %d", a.resource, id)
	}
	return row, nil
}

// FindAll returns every row the caller may read
func (a *AccessLayer[T]) FindAll(ctx context.Context) ([]T, error) {
	return a.Find(ctx, nil)
}

// Count returns the number of rows matching the filter of criteria
func (a *AccessLayer[T]) Count(ctx context.Context, criteria *search.SearchCriteria) (int64, error) {
	if criteria == nil {
		criteria = search.NewSearchCriteria()
	}
	q, err := a.query(ctx, criteria)
	if err != nil {
		return 0, err
	}
	n, err := a.adapter.Count(ctx, q.Unranged())
	if err != nil {
		a.log.Error(err, "count failed", "query", q.String())
		return 0, err
	}
	return n, nil
}

// RowCount returns the number of rows the caller may read
func (a *AccessLayer[T]) RowCount(ctx context.Context) (int64, error) {
	return a.Count(ctx, nil)
}

// query renders criteria for the adapter. The caller's read clause is AND-ed after the
// terms of criteria on a copy, so criteria itself keeps only what the caller asked for.
func (a *AccessLayer[T]) query(ctx context.Context, criteria *search.SearchCriteria) (ports.Query, error) {
	clause, err := a.authorize(ctx, models.OperationRead)
	if err != nil {
		return ports.Query{}, err
	}
	scoped := criteria.Clone()
	if err := scoped.AddFilterString(clause); err != nil {
		return ports.Query{}, errors.WithMessagef(err, "read filter of %s", a.resource)
	}

	tr := a.adapter.Translator()
	fragment, err := scoped.Filter.Render(tr)
	if err != nil {
		return ports.Query{}, err
	}
	params, err := scoped.Filter.Parameters(tr)
	if err != nil {
		return ports.Query{}, err
	}
	sort, err := scoped.SortFields()
	if err != nil {
		return ports.Query{}, err
	}
	return ports.Query{
		Criteria: scoped,
		Filter:   fragment,
		Params:   params,
		Sort:     sort,
	}, nil
}

func (a *AccessLayer[T]) authorize(ctx context.Context, operation string) (string, error) {
	if a.resolver == nil {
		return "", nil
	}
	return a.resolver.ResolveFilterClause(ctx, a.resource, operation)
}

func (a *AccessLayer[T]) principal(ctx context.Context) int64 {
	if p, ok := security.PrincipalFrom(ctx); ok {
		return p.UserID
	}
	return 0
}

// Insert stores a new entity and stamps its audit fields
func (a *AccessLayer[T]) Insert(ctx context.Context, entity T) (T, error) {
	var zero T
	if _, err := a.authorize(ctx, models.OperationCreate); err != nil {
		return zero, err
	}
	ret, err := runWrite(ctx, a.hooks.Insert, entity, func(e T) (T, error) {
		e.SetID(0)
		e.GetAudit().TouchOnCreate(a.principal(ctx), a.now())
		return a.adapter.Insert(ctx, e)
	})
	if err != nil {
		return zero, err
	}
	a.notify(OpInsert, ret)
	return ret, nil
}

// Update overwrites an existing entity; creation audit fields are kept from the stored row
func (a *AccessLayer[T]) Update(ctx context.Context, entity T) (T, error) {
	var zero T
	if _, err := a.authorize(ctx, models.OperationUpdate); err != nil {
		return zero, err
	}
	if entity.GetID() <= 0 {
		return zero, validation.NewValidationError(validation.CodeRequired, "id is required", "id")
	}
	ret, err := runWrite(ctx, a.hooks.Update, entity, func(e T) (T, error) {
		stored, err := a.adapter.FindByID(ctx, e.GetID())
		if err != nil {
			return zero, err
		}
		audit, prev := e.GetAudit(), stored.GetAudit()
		audit.CreatedBy = prev.CreatedBy
		audit.CreateDate = prev.CreateDate
		audit.Version = prev.Version
		audit.TouchOnWrite(a.principal(ctx), a.now())
		return a.adapter.Update(ctx, e)
	})
	if err != nil {
		return zero, err
	}
	a.notify(OpUpdate, ret)
	return ret, nil
}

// Delete removes an entity
func (a *AccessLayer[T]) Delete(ctx context.Context, entity T) error {
	if _, err := a.authorize(ctx, models.OperationDelete); err != nil {
		return err
	}
	ret, err := runWrite(ctx, a.hooks.Delete, entity, func(e T) (T, error) {
		return e, a.adapter.Delete(ctx, e)
	})
	if err != nil {
		return err
	}
	a.notify(OpDelete, ret)
	return nil
}

// DeleteByID removes the entity with id
func (a *AccessLayer[T]) DeleteByID(ctx context.Context, id int64) error {
	entity, err := a.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return a.Delete(ctx, entity)
}

// InsertAll inserts entities in order, each through every insert stage. It stops at the
// first failure and returns the entities stored before it along with the error.
func (a *AccessLayer[T]) InsertAll(ctx context.Context, entities []T) ([]T, error) {
	return a.each(ctx, "insert", entities, a.Insert)
}

// UpdateAll updates entities in order and stops at the first failure
func (a *AccessLayer[T]) UpdateAll(ctx context.Context, entities []T) ([]T, error) {
	return a.each(ctx, "update", entities, a.Update)
}

// DeleteAll deletes entities in order and stops at the first failure
func (a *AccessLayer[T]) DeleteAll(ctx context.Context, entities []T) error {
	_, err := a.each(ctx, "delete", entities, func(ctx context.Context, e T) (T, error) {
		return e, a.Delete(ctx, e)
	})
	return err
}

func (a *AccessLayer[T]) each(ctx context.Context, op string, entities []T, write func(context.Context, T) (T, error)) ([]T, error) {
	ret := make([]T, 0, len(entities))
	for i, e := range entities {
		stored, err := write(ctx, e)
		if err != nil {
			a.log.V(2).Info("bulk write stopped", "op", op, "index", i, "total", len(entities), "error", err.Error())
			return ret, err
		}
		ret = append(ret, stored)
	}
	return ret, nil
}

func (a *AccessLayer[T]) notify(op ChangeOp, entity T) {
	a.log.V(2).Info("changed", "op", op, "id", entity.GetID())
	if a.subject == nil {
		return
	}
	a.subject.Notify(ChangeEvent{
		Resource: a.resource,
		Op:       op,
		ID:       entity.GetID(),
		Entity:   entity,
	})
}
