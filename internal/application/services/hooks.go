package services

import (
	"context"

	"dataaccess-backend/internal/domain/models"
	"dataaccess-backend/internal/domain/search"
)

// FindHooks run around a read. After sees each row, ValidateAfter the whole result.
type FindHooks[T models.Entity] struct {
	ValidateBefore func(ctx context.Context, c *search.SearchCriteria) error
	Before         func(ctx context.Context, c *search.SearchCriteria) error
	After          func(ctx context.Context, row T) error
	ValidateAfter  func(ctx context.Context, rows []T) error
}

// WriteHooks run around an insert, update or delete
type WriteHooks[T models.Entity] struct {
	ValidateBefore func(ctx context.Context, entity T) error
	Before         func(ctx context.Context, entity T) error
	After          func(ctx context.Context, entity T) error
	ValidateAfter  func(ctx context.Context, entity T) error
}

// Hooks customise the stages of every operation; nil stages are skipped.
// A failing stage aborts the stages after it.
type Hooks[T models.Entity] struct {
	Find   FindHooks[T]
	Insert WriteHooks[T]
	Update WriteHooks[T]
	Delete WriteHooks[T]
}

func call[V any](ctx context.Context, hook func(context.Context, V) error, v V) error {
	if hook == nil {
		return nil
	}
	return hook(ctx, v)
}

// runWrite runs validateBefore, before, implement, after and validateAfter in order
func runWrite[T models.Entity](ctx context.Context, h WriteHooks[T], entity T, implement func(T) (T, error)) (T, error) {
	var zero T
	if err := call(ctx, h.ValidateBefore, entity); err != nil {
		return zero, err
	}
	if err := call(ctx, h.Before, entity); err != nil {
		return zero, err
	}
	ret, err := implement(entity)
	if err != nil {
		return zero, err
	}
	if err := call(ctx, h.After, ret); err != nil {
		return zero, err
	}
	if err := call(ctx, h.ValidateAfter, ret); err != nil {
		return zero, err
	}
	return ret, nil
}
