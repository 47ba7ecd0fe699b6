package mem

import (
	"context"

	"github.com/pkg/errors"

	"dataaccess-backend/internal/domain/ports"
)

// Insert stores a new row and returns it with its id
func (r *Registry[T]) Insert(_ context.Context, entity T) (T, error) {
	var zero T
	if err := r.checkOpen(); err != nil {
		return zero, err
	}
	if entity.GetID() != 0 {
		if _, exists := r.db.Get(entity.GetID()); exists {
			return zero, errors.Errorf("row with id %d already exists", entity.GetID())
		}
	}
	stored := r.db.Put(clone(entity))
	entity.SetID(stored.GetID())
	return entity, nil
}

// Update replaces an existing row
func (r *Registry[T]) Update(_ context.Context, entity T) (T, error) {
	var zero T
	if err := r.checkOpen(); err != nil {
		return zero, err
	}
	if !r.db.Replace(clone(entity)) {
		return zero, errors.Wrapf(ports.ErrNotFound, "update id %d", entity.GetID())
	}
	return entity, nil
}

// Delete removes the row with the entity id
func (r *Registry[T]) Delete(_ context.Context, entity T) error {
	if err := r.checkOpen(); err != nil {
		return err
	}
	if !r.db.Remove(entity.GetID()) {
		return errors.Wrapf(ports.ErrNotFound, "delete id %d", entity.GetID())
	}
	return nil
}
