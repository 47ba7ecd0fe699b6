package mem

import (
	"sync"

	"github.com/pkg/errors"

	"dataaccess-backend/internal/domain/models"
	"dataaccess-backend/internal/domain/ports"
	"dataaccess-backend/internal/domain/search"
)

// ErrClosed is returned by a closed registry
var ErrClosed = errors.New("registry is closed")

// Registry is an in-memory backend adapter for one entity type
type Registry[T models.Entity] struct {
	db         *MemDB[T]
	translator Translator
	mu         sync.RWMutex
	closed     bool
}

// NewRegistry creates a new in-memory registry
func NewRegistry[T models.Entity]() *Registry[T] {
	return NewRegistryWithDB(NewMemDB[T]())
}

// NewRegistryWithDB creates a registry over an existing table
func NewRegistryWithDB[T models.Entity](db *MemDB[T]) *Registry[T] {
	return &Registry[T]{db: db}
}

// Seed stores rows, assigning ids to the ones without
func (r *Registry[T]) Seed(rows ...T) {
	for _, row := range rows {
		r.db.Put(clone(row))
	}
}

// Translator returns the memory dialect
func (r *Registry[T]) Translator() search.FilterTranslator {
	return r.translator
}

// Close closes the registry
func (r *Registry[T]) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *Registry[T]) checkOpen() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrClosed
	}
	return nil
}

// cloner is implemented by entities that can copy themselves
type cloner[T any] interface {
	Clone() T
}

// clone keeps callers from mutating stored rows
func clone[T models.Entity](v T) T {
	if c, ok := any(v).(cloner[T]); ok {
		return c.Clone()
	}
	return v
}

var _ ports.Adapter[*models.Todo] = (*Registry[*models.Todo])(nil)
