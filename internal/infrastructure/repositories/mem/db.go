package mem

import (
	"sort"
	"sync"

	"dataaccess-backend/internal/domain/models"
)

// MemDB in-memory table of one entity type
type MemDB[T models.Entity] struct {
	rows map[int64]T
	seq  int64
	mu   sync.RWMutex
}

// NewMemDB creates a new in-memory table
func NewMemDB[T models.Entity]() *MemDB[T] {
	return &MemDB[T]{
		rows: make(map[int64]T),
	}
}

// Snapshot returns all rows ordered by id
func (db *MemDB[T]) Snapshot() []T {
	db.mu.RLock()
	defer db.mu.RUnlock()
	result := make([]T, 0, len(db.rows))
	for _, v := range db.rows {
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].GetID() < result[j].GetID()
	})
	return result
}

// Get returns the row with id
func (db *MemDB[T]) Get(id int64) (T, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	v, ok := db.rows[id]
	return v, ok
}

// Put stores the row, assigning the next id when it has none
func (db *MemDB[T]) Put(v T) T {
	db.mu.Lock()
	defer db.mu.Unlock()
	if v.GetID() == 0 {
		db.seq++
		v.SetID(db.seq)
	} else if v.GetID() > db.seq {
		db.seq = v.GetID()
	}
	db.rows[v.GetID()] = v
	return v
}

// Replace overwrites an existing row, reporting false when it does not exist
func (db *MemDB[T]) Replace(v T) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.rows[v.GetID()]; !ok {
		return false
	}
	db.rows[v.GetID()] = v
	return true
}

// Remove deletes the row with id
func (db *MemDB[T]) Remove(id int64) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.rows[id]; !ok {
		return false
	}
	delete(db.rows, id)
	return true
}

// Len returns the number of rows
func (db *MemDB[T]) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.rows)
}
