package patterns

import (
	"sync"
)

// Subject represents an observable subject
type Subject interface {
	// Subscribe registers an observer and returns a func removing it
	Subscribe(observer Observer) (unsubscribe func())
	// Notify notifies all observers
	Notify(event any)
}

// Observer receives events of a subject
type Observer interface {
	OnEvent(event any)
}

// ObserverFunc adapts a func to Observer
type ObserverFunc func(event any)

// OnEvent calls f
func (f ObserverFunc) OnEvent(event any) {
	f(event)
}

// NewSubject creates a subject notifying observers synchronously in subscription order
func NewSubject() Subject {
	return &subject{observers: make(map[uint64]Observer)}
}

type subject struct {
	mu        sync.RWMutex
	next      uint64
	order     []uint64
	observers map[uint64]Observer
}

func (s *subject) Subscribe(observer Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.observers[id] = observer
	s.order = append(s.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.observers, id)
			for i, o := range s.order {
				if o == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (s *subject) Notify(event any) {
	s.mu.RLock()
	observers := make([]Observer, 0, len(s.order))
	for _, id := range s.order {
		observers = append(observers, s.observers[id])
	}
	s.mu.RUnlock()

	for _, o := range observers {
		o.OnEvent(event)
	}
}
