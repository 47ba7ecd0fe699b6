package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubject_NotifyInOrder(t *testing.T) {
	s := NewSubject()

	var got []string
	s.Subscribe(ObserverFunc(func(e any) { got = append(got, "a:"+e.(string)) }))
	unsubscribe := s.Subscribe(ObserverFunc(func(e any) { got = append(got, "b:"+e.(string)) }))

	s.Notify("x")
	unsubscribe()
	unsubscribe()
	s.Notify("y")

	assert.Equal(t, []string{"a:x", "b:x", "a:y"}, got)
}
