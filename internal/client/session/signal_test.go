package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignal(t *testing.T) {
	t.Run("notifies subscribers in order with the new value", func(t *testing.T) {
		s := NewSignal(0)
		var got []string
		s.Subscribe(func(v int) { got = append(got, "a") })
		s.Subscribe(func(v int) {
			assert.Equal(t, v, s.Get(), "value is stored before notifying")
			got = append(got, "b")
		})

		s.Set(7)
		assert.Equal(t, 7, s.Get())
		assert.Equal(t, []string{"a", "b"}, got)
	})

	t.Run("unsubscribe is idempotent", func(t *testing.T) {
		s := NewSignal("")
		calls := 0
		unsubscribe := s.Subscribe(func(string) { calls++ })
		other := 0
		s.Subscribe(func(string) { other++ })

		unsubscribe()
		unsubscribe()
		s.Set("x")

		assert.Zero(t, calls)
		assert.Equal(t, 1, other)
	})
}

func TestBusyFlag(t *testing.T) {
	b := NewBusyFlag()
	var events []bool
	b.Subscribe(func(v bool) { events = append(events, v) })

	outer := b.Acquire()
	inner := b.Acquire()
	assert.True(t, b.Busy())

	inner()
	inner()
	assert.True(t, b.Busy(), "outer still holds the flag")

	outer()
	assert.False(t, b.Busy())
	assert.Equal(t, []bool{true, false}, events)
}
