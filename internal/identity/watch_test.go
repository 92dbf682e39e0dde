package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWatchersFireImmediately(t *testing.T) {
	w := NewWatchers(nil)
	var got []*Session
	unsub := w.Subscribe(func(s *Session) { got = append(got, s) })
	defer unsub()

	assert.Len(t, got, 1)
	assert.Nil(t, got[0])
}

func TestWatchersTransitionsOnly(t *testing.T) {
	w := NewWatchers(nil)
	var calls int
	var last *Session
	unsub := w.Subscribe(func(s *Session) {
		calls++
		last = s
	})

	w.Publish(nil)
	assert.Equal(t, 1, calls, "signed out to signed out is not a transition")

	s := &Session{Email: "admin@iseelevators.in"}
	w.Publish(s)
	assert.Equal(t, 2, calls)
	assert.Equal(t, s, last)

	w.Publish(&Session{Email: "admin@iseelevators.in"})
	assert.Equal(t, 2, calls)

	w.Publish(nil)
	assert.Equal(t, 3, calls)
	assert.Nil(t, last)

	unsub()
	unsub()
	assert.Equal(t, 0, w.Len())

	w.Publish(s)
	assert.Equal(t, 3, calls)
}

func TestWatchersPublishDuringFirstCall(t *testing.T) {
	w := NewWatchers(nil)
	s := &Session{Email: "admin@iseelevators.in"}

	var seen []*Session
	first := true
	unsub := w.Subscribe(func(got *Session) {
		if first {
			first = false
			// Sign-in lands while the listener still handles the initial state.
			w.Publish(s)
		}
		seen = append(seen, got)
	})
	defer unsub()

	assert.Equal(t, []*Session{nil, s}, seen)
	assert.Equal(t, 1, w.Len())

	w.Publish(nil)
	assert.Equal(t, []*Session{nil, s, nil}, seen)
}
