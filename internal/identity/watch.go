package identity

import (
	"sync"
)

// Watchers fans the signed-in state out to listeners. A listener is called
// once on Subscribe with the current state and afterwards only when the
// state flips between signed in and signed out.
type Watchers struct {
	mu      sync.Mutex
	current *Session
	subs    map[int]func(*Session)
	next    int
}

func NewWatchers(initial *Session) *Watchers {
	return &Watchers{
		current: initial,
		subs:    make(map[int]func(*Session)),
	}
}

// Subscribe registers cb and returns its unsubscribe func. Calling the func
// more than once is a no-op. cb joins the listeners only after it has seen
// the latest state, so a Publish racing with Subscribe is never delivered
// ahead of the initial call.
func (w *Watchers) Subscribe(cb func(*Session)) func() {
	w.mu.Lock()
	current := w.current
	w.mu.Unlock()

	cb(current)

	w.mu.Lock()
	for (w.current == nil) != (current == nil) {
		current = w.current
		w.mu.Unlock()
		cb(current)
		w.mu.Lock()
	}
	id := w.next
	w.next++
	w.subs[id] = cb
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.subs, id)
			w.mu.Unlock()
		})
	}
}

func (w *Watchers) Current() *Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Publish records the new state and notifies listeners if it is a transition.
func (w *Watchers) Publish(s *Session) {
	w.mu.Lock()
	changed := (w.current == nil) != (s == nil)
	w.current = s
	if !changed {
		w.mu.Unlock()
		return
	}
	cbs := make([]func(*Session), 0, len(w.subs))
	for _, cb := range w.subs {
		cbs = append(cbs, cb)
	}
	w.mu.Unlock()

	for _, cb := range cbs {
		cb(s)
	}
}

// Len is the number of active listeners.
func (w *Watchers) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.subs)
}
