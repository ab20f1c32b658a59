package shortcut

import (
	"context"
	"sync"
)

// Listener handles one dispatched event.
type Listener func(*Event)

// EventTarget accepts listener registrations. The returned func removes the
// listener; calling it more than once is harmless.
type EventTarget interface {
	AddEventListener(t EventType, l Listener) (remove func())
}

// Navigator carries the environment strings used for OS detection.
type Navigator struct {
	UserAgent string `json:"userAgent"`
	Platform  string `json:"platform"`
}

// Environment is a windowing environment: an event target plus navigator data.
type Environment interface {
	EventTarget
	Navigator() Navigator
}

type listenerEntry struct {
	id uint64
	fn Listener
}

// Window is an in-memory Environment. Events reach listeners only through
// Dispatch or Run, so it doubles as a fake event stream in tests.
//
// Listener registration is safe from any goroutine. Dispatch must be driven
// by a single goroutine at a time; handlers run synchronously on it.
type Window struct {
	nav Navigator

	mu        sync.Mutex
	nextID    uint64
	listeners map[EventType][]listenerEntry
}

// NewWindow creates a Window reporting nav from Navigator.
func NewWindow(nav Navigator) *Window {
	return &Window{
		nav:       nav,
		listeners: make(map[EventType][]listenerEntry),
	}
}

// Navigator returns the navigator strings the window was created with.
func (w *Window) Navigator() Navigator {
	if w == nil {
		return Navigator{}
	}
	return w.nav
}

// AddEventListener registers l for events of type t.
func (w *Window) AddEventListener(t EventType, l Listener) func() {
	if w == nil || l == nil {
		return func() {}
	}

	w.mu.Lock()
	w.nextID++
	id := w.nextID
	w.listeners[t] = append(w.listeners[t], listenerEntry{id: id, fn: l})
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { w.removeListener(t, id) })
	}
}

func (w *Window) removeListener(t EventType, id uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	entries := w.listeners[t]
	for i, e := range entries {
		if e.id == id {
			// Copy so that snapshots taken by an in-flight Dispatch stay intact.
			next := make([]listenerEntry, 0, len(entries)-1)
			next = append(next, entries[:i]...)
			next = append(next, entries[i+1:]...)
			w.listeners[t] = next
			return
		}
	}
}

// ListenerCount returns the number of listeners registered for t.
func (w *Window) ListenerCount(t EventType) int {
	if w == nil {
		return 0
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.listeners[t])
}

// Dispatch delivers ev to the listeners registered for its type, in
// registration order. Listeners added or removed during the dispatch take
// effect from the next event.
func (w *Window) Dispatch(ev *Event) {
	if w == nil || ev == nil {
		return
	}

	w.mu.Lock()
	snapshot := w.listeners[ev.Type]
	w.mu.Unlock()

	for _, e := range snapshot {
		e.fn(ev)
	}
}

// Run dispatches events from the channel until it is closed or ctx is done.
// It is the window's event loop: every event is fully handled before the
// next one is received.
func (w *Window) Run(ctx context.Context, events <-chan *Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			w.Dispatch(ev)
		}
	}
}
