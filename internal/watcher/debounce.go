package watcher

import (
	"sync/atomic"
	"time"
)

// pendingEvent tracks an event waiting out the debounce window.
type pendingEvent struct {
	event Event
	timer *time.Timer
}

// debounce schedules event, merging it into a pending event for the same
// path and restarting that path's window.
func (w *Watcher) debounce(event Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	if p, exists := w.pending[event.Path]; exists {
		p.event.Op |= event.Op
		p.event.Timestamp = event.Timestamp
		p.timer.Reset(w.delay)
		return
	}

	p := &pendingEvent{event: event}
	p.timer = time.AfterFunc(w.delay, func() {
		w.fireEvent(event.Path)
	})
	w.pending[event.Path] = p
}

// fireEvent delivers a pending event and removes it from the map.
func (w *Watcher) fireEvent(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, exists := w.pending[path]
	if !exists || w.closed {
		return
	}
	delete(w.pending, path)

	select {
	case w.events <- p.event:
		atomic.AddInt64(&w.totalEvents, 1)
		w.logger.Debug("%s %s", p.event.Op, p.event.Path)
	default:
		w.logger.Warn("event channel full, dropping %s %s", p.event.Op, p.event.Path)
	}
}

// Flush immediately delivers all pending events.
func (w *Watcher) Flush() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path, p := range w.pending {
		p.timer.Stop()
		paths = append(paths, path)
	}
	w.mu.Unlock()

	for _, path := range paths {
		w.fireEvent(path)
	}
}

// PendingCount returns the number of pending events.
func (w *Watcher) PendingCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}
