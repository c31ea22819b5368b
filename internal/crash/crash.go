// Package crash turns process-level failure signals into a single crash
// notification delivered to subscribed listeners.
package crash

import (
	"context"
	"sync"
)

// Listener receives the crash notification.
type Listener interface {
	NotifyCrash()
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func()

// NotifyCrash calls f.
func (f ListenerFunc) NotifyCrash() { f() }

// Handler fans a crash out to its listeners at most once.
type Handler struct {
	mu        sync.Mutex
	listeners []Listener
	crashed   bool
}

// Subscribe registers l. A listener subscribed after the crash is notified
// immediately.
func (h *Handler) Subscribe(l Listener) {
	if l == nil {
		return
	}
	h.mu.Lock()
	if h.crashed {
		h.mu.Unlock()
		l.NotifyCrash()
		return
	}
	h.listeners = append(h.listeners, l)
	h.mu.Unlock()
}

// Notify delivers the crash to every listener. Only the first call has an
// effect.
func (h *Handler) Notify() {
	h.mu.Lock()
	if h.crashed {
		h.mu.Unlock()
		return
	}
	h.crashed = true
	listeners := h.listeners
	h.listeners = nil
	h.mu.Unlock()

	for _, l := range listeners {
		l.NotifyCrash()
	}
}

// Crashed reports whether Notify has run.
func (h *Handler) Crashed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.crashed
}

// Watch notifies when ctx ends, typically a signal.NotifyContext.
func (h *Handler) Watch(ctx context.Context) {
	go func() {
		<-ctx.Done()
		h.Notify()
	}()
}

// Recover is deferred at the top of a goroutine: a panic notifies the
// listeners and then continues unwinding.
func (h *Handler) Recover() {
	if r := recover(); r != nil {
		h.Notify()
		panic(r)
	}
}
