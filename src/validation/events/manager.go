// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package events

import (
	"reflect"
	"sync"
)

// Handler receives every event dispatched through a [Manager].
type Handler interface {
	OnEvent(e Event)
}

// HandlerFunc adapts a function to [Handler]. Function values are not
// comparable, so a HandlerFunc can only be removed through the function
// returned by [Manager.Register].
type HandlerFunc func(e Event)

// OnEvent calls f(e).
func (f HandlerFunc) OnEvent(e Event) { f(e) }

type registration struct {
	id      uint64
	handler Handler
}

// Manager is a registry of event handlers.
//
// Thread Safety: Register, Unregister and Dispatch are safe for concurrent
// use. Dispatch calls handlers outside the lock on a snapshot of the
// registry, so a handler may register or unregister others.
type Manager struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers []registration
}

// NewManager returns a manager with no handlers.
func NewManager() *Manager { return &Manager{} }

// Register adds h and returns a function that removes this registration.
func (m *Manager) Register(h Handler) (unregister func()) {
	if h == nil {
		panic("events: nil handler")
	}
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.handlers = append(m.handlers, registration{id: id, handler: h})
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { m.remove(func(r registration) bool { return r.id == id }) })
	}
}

// Unregister removes every registration of h. Handlers with uncomparable
// dynamic types, such as [HandlerFunc], are left alone.
func (m *Manager) Unregister(h Handler) {
	if h == nil || !reflect.TypeOf(h).Comparable() {
		return
	}
	m.remove(func(r registration) bool {
		return reflect.TypeOf(r.handler).Comparable() && r.handler == h
	})
}

func (m *Manager) remove(match func(registration) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.handlers[:0:0]
	for _, r := range m.handlers {
		if !match(r) {
			kept = append(kept, r)
		}
	}
	m.handlers = kept
}

// Len returns the number of registrations.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers)
}

// Dispatch delivers e to every handler in registration order.
func (m *Manager) Dispatch(e Event) {
	if e == nil {
		return
	}
	m.mu.RLock()
	snapshot := make([]Handler, len(m.handlers))
	for i, r := range m.handlers {
		snapshot[i] = r.handler
	}
	m.mu.RUnlock()

	for _, h := range snapshot {
		h.OnEvent(e)
	}
}
