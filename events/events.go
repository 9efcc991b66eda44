// Package events carries publish notifications between the process that changes
// content and the processes caching it.
package events

import (
	"context"
	"sync"
)

// Event announces that content carrying Tag changed. Version, when set, is the
// new version of a global; Path is the site path of a changed document.
type Event struct {
	Tag     string `json:"tag"`
	Version int    `json:"version,omitempty"`
	Path    string `json:"path,omitempty"`
}

// Handler receives events. Handlers must not block for long.
type Handler func(Event)

// Publisher emits events.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Subscriber delivers events to handlers until the returned cancel is called.
type Subscriber interface {
	Subscribe(h Handler) (cancel func(), err error)
}

// Bus is both ends.
type Bus interface {
	Publisher
	Subscriber
	Close() error
}

// Local is an in-process Bus. Publish delivers synchronously to every handler.
type Local struct {
	mu       sync.RWMutex
	next     int
	handlers map[int]Handler
	closed   bool
}

// NewLocal returns an empty in-process bus.
func NewLocal() *Local {
	return &Local{handlers: make(map[int]Handler)}
}

// Publish delivers ev to all current subscribers.
func (l *Local) Publish(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.RLock()
	hs := make([]Handler, 0, len(l.handlers))
	for _, h := range l.handlers {
		hs = append(hs, h)
	}
	l.mu.RUnlock()
	for _, h := range hs {
		h(ev)
	}
	return nil
}

// Subscribe registers h.
func (l *Local) Subscribe(h Handler) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return func() {}, ErrClosed
	}
	id := l.next
	l.next++
	l.handlers[id] = h
	return func() {
		l.mu.Lock()
		delete(l.handlers, id)
		l.mu.Unlock()
	}, nil
}

// Close drops all subscribers.
func (l *Local) Close() error {
	l.mu.Lock()
	l.closed = true
	l.handlers = make(map[int]Handler)
	l.mu.Unlock()
	return nil
}
