package session

import (
	"context"
	"sync"
)

// ChangeKind enumerates session change notifications.
type ChangeKind string

const (
	ChangeSet   ChangeKind = "set"
	ChangeClear ChangeKind = "clear"
)

// Change is a cross-process session change event.
type Change struct {
	Kind ChangeKind
}

// ChangeHandler reacts to a session change. Handlers must be idempotent:
// several processes may publish the same transition concurrently.
type ChangeHandler func(context.Context, Change)

// Dispatcher fans session changes out to in-process subscribers.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[ChangeKind][]ChangeHandler
}

// NewDispatcher creates a dispatcher instance.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[ChangeKind][]ChangeHandler)}
}

// Subscribe registers a handler for the given change kind.
func (d *Dispatcher) Subscribe(kind ChangeKind, handler ChangeHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = append(d.handlers[kind], handler)
}

// Dispatch synchronously invokes handlers for the given change.
func (d *Dispatcher) Dispatch(ctx context.Context, change Change) {
	d.mu.RLock()
	handlers := append([]ChangeHandler{}, d.handlers[change.Kind]...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		handler(ctx, change)
	}
}

// Pump feeds store notifications into the dispatcher until the context is
// canceled or the subscription closes.
func Pump(ctx context.Context, store *Store, dispatcher *Dispatcher) error {
	changes, cancel, err := store.Watch(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	for {
		select {
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			dispatcher.Dispatch(ctx, change)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
