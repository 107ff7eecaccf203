/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package event

import (
	"context"
	"sync"
)

// Kind identifies a lifecycle event.
type Kind string

// Lifecycle kinds, in the order observers are wired.
const (
	Booting       Kind = "booting"
	Booted        Kind = "booted"
	Fetching      Kind = "fetching"
	Fetched       Kind = "fetched"
	Creating      Kind = "creating"
	Created       Kind = "created"
	Updating      Kind = "updating"
	Updated       Kind = "updated"
	Saving        Kind = "saving"
	Saved         Kind = "saved"
	Deleting      Kind = "deleting"
	Deleted       Kind = "deleted"
	ForceDeleting Kind = "force_deleting"
	ForceDeleted  Kind = "force_deleted"
)

// Kinds returns every lifecycle kind in wiring order.
func Kinds() []Kind {
	return []Kind{
		Booting, Booted, Fetching, Fetched,
		Creating, Created,
		Updating, Updated,
		Saving, Saved,
		Deleting, Deleted,
		ForceDeleting, ForceDeleted,
	}
}

// String implements fmt.Stringer.
func (k Kind) String() string { return string(k) }

// Handler reacts to an event. A non-nil error aborts the emit.
type Handler[P any] func(ctx context.Context, payload P) error

// Listener is the registration token returned by On and Once; pass it to Off.
type Listener[P any] struct {
	handler Handler[P]
	once    bool
}

// Bus is a synchronous, ordered event bus. The zero value is ready to use.
type Bus[P any] struct {
	mu        sync.Mutex
	listeners map[Kind][]*Listener[P]
}

// New creates an empty bus.
func New[P any]() *Bus[P] {
	return &Bus[P]{}
}

// On registers h for kind.
func (b *Bus[P]) On(kind Kind, h Handler[P]) *Listener[P] {
	return b.add(kind, &Listener[P]{handler: h})
}

// Once registers h for the next emit of kind only.
func (b *Bus[P]) Once(kind Kind, h Handler[P]) *Listener[P] {
	return b.add(kind, &Listener[P]{handler: h, once: true})
}

func (b *Bus[P]) add(kind Kind, l *Listener[P]) *Listener[P] {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listeners == nil {
		b.listeners = make(map[Kind][]*Listener[P])
	}
	b.listeners[kind] = append(b.listeners[kind], l)
	return l
}

// Off removes a listener. It reports whether the listener was registered.
func (b *Bus[P]) Off(kind Kind, l *Listener[P]) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.removeLocked(kind, l)
}

func (b *Bus[P]) removeLocked(kind Kind, l *Listener[P]) bool {
	list := b.listeners[kind]
	for i, cur := range list {
		if cur == l {
			next := make([]*Listener[P], 0, len(list)-1)
			next = append(next, list[:i]...)
			next = append(next, list[i+1:]...)
			if len(next) == 0 {
				delete(b.listeners, kind)
			} else {
				b.listeners[kind] = next
			}
			return true
		}
	}
	return false
}

// Emit calls every listener registered for kind at the time of the call, in
// registration order. The first handler error stops the emit and is returned.
func (b *Bus[P]) Emit(ctx context.Context, kind Kind, payload P) error {
	b.mu.Lock()
	snapshot := b.listeners[kind]
	b.mu.Unlock()

	for _, l := range snapshot {
		if l.once {
			b.mu.Lock()
			removed := b.removeLocked(kind, l)
			b.mu.Unlock()
			if !removed {
				continue
			}
		}
		if err := l.handler(ctx, payload); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of listeners registered for kind.
func (b *Bus[P]) Len(kind Kind) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners[kind])
}
