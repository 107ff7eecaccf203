/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model

import (
	"github.com/suparena/modelstore/event"
	"github.com/suparena/modelstore/registry"
)

// Handler receives the model an event was fired for.
type Handler = event.Handler[*Model]

// Factory binds a handler to one model instance.
type Factory func(m *Model) Handler

// Bundle is an observer written as a map from kind to factory.
type Bundle map[event.Kind]Factory

// Observer is any value implementing one or more of the per-kind observer
// interfaces below, or a Bundle.
type Observer any

// ObserverRegistry maps type identifiers to their observers.
type ObserverRegistry = registry.Registry[Observer]

// NewObserverRegistry returns a registry populated by boot on first use.
func NewObserverRegistry(boot func(b *registry.Builder[Observer])) *ObserverRegistry {
	return registry.New(boot)
}

type BootingObserver interface{ Booting(m *Model) Handler }
type BootedObserver interface{ Booted(m *Model) Handler }
type FetchingObserver interface{ Fetching(m *Model) Handler }
type FetchedObserver interface{ Fetched(m *Model) Handler }
type CreatingObserver interface{ Creating(m *Model) Handler }
type CreatedObserver interface{ Created(m *Model) Handler }
type UpdatingObserver interface{ Updating(m *Model) Handler }
type UpdatedObserver interface{ Updated(m *Model) Handler }
type SavingObserver interface{ Saving(m *Model) Handler }
type SavedObserver interface{ Saved(m *Model) Handler }
type DeletingObserver interface{ Deleting(m *Model) Handler }
type DeletedObserver interface{ Deleted(m *Model) Handler }
type ForceDeletingObserver interface{ ForceDeleting(m *Model) Handler }
type ForceDeletedObserver interface{ ForceDeleted(m *Model) Handler }

// factoryFor returns the factory o provides for kind, or nil.
func factoryFor(o Observer, kind event.Kind) Factory {
	if b, ok := o.(Bundle); ok {
		return b[kind]
	}
	switch kind {
	case event.Booting:
		if x, ok := o.(BootingObserver); ok {
			return x.Booting
		}
	case event.Booted:
		if x, ok := o.(BootedObserver); ok {
			return x.Booted
		}
	case event.Fetching:
		if x, ok := o.(FetchingObserver); ok {
			return x.Fetching
		}
	case event.Fetched:
		if x, ok := o.(FetchedObserver); ok {
			return x.Fetched
		}
	case event.Creating:
		if x, ok := o.(CreatingObserver); ok {
			return x.Creating
		}
	case event.Created:
		if x, ok := o.(CreatedObserver); ok {
			return x.Created
		}
	case event.Updating:
		if x, ok := o.(UpdatingObserver); ok {
			return x.Updating
		}
	case event.Updated:
		if x, ok := o.(UpdatedObserver); ok {
			return x.Updated
		}
	case event.Saving:
		if x, ok := o.(SavingObserver); ok {
			return x.Saving
		}
	case event.Saved:
		if x, ok := o.(SavedObserver); ok {
			return x.Saved
		}
	case event.Deleting:
		if x, ok := o.(DeletingObserver); ok {
			return x.Deleting
		}
	case event.Deleted:
		if x, ok := o.(DeletedObserver); ok {
			return x.Deleted
		}
	case event.ForceDeleting:
		if x, ok := o.(ForceDeletingObserver); ok {
			return x.ForceDeleting
		}
	case event.ForceDeleted:
		if x, ok := o.(ForceDeletedObserver); ok {
			return x.ForceDeleted
		}
	}
	return nil
}

// wire registers the observers of the model's type on its bus.
func wire(m *Model, observers []Observer) int {
	n := 0
	for _, o := range observers {
		for _, kind := range event.Kinds() {
			f := factoryFor(o, kind)
			if f == nil {
				continue
			}
			h := f(m)
			if h == nil {
				continue
			}
			m.bus.On(kind, h)
			n++
		}
	}
	return n
}
