/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/suparena/modelstore/casing"
)

// Registry maps type identifiers to ordered lists of values. Its content is
// produced by a single boot function, run at most once, and is read-only afterwards.
type Registry[V any] struct {
	boot    func(*Builder[V])
	once    sync.Once
	entries map[string][]V
}

// Builder collects entries while a registry boots. It must not be retained.
type Builder[V any] struct {
	entries map[string][]V
	sealed  bool
}

// New returns a registry whose content is produced by boot on first use.
// A nil boot function yields an empty registry.
func New[V any](boot func(*Builder[V])) *Registry[V] {
	return &Registry[V]{boot: boot}
}

// Of returns an already booted registry holding entries.
func Of[V any](entries map[string][]V) *Registry[V] {
	return New(func(b *Builder[V]) {
		ids := make([]string, 0, len(entries))
		for id := range entries {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			b.Register(id, entries[id]...)
		}
	})
}

// Boot runs the boot function if it has not run yet.
func (r *Registry[V]) Boot() {
	r.once.Do(func() {
		b := &Builder[V]{entries: make(map[string][]V)}
		if r.boot != nil {
			r.boot(b)
		}
		b.sealed = true
		r.entries = b.entries
		r.boot = nil
	})
}

// Lookup returns a copy of the values registered under typeID, in registration order.
func (r *Registry[V]) Lookup(typeID string) []V {
	r.Boot()
	list := r.entries[Key(typeID)]
	if len(list) == 0 {
		return nil
	}
	out := make([]V, len(list))
	copy(out, list)
	return out
}

// Has reports whether anything is registered under typeID.
func (r *Registry[V]) Has(typeID string) bool {
	r.Boot()
	return len(r.entries[Key(typeID)]) > 0
}

// Types returns the normalised identifiers with at least one entry, sorted.
func (r *Registry[V]) Types() []string {
	r.Boot()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Register appends values under typeID.
func (b *Builder[V]) Register(typeID string, values ...V) {
	if b.sealed {
		panic(fmt.Sprintf("registry: register %q after boot", typeID))
	}
	key := Key(typeID)
	if key == "" {
		panic("registry: empty type identifier")
	}
	b.entries[key] = append(b.entries[key], values...)
}

// RegisterType appends values under the Go type name of T.
func RegisterType[T any, V any](b *Builder[V], values ...V) {
	b.Register(TypeName[T](), values...)
}

// Key normalises a type identifier so that "user_profile", "userProfile" and
// "UserProfile" name the same type.
func Key(typeID string) string {
	return casing.Pascal(typeID)
}

// TypeName returns the name of T with pointers dereferenced.
func TypeName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
