/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model

import (
	"encoding/json"
	"reflect"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/suparena/modelstore/datastore"
	"github.com/suparena/modelstore/storagemodels"
)

// Attributes holds a model's live fields next to the snapshot taken when the
// model was constructed or loaded. The snapshot is never modified.
type Attributes struct {
	live     *orderedmap.OrderedMap[string, any]
	original storagemodels.Record
}

// NewAttributes seeds both snapshots from rec. Fields are ordered by name.
func NewAttributes(rec storagemodels.Record) *Attributes {
	a := &Attributes{
		live:     orderedmap.New[string, any](len(rec)),
		original: rec.Clone(),
	}
	if a.original == nil {
		a.original = storagemodels.Record{}
	}
	for _, k := range sortedKeys(rec) {
		a.live.Set(k, rec[k])
	}
	return a
}

// Set overwrites the live value of key. New keys are appended.
func (a *Attributes) Set(key string, value any) {
	a.live.Set(key, value)
}

// Unset removes key from the live fields.
func (a *Attributes) Unset(key string) {
	a.live.Delete(key)
}

// Get returns the live value of key.
func (a *Attributes) Get(key string) (any, bool) {
	return a.live.Get(key)
}

// Value returns the live value of key, or nil.
func (a *Attributes) Value(key string) any {
	v, _ := a.live.Get(key)
	return v
}

// Original returns the snapshot value of key. ok is false when the snapshot has no such field.
func (a *Attributes) Original(key string) (value any, ok bool) {
	value, ok = a.original[key]
	return value, ok
}

// IsDirty reports whether any field differs from the snapshot. With keys, only
// those fields are checked.
func (a *Attributes) IsDirty(keys ...string) bool {
	if len(keys) == 0 {
		return len(a.Dirty()) > 0 || a.removed()
	}
	for _, k := range keys {
		if a.fieldDirty(k) {
			return true
		}
	}
	return false
}

// IsClean is the negation of IsDirty.
func (a *Attributes) IsClean(keys ...string) bool {
	return !a.IsDirty(keys...)
}

// Dirty returns the live fields that differ from the snapshot.
func (a *Attributes) Dirty() storagemodels.Record {
	out := storagemodels.Record{}
	for pair := a.live.Oldest(); pair != nil; pair = pair.Next() {
		if a.fieldDirty(pair.Key) {
			out[pair.Key] = pair.Value
		}
	}
	return out
}

func (a *Attributes) removed() bool {
	for k := range a.original {
		if _, ok := a.live.Get(k); !ok {
			return true
		}
	}
	return false
}

func (a *Attributes) fieldDirty(key string) bool {
	cur, inLive := a.live.Get(key)
	orig, inOriginal := a.original[key]
	if inLive != inOriginal {
		return true
	}
	return inLive && !same(cur, orig)
}

// ToRecord returns a copy of the live fields.
func (a *Attributes) ToRecord() storagemodels.Record {
	out := make(storagemodels.Record, a.live.Len())
	for pair := a.live.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = pair.Value
	}
	return out
}

// Keys returns the live field names in insertion order.
func (a *Attributes) Keys() []string {
	keys := make([]string, 0, a.live.Len())
	for pair := a.live.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Len returns the number of live fields.
func (a *Attributes) Len() int {
	return a.live.Len()
}

// same is shallow strict equality: values must have the same dynamic type and
// be ==. Numbers of any Go kind compare by value. Maps, slices and funcs are the
// same only when they share storage.
func same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	a, b = foldNumber(a), foldNumber(b)
	switch x := a.(type) {
	case int64:
		if y, ok := b.(float64); ok {
			return float64(x) == y
		}
	case float64:
		if y, ok := b.(int64); ok {
			return x == float64(y)
		}
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Map, reflect.Func:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	return false
}

// foldNumber returns numbers in the form stored records carry them; anything
// else is returned unchanged.
func foldNumber(v any) any {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
		if n, err := datastore.CanonicalValue(v); err == nil {
			return n
		}
	}
	return v
}
