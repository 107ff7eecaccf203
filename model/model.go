/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/suparena/modelstore/event"
	"github.com/suparena/modelstore/storagemodels"
)

// Model is one instance of a Type. It is not safe for concurrent use.
type Model struct {
	typ       *Type
	attrs     *Attributes
	bus       event.Bus[*Model]
	partition string
	wired     bool
	booted    bool
}

// Type returns the instance's type.
func (m *Model) Type() *Type { return m.typ }

// Partition returns the partition name derived at boot, or "" before boot.
func (m *Model) Partition() string { return m.partition }

// IsBooted reports whether Boot has run.
func (m *Model) IsBooted() bool { return m.booted }

// Attributes exposes the attribute store.
func (m *Model) Attributes() *Attributes { return m.attrs }

func (m *Model) Get(key string) (any, bool) { return m.attrs.Get(key) }

func (m *Model) Value(key string) any { return m.attrs.Value(key) }

// Set overwrites a live field and returns m.
func (m *Model) Set(key string, value any) *Model {
	m.attrs.Set(key, value)
	return m
}

func (m *Model) IsDirty(keys ...string) bool { return m.attrs.IsDirty(keys...) }

func (m *Model) IsClean(keys ...string) bool { return m.attrs.IsClean(keys...) }

// Key returns the live primary-key value, or nil.
func (m *Model) Key() any {
	return m.attrs.Value(m.typ.primaryKey)
}

// ToRecord returns a copy of the live fields.
func (m *Model) ToRecord() storagemodels.Record {
	return m.attrs.ToRecord()
}

// On registers h for kind on this instance only.
func (m *Model) On(kind event.Kind, h Handler) *event.Listener[*Model] {
	return m.bus.On(kind, h)
}

// Once registers h for the next kind event on this instance.
func (m *Model) Once(kind event.Kind, h Handler) *event.Listener[*Model] {
	return m.bus.Once(kind, h)
}

// Off removes a listener returned by On or Once.
func (m *Model) Off(kind event.Kind, l *event.Listener[*Model]) bool {
	return m.bus.Off(kind, l)
}

// Fire emits kind with m as payload.
func (m *Model) Fire(ctx context.Context, kind event.Kind) error {
	return m.bus.Emit(ctx, kind, m)
}

// Fill sets every field of input, a map or a struct, on the live record.
func (m *Model) Fill(input any) error {
	fields, err := EncodeRecord(input)
	if err != nil {
		return fmt.Errorf("fill %s: %w", m.typ.id, err)
	}
	for _, k := range sortedKeys(fields) {
		m.attrs.Set(k, fields[k])
	}
	return nil
}

// Decode copies the live record into out, a pointer to a struct or map.
func (m *Model) Decode(out any) error {
	return DecodeRecord(m.attrs.ToRecord(), out)
}

// MarshalJSON renders the live record.
func (m *Model) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any(m.attrs.ToRecord()))
}

func (t *Type) timestamp() strfmt.DateTime {
	return strfmt.DateTime(t.now().UTC().Truncate(time.Millisecond))
}
