/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model

import (
	"context"

	"github.com/suparena/modelstore/casing"
	"github.com/suparena/modelstore/errors"
	"github.com/suparena/modelstore/event"
)

// Boot derives the partition, wires the type's observers and fires booting and
// booted. It runs once; later calls return nil without doing anything.
func (m *Model) Boot(ctx context.Context) error {
	if m.booted {
		return nil
	}
	m.bootTable()
	m.bootEvents()
	if err := m.Fire(ctx, event.Booting); err != nil {
		return err
	}
	m.booted = true
	return m.Fire(ctx, event.Booted)
}

func (m *Model) bootTable() {
	if m.typ.table != "" {
		m.partition = casing.Snake(m.typ.table)
		return
	}
	m.partition = casing.Snake(m.typ.id)
}

// bootEvents wires observers at most once, also when a previous Boot failed.
func (m *Model) bootEvents() {
	if m.wired || !m.typ.events || m.typ.observers == nil {
		return
	}
	m.wired = true
	if n := wire(m, m.typ.observers.Lookup(m.typ.id)); n > 0 {
		m.typ.logger.Debug("observers wired", "type", m.typ.id, "handlers", n)
	}
}

func (m *Model) mustBeBooted(op string) error {
	if !m.booted {
		return errors.NewBootError(m.typ.id, op)
	}
	return nil
}

// around fires before, runs fn and fires after. A failing before handler or fn
// stops the sequence and is returned.
func (m *Model) around(ctx context.Context, op string, before, after event.Kind, fn func() error) error {
	if err := m.mustBeBooted(op); err != nil {
		return err
	}
	if err := m.Fire(ctx, before); err != nil {
		return err
	}
	if fn != nil {
		if err := fn(); err != nil {
			m.typ.logger.Debug("model operation failed", "type", m.typ.id, "op", op, "error", err)
			return err
		}
	}
	return m.Fire(ctx, after)
}

// Save fires saving and saved. It does not write to storage.
func (m *Model) Save(ctx context.Context) error {
	return m.around(ctx, "save", event.Saving, event.Saved, nil)
}

// Delete fires deleting and deleted. It does not write to storage; see ForceDelete.
func (m *Model) Delete(ctx context.Context) error {
	return m.around(ctx, "delete", event.Deleting, event.Deleted, nil)
}

// Create inserts the live record and stores the assigned key in the key field.
func (m *Model) Create(ctx context.Context) error {
	return m.around(ctx, "create", event.Creating, event.Created, func() error {
		g, err := m.typ.storage()
		if err != nil {
			return err
		}
		if m.typ.timestamps {
			now := m.typ.timestamp()
			m.attrs.Set(CreatedAt, now)
			m.attrs.Set(UpdatedAt, now)
		}
		key, err := g.Add(ctx, m.partition, m.attrs.ToRecord())
		if err != nil {
			return err
		}
		m.attrs.Set(m.typ.primaryKey, key)
		return nil
	})
}

// Update merges the live record into the stored one and copies the merged
// result back into the live fields. The snapshot is left alone.
func (m *Model) Update(ctx context.Context) error {
	return m.around(ctx, "update", event.Updating, event.Updated, func() error {
		g, err := m.typ.storage()
		if err != nil {
			return err
		}
		key := m.Key()
		if key == nil {
			return errors.NewValidationError(m.typ.primaryKey, "cannot update a model without a key")
		}
		if m.typ.timestamps {
			m.attrs.Set(UpdatedAt, m.typ.timestamp())
		}
		merged, err := g.Update(ctx, m.partition, key, m.attrs.ToRecord())
		if err != nil {
			return err
		}
		for _, k := range sortedKeys(merged) {
			m.attrs.Set(k, merged[k])
		}
		return nil
	})
}

// ForceDelete removes the stored record. force_deleted fires only when the
// removal succeeded.
func (m *Model) ForceDelete(ctx context.Context) error {
	if err := m.mustBeBooted("forceDelete"); err != nil {
		return err
	}
	key := m.Key()
	return m.around(ctx, "forceDelete", event.ForceDeleting, event.ForceDeleted, func() error {
		g, err := m.typ.storage()
		if err != nil {
			return err
		}
		if key == nil {
			return errors.NewValidationError(m.typ.primaryKey, "cannot delete a model without a key")
		}
		return g.Delete(ctx, m.partition, key)
	})
}
