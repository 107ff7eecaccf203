/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package datastoretest holds the contract suite shared by every datastore.Backend.
package datastoretest

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/modelstore/datastore"
	"github.com/suparena/modelstore/errors"
	"github.com/suparena/modelstore/storagemodels"
)

// Opener returns a backend over the storage created by a Factory. Calling it
// again after Close must give a backend that sees the same data.
type Opener func() datastore.Backend

// Factory prepares fresh storage for one test.
type Factory func(t *testing.T) Opener

var dbSeq atomic.Int64

// DatabaseName returns a database name that is unique within the process run.
func DatabaseName() string {
	return fmt.Sprintf("ct%d_%d", time.Now().Unix()%100000, dbSeq.Add(1))
}

// Config returns the two-partition configuration used by the suite.
func Config(name string, version int) storagemodels.DatabaseConfig {
	return storagemodels.DatabaseConfig{
		Name:    name,
		Version: version,
		Partitions: []storagemodels.PartitionConfig{
			{Name: "users", KeyPath: "id", AutoIncrement: true},
			{Name: "sessions", KeyPath: "token"},
		},
	}
}

// RunBackendContract verifies that a Backend implementation honours the datastore contract.
func RunBackendContract(t *testing.T, factory Factory) {
	ctx := context.Background()

	open := func(t *testing.T, cfg storagemodels.DatabaseConfig) (datastore.Backend, Opener) {
		opener := factory(t)
		b := opener()
		require.NoError(t, cfg.Validate())
		_, err := b.Open(ctx, cfg)
		require.NoError(t, err, "Open should not fail")
		t.Cleanup(func() { _ = b.Close() })
		return b, opener
	}

	add := func(t *testing.T, b datastore.Backend, partition string, rec storagemodels.Record) any {
		var key any
		err := b.Update(ctx, partition, func(tx datastore.Txn) error {
			var err error
			key, err = tx.Add(ctx, rec)
			return err
		})
		require.NoError(t, err)
		return key
	}

	getAll := func(t *testing.T, b datastore.Backend, partition string) []storagemodels.Record {
		var out []storagemodels.Record
		err := b.View(ctx, partition, func(tx datastore.Txn) error {
			var err error
			out, err = tx.GetAll(ctx)
			return err
		})
		require.NoError(t, err)
		return out
	}

	get := func(t *testing.T, b datastore.Backend, partition string, key any) storagemodels.Record {
		var out storagemodels.Record
		err := b.View(ctx, partition, func(tx datastore.Txn) error {
			var err error
			out, err = tx.Get(ctx, key)
			return err
		})
		require.NoError(t, err)
		return out
	}

	t.Run("Open creates configured partitions", func(t *testing.T) {
		opener := factory(t)
		b := opener()
		defer b.Close()

		cfg := Config(DatabaseName(), 1)
		require.NoError(t, cfg.Validate())
		schema, err := b.Open(ctx, cfg)
		require.NoError(t, err)
		assert.Equal(t, 1, schema.Version)
		assert.Equal(t, []string{"sessions", "users"}, schema.Names())
		assert.True(t, schema.Partitions["users"].AutoIncrement)
		assert.Equal(t, "token", schema.Partitions["sessions"].KeyPath)
	})

	t.Run("Auto-increment keys", func(t *testing.T) {
		b, _ := open(t, Config(DatabaseName(), 1))

		assert.Equal(t, int64(1), add(t, b, "users", storagemodels.Record{"name": "a"}))
		assert.Equal(t, int64(2), add(t, b, "users", storagemodels.Record{"name": "b"}))
		assert.Equal(t, int64(10), add(t, b, "users", storagemodels.Record{"id": 10, "name": "c"}))
		assert.Equal(t, int64(11), add(t, b, "users", storagemodels.Record{"name": "d"}), "explicit keys advance the generator")

		rec := get(t, b, "users", 2)
		require.NotNil(t, rec)
		assert.Equal(t, "b", rec["name"])
		assert.Equal(t, int64(2), rec["id"])
	})

	t.Run("Add existing key fails", func(t *testing.T) {
		b, _ := open(t, Config(DatabaseName(), 1))
		add(t, b, "sessions", storagemodels.Record{"token": "t1", "user": 1})

		err := b.Update(ctx, "sessions", func(tx datastore.Txn) error {
			_, err := tx.Add(ctx, storagemodels.Record{"token": "t1", "user": 2})
			return err
		})
		assert.True(t, errors.IsAlreadyExists(err), "expected already exists, got %v", err)
		assert.Equal(t, int64(1), get(t, b, "sessions", "t1")["user"])
	})

	t.Run("Add without key on keyed partition fails", func(t *testing.T) {
		b, _ := open(t, Config(DatabaseName(), 1))
		err := b.Update(ctx, "sessions", func(tx datastore.Txn) error {
			_, err := tx.Add(ctx, storagemodels.Record{"user": 1})
			return err
		})
		assert.True(t, errors.IsValidationError(err), "expected validation error, got %v", err)
	})

	t.Run("Put upserts", func(t *testing.T) {
		b, _ := open(t, Config(DatabaseName(), 1))
		for _, user := range []int{1, 2} {
			err := b.Update(ctx, "sessions", func(tx datastore.Txn) error {
				_, err := tx.Put(ctx, storagemodels.Record{"token": "t1", "user": user})
				return err
			})
			require.NoError(t, err)
		}
		all := getAll(t, b, "sessions")
		require.Len(t, all, 1)
		assert.Equal(t, int64(2), all[0]["user"])
	})

	t.Run("Get absent key", func(t *testing.T) {
		b, _ := open(t, Config(DatabaseName(), 1))
		assert.Nil(t, get(t, b, "users", 404))
		assert.Nil(t, get(t, b, "sessions", "missing"))
	})

	t.Run("Delete", func(t *testing.T) {
		b, _ := open(t, Config(DatabaseName(), 1))
		key := add(t, b, "users", storagemodels.Record{"name": "a"})

		del := func(k any) error {
			return b.Update(ctx, "users", func(tx datastore.Txn) error { return tx.Delete(ctx, k) })
		}
		require.NoError(t, del(key))
		assert.Nil(t, get(t, b, "users", key))
		assert.NoError(t, del(key), "deleting an absent key is not an error")
	})

	t.Run("GetAll orders by key", func(t *testing.T) {
		b, _ := open(t, Config(DatabaseName(), 1))
		for _, tok := range []string{"b", "c", "a"} {
			add(t, b, "sessions", storagemodels.Record{"token": tok})
		}
		var tokens []any
		for _, r := range getAll(t, b, "sessions") {
			tokens = append(tokens, r["token"])
		}
		assert.Equal(t, []any{"a", "b", "c"}, tokens)

		for _, id := range []int{30, 4, 200} {
			add(t, b, "users", storagemodels.Record{"id": id})
		}
		var ids []any
		for _, r := range getAll(t, b, "users") {
			ids = append(ids, r["id"])
		}
		assert.Equal(t, []any{int64(4), int64(30), int64(200)}, ids)
	})

	t.Run("Values round-trip", func(t *testing.T) {
		b, _ := open(t, Config(DatabaseName(), 1))
		key := add(t, b, "users", storagemodels.Record{
			"name":   "ada",
			"age":    36,
			"score":  2.5,
			"active": true,
			"tags":   []any{"x", "y"},
			"meta":   map[string]any{"level": 3},
		})
		rec := get(t, b, "users", key)
		require.NotNil(t, rec)
		assert.Equal(t, "ada", rec["name"])
		assert.Equal(t, int64(36), rec["age"])
		assert.Equal(t, 2.5, rec["score"])
		assert.Equal(t, true, rec["active"])
		assert.Equal(t, []any{"x", "y"}, rec["tags"])
		assert.Equal(t, map[string]any{"level": int64(3)}, rec["meta"])
	})

	t.Run("Failed update discards writes", func(t *testing.T) {
		b, _ := open(t, Config(DatabaseName(), 1))
		boom := stderrors.New("boom")
		err := b.Update(ctx, "sessions", func(tx datastore.Txn) error {
			if _, err := tx.Put(ctx, storagemodels.Record{"token": "t1"}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, getAll(t, b, "sessions"))
	})

	t.Run("Update sees its own writes", func(t *testing.T) {
		b, _ := open(t, Config(DatabaseName(), 1))
		err := b.Update(ctx, "sessions", func(tx datastore.Txn) error {
			if _, err := tx.Put(ctx, storagemodels.Record{"token": "t1", "n": 1}); err != nil {
				return err
			}
			rec, err := tx.Get(ctx, "t1")
			if err != nil {
				return err
			}
			if rec == nil {
				return stderrors.New("write not visible inside transaction")
			}
			_, err = tx.Put(ctx, rec.Merge(storagemodels.Record{"n": 2}))
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), get(t, b, "sessions", "t1")["n"])
	})

	t.Run("View rejects writes", func(t *testing.T) {
		b, _ := open(t, Config(DatabaseName(), 1))
		err := b.View(ctx, "sessions", func(tx datastore.Txn) error {
			_, err := tx.Put(ctx, storagemodels.Record{"token": "t1"})
			return err
		})
		assert.ErrorIs(t, err, datastore.ErrReadOnly)
	})

	t.Run("Unknown partition", func(t *testing.T) {
		b, _ := open(t, Config(DatabaseName(), 1))
		err := b.View(ctx, "ghosts", func(datastore.Txn) error { return nil })
		assert.True(t, errors.IsUnknownPartition(err), "expected unknown partition, got %v", err)
	})

	t.Run("Reopen keeps data", func(t *testing.T) {
		name := DatabaseName()
		b, opener := open(t, Config(name, 1))
		add(t, b, "users", storagemodels.Record{"name": "a"})
		require.NoError(t, b.Close())

		again := opener()
		defer again.Close()
		cfg := Config(name, 1)
		require.NoError(t, cfg.Validate())
		_, err := again.Open(ctx, cfg)
		require.NoError(t, err)
		assert.Len(t, getAll(t, again, "users"), 1)
		assert.Equal(t, int64(2), add(t, again, "users", storagemodels.Record{"name": "b"}), "sequence survives reopen")
	})

	t.Run("Version upgrade adds partitions", func(t *testing.T) {
		name := DatabaseName()
		b, opener := open(t, Config(name, 1))
		add(t, b, "users", storagemodels.Record{"name": "a"})
		require.NoError(t, b.Close())

		cfg := Config(name, 2)
		cfg.Partitions = append(cfg.Partitions, storagemodels.PartitionConfig{Name: "posts", AutoIncrement: true})
		require.NoError(t, cfg.Validate())

		again := opener()
		defer again.Close()
		schema, err := again.Open(ctx, cfg)
		require.NoError(t, err)
		assert.Equal(t, 2, schema.Version)
		assert.True(t, schema.Has("posts"))
		assert.Len(t, getAll(t, again, "users"), 1, "existing partitions keep their data")
		add(t, again, "posts", storagemodels.Record{"title": "hello"})
	})

	t.Run("Same version ignores new partitions", func(t *testing.T) {
		name := DatabaseName()
		b, opener := open(t, Config(name, 1))
		require.NoError(t, b.Close())

		cfg := Config(name, 1)
		cfg.Partitions = append(cfg.Partitions, storagemodels.PartitionConfig{Name: "posts"})
		require.NoError(t, cfg.Validate())

		again := opener()
		defer again.Close()
		schema, err := again.Open(ctx, cfg)
		require.NoError(t, err)
		assert.False(t, schema.Has("posts"))
	})

	t.Run("Lower version fails", func(t *testing.T) {
		name := DatabaseName()
		b, opener := open(t, Config(name, 2))
		require.NoError(t, b.Close())

		cfg := Config(name, 1)
		require.NoError(t, cfg.Validate())
		again := opener()
		defer again.Close()
		_, err := again.Open(ctx, cfg)
		assert.True(t, errors.IsVersionError(err), "expected version error, got %v", err)
	})
}
