/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package gateway

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/modelstore/datastore"
	"github.com/suparena/modelstore/datastore/memory"
	"github.com/suparena/modelstore/errors"
	"github.com/suparena/modelstore/storagemodels"
)

func testConfig() storagemodels.DatabaseConfig {
	return storagemodels.DatabaseConfig{
		Name:    "app",
		Version: 1,
		Partitions: []storagemodels.PartitionConfig{
			{Name: "users", KeyPath: "id", AutoIncrement: true},
			{Name: "sessions", KeyPath: "token"},
		},
	}
}

func connected(t *testing.T, opts ...Option) (*Gateway, *memory.Store) {
	t.Helper()
	store := memory.New()
	gw := New(store, append([]Option{WithConfig(testConfig())}, opts...)...)
	_, err := gw.Connect(context.Background(), nil)
	require.NoError(t, err)
	return gw, store
}

func TestConnectIsIdempotent(t *testing.T) {
	ctx := context.Background()
	gw := New(memory.New())
	cfg := testConfig()

	first, err := gw.Connect(ctx, &cfg)
	require.NoError(t, err)

	other := storagemodels.DatabaseConfig{Name: "other"}
	second, err := gw.Connect(ctx, &other)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, []string{"sessions", "users"}, second.Partitions())
}

func TestConnectWithoutConfig(t *testing.T) {
	_, err := New(memory.New()).Connect(context.Background(), nil)
	assert.True(t, errors.IsValidationError(err))
}

func TestConnectDoesNotMutateConfig(t *testing.T) {
	cfg := testConfig()
	_, err := New(memory.New()).Connect(context.Background(), &cfg)
	require.NoError(t, err)
	assert.Empty(t, cfg.Partitions[1].KeyType, "defaults are applied to a copy")
}

func TestUseBeforeConnect(t *testing.T) {
	ctx := context.Background()
	gw := New(memory.New())

	_, err := gw.GetAll(ctx, "users")
	assert.True(t, errors.IsStorageNotInitialized(err))
	_, err = gw.Add(ctx, "users", storagemodels.Record{})
	assert.True(t, errors.IsStorageNotInitialized(err))
	_, err = gw.Update(ctx, "users", 1, storagemodels.Record{})
	assert.True(t, errors.IsStorageNotInitialized(err))
	assert.True(t, errors.IsStorageNotInitialized(gw.Delete(ctx, "users", 1)))
}

func TestUnknownPartition(t *testing.T) {
	gw, _ := connected(t)
	_, err := gw.Get(context.Background(), "ghosts", 1)
	assert.True(t, errors.IsUnknownPartition(err))
}

func TestCRUD(t *testing.T) {
	ctx := context.Background()
	gw, _ := connected(t)

	id, err := gw.Add(ctx, "users", storagemodels.Record{"name": "ada", "age": 36})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	rec, err := gw.Get(ctx, "users", id)
	require.NoError(t, err)
	assert.Equal(t, storagemodels.Record{"id": int64(1), "name": "ada", "age": int64(36)}, rec)

	_, err = gw.Add(ctx, "users", storagemodels.Record{"id": 1})
	assert.True(t, errors.IsAlreadyExists(err))

	_, err = gw.Put(ctx, "users", storagemodels.Record{"id": 1, "name": "grace"})
	require.NoError(t, err)
	rec, _ = gw.Get(ctx, "users", 1)
	assert.Equal(t, storagemodels.Record{"id": int64(1), "name": "grace"}, rec)

	require.NoError(t, gw.Delete(ctx, "users", 1))
	rec, err = gw.Get(ctx, "users", 1)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestUpdateMerges(t *testing.T) {
	ctx := context.Background()
	gw, _ := connected(t)
	_, err := gw.Add(ctx, "users", storagemodels.Record{"name": "ada", "age": 36})
	require.NoError(t, err)

	merged, err := gw.Update(ctx, "users", 1, storagemodels.Record{"age": 37, "id": 99})
	require.NoError(t, err)
	assert.Equal(t, storagemodels.Record{"id": int64(1), "name": "ada", "age": int64(37)}, merged)

	stored, _ := gw.Get(ctx, "users", 1)
	assert.Equal(t, merged, stored)
	missing, _ := gw.Get(ctx, "users", 99)
	assert.Nil(t, missing, "the key is pinned to id")
}

func TestUpdateMissingWritesNothing(t *testing.T) {
	ctx := context.Background()
	gw, store := connected(t)

	_, err := gw.Update(ctx, "users", 42, storagemodels.Record{"name": "ghost"})
	assert.True(t, errors.IsNotFound(err), "expected not found, got %v", err)
	assert.Equal(t, 0, store.Count("users"))
}

func TestBackendFailuresAreWrapped(t *testing.T) {
	ctx := context.Background()
	gw, store := connected(t)
	boom := stderrors.New("disk full")
	store.FailOn(datastore.OpPut, boom)

	_, err := gw.Put(ctx, "sessions", storagemodels.Record{"token": "a"})
	require.Error(t, err)
	assert.True(t, errors.IsStorageOperation(err))
	assert.ErrorIs(t, err, boom)

	var opErr *errors.StorageOperationError
	require.True(t, stderrors.As(err, &opErr))
	assert.Equal(t, "sessions", opErr.Partition)
	assert.Equal(t, datastore.OpPut, opErr.Op)
}

func TestReconnectKeepsData(t *testing.T) {
	ctx := context.Background()
	gw, _ := connected(t)
	_, err := gw.Add(ctx, "users", storagemodels.Record{"name": "ada"})
	require.NoError(t, err)

	require.NoError(t, gw.Close())
	_, err = gw.GetAll(ctx, "users")
	assert.True(t, errors.IsStorageNotInitialized(err))

	_, err = gw.Connect(ctx, nil)
	require.NoError(t, err)
	all, err := gw.GetAll(ctx, "users")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	gw, _ := connected(t, WithMetrics(reg))

	_, err := gw.Add(ctx, "users", storagemodels.Record{"name": "ada"})
	require.NoError(t, err)
	_, err = gw.Add(ctx, "users", storagemodels.Record{"id": 1})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(gw.metrics.operations.WithLabelValues("users", datastore.OpAdd, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(gw.metrics.operations.WithLabelValues("users", datastore.OpAdd, "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(gw.metrics.operations.WithLabelValues("", datastore.OpOpen, "ok")))
	assert.Equal(t, 2, testutil.CollectAndCount(gw.metrics.duration))
}
