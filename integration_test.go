//go:build integration
// +build integration

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package modelstore_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/modelstore"
	"github.com/suparena/modelstore/config"
	"github.com/suparena/modelstore/errors"
	"github.com/suparena/modelstore/query"
)

// openIntegrationStore connects to the backend selected by MODELSTORE_BACKEND
// (read from the environment or .env) using a fresh database name.
func openIntegrationStore(t *testing.T) *modelstore.Store {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Load .env if present; variables already set win.
	_ = godotenv.Load(".env")
	cfg := config.Default().ApplyEnv(os.LookupEnv)
	if cfg.Backend == config.BackendMemory {
		t.Skip("MODELSTORE_BACKEND not set to redis or dynamodb, skipping integration test")
	}

	cfg.Database.Name = fmt.Sprintf("it%d", time.Now().UnixNano())
	cfg.Partitions = databaseConfig().Partitions

	store, err := modelstore.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to open %s store: %v", cfg.Backend, err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestIntegrationRepository(t *testing.T) {
	ctx := context.Background()
	store := openIntegrationStore(t)

	players, err := modelstore.NewRepository[Player](store)
	require.NoError(t, err)

	for i, name := range []string{"ada", "grace", "linus"} {
		p, err := players.Create(ctx, Player{Name: name, Rating: float64(1400 + 100*i)})
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), p.ID)
	}

	top, err := players.Where("rating", ">", 1450).OrderBy("rating", query.Desc).Limit(1).Get(ctx)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "linus", top[0].Name)

	updated, err := players.Update(ctx, 2, map[string]any{"rating": 1700})
	require.NoError(t, err)
	assert.Equal(t, 1700.0, updated.Rating)

	_, err = players.Update(ctx, 99, map[string]any{"rating": 1})
	assert.True(t, errors.IsNotFound(err))

	_, err = players.ForceDelete(ctx, 1)
	require.NoError(t, err)
	all, err := players.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestIntegrationReconnect(t *testing.T) {
	ctx := context.Background()
	store := openIntegrationStore(t)

	first, err := store.Connect(ctx)
	require.NoError(t, err)
	second, err := store.Connect(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)
}
