/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/modelstore/datastore"
	"github.com/suparena/modelstore/datastore/datastoretest"
	"github.com/suparena/modelstore/storagemodels"
)

func TestDynamoStoreContract(t *testing.T) {
	datastoretest.RunBackendContract(t, func(t *testing.T) datastoretest.Opener {
		fake := newFakeDynamo()
		return func() datastore.Backend { return New(fake) }
	})
}

func openFake(t *testing.T) (*Store, *fakeDynamo) {
	t.Helper()
	fake := newFakeDynamo()
	store := New(fake)
	cfg := datastoretest.Config("app", 1)
	require.NoError(t, cfg.Validate())
	_, err := store.Open(context.Background(), cfg)
	require.NoError(t, err)
	return store, fake
}

func TestOpenCreatesTables(t *testing.T) {
	_, fake := openFake(t)
	for _, table := range []string{"app__meta", "app__sequences", "app_users", "app_sessions"} {
		assert.Contains(t, fake.tables, table)
	}
	meta := fake.tables["app__meta"]["schema"]
	require.NotNil(t, meta)
	assert.Equal(t, "1", meta["version"].(*types.AttributeValueMemberN).Value)
}

func TestReopenDoesNotRecreateTables(t *testing.T) {
	store, fake := openFake(t)
	created := fake.calls["CreateTable"]
	require.NoError(t, store.Close())

	cfg := datastoretest.Config("app", 1)
	require.NoError(t, cfg.Validate())
	_, err := New(fake).Open(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, created, fake.calls["CreateTable"])
}

func TestConflictingWriteCancelsTransaction(t *testing.T) {
	ctx := context.Background()
	store, _ := openFake(t)

	err := store.Update(ctx, "sessions", func(tx datastore.Txn) error {
		if _, err := tx.Add(ctx, storagemodels.Record{"token": "t1", "owner": "outer"}); err != nil {
			return err
		}
		// a second writer claims the same key before the outer commit
		return store.Update(ctx, "sessions", func(inner datastore.Txn) error {
			_, err := inner.Put(ctx, storagemodels.Record{"token": "t1", "owner": "inner"})
			return err
		})
	})
	var cancelled *types.TransactionCanceledException
	assert.True(t, stderrors.As(err, &cancelled), "expected cancelled transaction, got %v", err)

	require.NoError(t, store.View(ctx, "sessions", func(tx datastore.Txn) error {
		rec, err := tx.Get(ctx, "t1")
		require.NotNil(t, rec)
		assert.Equal(t, "inner", rec["owner"])
		return err
	}))
}

func TestReadOnlyTransactionDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	store, fake := openFake(t)
	require.NoError(t, store.Update(ctx, "users", func(tx datastore.Txn) error {
		_, err := tx.GetAll(ctx)
		return err
	}))
	assert.Equal(t, 0, fake.calls["TransactWriteItems"])
}

func TestTooManyWrites(t *testing.T) {
	ctx := context.Background()
	store, _ := openFake(t)
	err := store.Update(ctx, "sessions", func(tx datastore.Txn) error {
		for i := 0; i <= maxTransactItems; i++ {
			if _, err := tx.Put(ctx, storagemodels.Record{"token": string(rune('a'+i%26)) + string(rune('0'+i/26))}); err != nil {
				return err
			}
		}
		return nil
	})
	assert.Error(t, err)
}
