/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"
	stderrors "errors"

	"github.com/suparena/modelstore/storagemodels"
)

// Operation names shared by backends, the gateway and its metrics.
const (
	OpOpen   = "open"
	OpGetAll = "get_all"
	OpGet    = "get"
	OpAdd    = "add"
	OpPut    = "put"
	OpDelete = "delete"
	OpUpdate = "update"
)

// ErrReadOnly is returned by write calls made inside a View transaction.
var ErrReadOnly = stderrors.New("datastore: write in read-only transaction")

// ErrClosed is returned when a backend is used before Open or after Close.
var ErrClosed = stderrors.New("datastore: backend is not open")

// Backend is a transactional, partitioned key-value store holding one logical database.
type Backend interface {
	// Open opens the database described by cfg, applying the additive schema
	// upgrade when cfg.Version is higher than the stored version.
	Open(ctx context.Context, cfg storagemodels.DatabaseConfig) (storagemodels.Schema, error)

	// View runs fn in a read-only transaction scoped to one partition.
	View(ctx context.Context, partition string, fn func(Txn) error) error

	// Update runs fn in a read-write transaction scoped to one partition.
	// Nothing fn wrote is kept when it returns an error.
	Update(ctx context.Context, partition string, fn func(Txn) error) error

	Close() error
}

// Txn is a transaction over a single partition.
type Txn interface {
	Partition() storagemodels.PartitionConfig

	// GetAll returns every record in ascending key order.
	GetAll(ctx context.Context) ([]storagemodels.Record, error)

	// Get returns the record stored under key, or nil when there is none.
	Get(ctx context.Context, key any) (storagemodels.Record, error)

	// Add inserts rec and returns its key. It fails when the key is taken.
	Add(ctx context.Context, rec storagemodels.Record) (any, error)

	// Put inserts or replaces rec and returns its key.
	Put(ctx context.Context, rec storagemodels.Record) (any, error)

	// Delete removes the record stored under key. Absent keys are ignored.
	Delete(ctx context.Context, key any) error
}
