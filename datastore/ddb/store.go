/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/suparena/modelstore/datastore"
	"github.com/suparena/modelstore/errors"
	"github.com/suparena/modelstore/internal/logging"
	"github.com/suparena/modelstore/storagemodels"
)

const defaultTableWait = 2 * time.Minute

// Store implements datastore.Backend on DynamoDB. Each partition is its own
// table named "<db>_<partition>"; "<db>__meta" holds the schema and
// "<db>__sequences" the auto-increment counters.
type Store struct {
	client    API
	logger    *slog.Logger
	tableWait time.Duration

	mu     sync.RWMutex
	schema *storagemodels.Schema
}

type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithTableWait bounds how long Open waits for created tables to become active.
func WithTableWait(d time.Duration) Option {
	return func(s *Store) {
		s.tableWait = d
	}
}

// New creates a store on top of a DynamoDB client.
func New(client API, opts ...Option) *Store {
	s := &Store{
		client:    client,
		logger:    logging.NewNop(),
		tableWait: defaultTableWait,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TableName returns the table backing a partition.
func TableName(db, partition string) string {
	return db + "_" + partition
}

func metaTable(db string) string {
	return db + "__meta"
}

func sequenceTable(db string) string {
	return db + "__sequences"
}

// Open implements datastore.Backend.
func (s *Store) Open(ctx context.Context, cfg storagemodels.DatabaseConfig) (storagemodels.Schema, error) {
	for _, table := range []string{metaTable(cfg.Name), sequenceTable(cfg.Name)} {
		if err := s.ensureTable(ctx, table); err != nil {
			return storagemodels.Schema{}, err
		}
	}

	stored, err := s.readMeta(ctx, cfg.Name)
	if err != nil {
		return storagemodels.Schema{}, err
	}
	next, created, err := storagemodels.Upgrade(stored.schema(cfg.Name), cfg)
	if err != nil {
		return storagemodels.Schema{}, err
	}
	if next.Version != stored.Version || len(created) > 0 {
		for _, p := range created {
			if err := s.ensureTable(ctx, TableName(cfg.Name, p.Name)); err != nil {
				return storagemodels.Schema{}, err
			}
		}
		if err := s.writeMeta(ctx, cfg.Name, stored, next); err != nil {
			return storagemodels.Schema{}, err
		}
		s.logger.Info("schema upgraded", "database", cfg.Name, "from", stored.Version, "to", next.Version, "created", len(created))
	}

	s.mu.Lock()
	s.schema = &next
	s.mu.Unlock()
	return next, nil
}

// Close implements datastore.Backend. The SDK client holds no connection to release.
func (s *Store) Close() error {
	s.mu.Lock()
	s.schema = nil
	s.mu.Unlock()
	return nil
}

func (s *Store) partition(name string) (string, storagemodels.PartitionConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.schema == nil {
		return "", storagemodels.PartitionConfig{}, datastore.ErrClosed
	}
	p, ok := s.schema.Partitions[name]
	if !ok {
		return "", storagemodels.PartitionConfig{}, errors.NewUnknownPartitionError(name)
	}
	return s.schema.Database, p, nil
}

// View implements datastore.Backend. Reads are strongly consistent.
func (s *Store) View(ctx context.Context, name string, fn func(datastore.Txn) error) error {
	db, p, err := s.partition(name)
	if err != nil {
		return err
	}
	return fn(s.newTxn(db, p, true))
}

// Update implements datastore.Backend. Writes are buffered and committed with a
// single TransactWriteItems call whose conditions assert that every key the
// transaction read is still in the state it observed.
func (s *Store) Update(ctx context.Context, name string, fn func(datastore.Txn) error) error {
	db, p, err := s.partition(name)
	if err != nil {
		return err
	}
	t := s.newTxn(db, p, false)
	if err := fn(t); err != nil {
		return err
	}
	return t.commit(ctx)
}
