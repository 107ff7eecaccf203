/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	backend "github.com/redis/go-redis/v9"

	"github.com/suparena/modelstore/datastore"
	"github.com/suparena/modelstore/errors"
	"github.com/suparena/modelstore/internal/logging"
	"github.com/suparena/modelstore/storagemodels"
)

const (
	defaultPrefix      = "modelstore:"
	metaVersionField   = "version"
	metaPartitionField = "partition:"
)

// Store implements datastore.Backend on Redis.
type Store struct {
	client *backend.Client
	prefix string
	logger *slog.Logger

	mu     sync.RWMutex
	schema *storagemodels.Schema
}

type Option func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a Redis store with its own client.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: defaultPrefix,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) metaKey(db string) string {
	return s.prefix + db + ":meta"
}

func (s *Store) dataKey(db, partition string) string {
	return s.prefix + db + ":p:" + partition
}

func (s *Store) seqKey(db, partition string) string {
	return s.prefix + db + ":seq:" + partition
}

// Open implements datastore.Backend. The schema read and upgrade run under WATCH
// on the meta key, so two processes upgrading at once cannot interleave.
func (s *Store) Open(ctx context.Context, cfg storagemodels.DatabaseConfig) (storagemodels.Schema, error) {
	metaKey := s.metaKey(cfg.Name)
	var schema storagemodels.Schema

	err := s.client.Watch(ctx, func(tx *backend.Tx) error {
		fields, err := tx.HGetAll(ctx, metaKey).Result()
		if err != nil {
			return fmt.Errorf("failed to read schema: %w", err)
		}
		stored, err := parseMeta(cfg.Name, fields)
		if err != nil {
			return err
		}
		next, created, err := storagemodels.Upgrade(stored, cfg)
		if err != nil {
			return err
		}
		schema = next
		if next.Version == stored.Version && len(created) == 0 {
			return nil
		}

		values := []any{metaVersionField, strconv.Itoa(next.Version)}
		for _, p := range created {
			data, err := encodePartition(p)
			if err != nil {
				return fmt.Errorf("failed to encode partition %q: %w", p.Name, err)
			}
			values = append(values, metaPartitionField+p.Name, data)
		}
		_, err = tx.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
			pipe.HSet(ctx, metaKey, values...)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to write schema: %w", err)
		}
		s.logger.Info("schema upgraded", "database", cfg.Name, "from", stored.Version, "to", next.Version, "created", len(created))
		return nil
	}, metaKey)
	if err != nil {
		return storagemodels.Schema{}, err
	}

	s.mu.Lock()
	s.schema = &schema
	s.mu.Unlock()
	return schema, nil
}

func parseMeta(db string, fields map[string]string) (storagemodels.Schema, error) {
	schema := storagemodels.Schema{Database: db, Partitions: make(map[string]storagemodels.PartitionConfig)}
	for field, value := range fields {
		switch {
		case field == metaVersionField:
			v, err := strconv.Atoi(value)
			if err != nil {
				return schema, fmt.Errorf("corrupt schema version %q: %w", value, err)
			}
			schema.Version = v
		case strings.HasPrefix(field, metaPartitionField):
			p, err := decodePartition([]byte(value))
			if err != nil {
				return schema, fmt.Errorf("corrupt partition %q: %w", field, err)
			}
			schema.Partitions[p.Name] = p
		}
	}
	return schema, nil
}

// Close implements datastore.Backend and closes the client.
func (s *Store) Close() error {
	s.mu.Lock()
	s.schema = nil
	s.mu.Unlock()
	return s.client.Close()
}

func (s *Store) partition(name string) (storagemodels.Schema, storagemodels.PartitionConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.schema == nil {
		return storagemodels.Schema{}, storagemodels.PartitionConfig{}, datastore.ErrClosed
	}
	p, ok := s.schema.Partitions[name]
	if !ok {
		return storagemodels.Schema{}, storagemodels.PartitionConfig{}, errors.NewUnknownPartitionError(name)
	}
	return *s.schema, p, nil
}

// View implements datastore.Backend.
func (s *Store) View(ctx context.Context, name string, fn func(datastore.Txn) error) error {
	schema, p, err := s.partition(name)
	if err != nil {
		return err
	}
	return fn(s.newTxn(s.client, schema.Database, p, true))
}

// Update implements datastore.Backend. Reads go through a WATCHed connection and
// writes are buffered until fn returns, then committed in one MULTI/EXEC. A
// concurrent change to the partition aborts the commit with backend.TxFailedErr.
func (s *Store) Update(ctx context.Context, name string, fn func(datastore.Txn) error) error {
	schema, p, err := s.partition(name)
	if err != nil {
		return err
	}
	dataKey := s.dataKey(schema.Database, name)
	seqKey := s.seqKey(schema.Database, name)

	return s.client.Watch(ctx, func(tx *backend.Tx) error {
		t := s.newTxn(tx, schema.Database, p, false)
		if err := fn(t); err != nil {
			return err
		}
		if !t.dirty() {
			return nil
		}
		_, err := tx.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
			return t.flush(ctx, pipe)
		})
		if err != nil {
			return fmt.Errorf("failed to commit: %w", err)
		}
		return nil
	}, dataKey, seqKey)
}
