/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package gateway

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/suparena/modelstore/datastore"
	"github.com/suparena/modelstore/errors"
	"github.com/suparena/modelstore/internal/logging"
	"github.com/suparena/modelstore/storagemodels"
)

// Gateway gives transactional, per-partition access to one backend.
// It must be connected before use; Connect is idempotent.
type Gateway struct {
	backend datastore.Backend
	config  *storagemodels.DatabaseConfig
	logger  *slog.Logger
	metrics *metrics

	mu   sync.Mutex
	conn *Conn
}

// Conn is the open connection of a gateway. Its partition set is fixed when it opens.
type Conn struct {
	schema storagemodels.Schema
}

// Schema returns the schema the connection was opened with.
func (c *Conn) Schema() storagemodels.Schema { return c.schema }

// Partitions returns the partition names, sorted.
func (c *Conn) Partitions() []string { return c.schema.Names() }

// Partition returns the configuration of a partition.
func (c *Conn) Partition(name string) (storagemodels.PartitionConfig, error) {
	p, ok := c.schema.Partitions[name]
	if !ok {
		return storagemodels.PartitionConfig{}, errors.NewUnknownPartitionError(name)
	}
	return p, nil
}

type Option func(*Gateway)

// WithConfig sets the configuration used by Connect when it is given none.
func WithConfig(cfg storagemodels.DatabaseConfig) Option {
	return func(g *Gateway) {
		g.config = &cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithMetrics registers operation counters and latency histograms with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(g *Gateway) {
		g.metrics = newMetrics(reg)
	}
}

// New creates a gateway over backend.
func New(backend datastore.Backend, opts ...Option) *Gateway {
	g := &Gateway{
		backend: backend,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Connect opens the backend once. Later calls return the same *Conn and ignore cfg.
// A nil cfg falls back to the configuration given with WithConfig.
func (g *Gateway) Connect(ctx context.Context, cfg *storagemodels.DatabaseConfig) (*Conn, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.conn != nil {
		return g.conn, nil
	}
	if cfg == nil {
		cfg = g.config
	}
	if cfg == nil {
		return nil, errors.NewValidationError("config", "no database configuration")
	}
	c := *cfg
	c.Partitions = append([]storagemodels.PartitionConfig(nil), cfg.Partitions...)
	if err := c.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	schema, err := g.backend.Open(ctx, c)
	g.metrics.observe("", datastore.OpOpen, start, err)
	if err != nil {
		g.logger.Info("connect failed", "database", c.Name, "version", c.Version, "error", err)
		return nil, errors.WrapStorage(datastore.OpOpen, "", err)
	}
	g.conn = &Conn{schema: schema}
	g.logger.Info("connected", "database", schema.Database, "version", schema.Version, "partitions", schema.Names())
	return g.conn, nil
}

// Conn returns the open connection, or ErrStorageNotInitialized.
func (g *Gateway) Conn() (*Conn, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.conn == nil {
		return nil, errors.ErrStorageNotInitialized
	}
	return g.conn, nil
}

// Close closes the backend. The gateway can be connected again afterwards.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.conn == nil {
		return nil
	}
	g.conn = nil
	return g.backend.Close()
}

func (g *Gateway) run(ctx context.Context, partition, op string, write bool, fn func(datastore.Txn) error) error {
	conn, err := g.Conn()
	if err != nil {
		return err
	}
	if _, err := conn.Partition(partition); err != nil {
		return err
	}

	start := time.Now()
	if write {
		err = g.backend.Update(ctx, partition, fn)
	} else {
		err = g.backend.View(ctx, partition, fn)
	}
	g.metrics.observe(partition, op, start, err)
	if err != nil {
		g.logger.Debug("operation failed", "partition", partition, "op", op, "error", err)
	}
	return errors.WrapStorage(op, partition, err)
}

// GetAll returns every record of a partition in ascending key order.
func (g *Gateway) GetAll(ctx context.Context, partition string) ([]storagemodels.Record, error) {
	var out []storagemodels.Record
	err := g.run(ctx, partition, datastore.OpGetAll, false, func(tx datastore.Txn) error {
		var err error
		out, err = tx.GetAll(ctx)
		return err
	})
	return out, err
}

// Get returns the record stored under id, or nil when there is none.
func (g *Gateway) Get(ctx context.Context, partition string, id any) (storagemodels.Record, error) {
	var out storagemodels.Record
	err := g.run(ctx, partition, datastore.OpGet, false, func(tx datastore.Txn) error {
		var err error
		out, err = tx.Get(ctx, id)
		return err
	})
	return out, err
}

// Add inserts data and returns its key. Auto-increment partitions assign a key when data has none.
func (g *Gateway) Add(ctx context.Context, partition string, data storagemodels.Record) (any, error) {
	var key any
	err := g.run(ctx, partition, datastore.OpAdd, true, func(tx datastore.Txn) error {
		var err error
		key, err = tx.Add(ctx, data)
		return err
	})
	return key, err
}

// Put inserts or replaces rec and returns its key.
func (g *Gateway) Put(ctx context.Context, partition string, rec storagemodels.Record) (any, error) {
	var key any
	err := g.run(ctx, partition, datastore.OpPut, true, func(tx datastore.Txn) error {
		var err error
		key, err = tx.Put(ctx, rec)
		return err
	})
	return key, err
}

// Delete removes the record stored under id.
func (g *Gateway) Delete(ctx context.Context, partition string, id any) error {
	return g.run(ctx, partition, datastore.OpDelete, true, func(tx datastore.Txn) error {
		return tx.Delete(ctx, id)
	})
}

// Update merges data into the record stored under id inside one transaction and
// returns the merged record. The key field stays id. A missing record fails with
// NotFound and nothing is written.
func (g *Gateway) Update(ctx context.Context, partition string, id any, data storagemodels.Record) (storagemodels.Record, error) {
	var out storagemodels.Record
	err := g.run(ctx, partition, datastore.OpUpdate, true, func(tx datastore.Txn) error {
		key, err := storagemodels.NormalizeKey(id)
		if err != nil {
			return err
		}
		existing, err := tx.Get(ctx, key)
		if err != nil {
			return err
		}
		if existing == nil {
			return errors.NewNotFoundError(partition, storagemodels.FormatKey(key))
		}
		merged := existing.Merge(data)
		merged[tx.Partition().KeyPath] = key
		if _, err := tx.Put(ctx, merged); err != nil {
			return err
		}
		out, err = tx.Get(ctx, key)
		return err
	})
	return out, err
}
