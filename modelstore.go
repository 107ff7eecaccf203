/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package modelstore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/suparena/modelstore/config"
	"github.com/suparena/modelstore/datastore"
	"github.com/suparena/modelstore/gateway"
	"github.com/suparena/modelstore/internal/logging"
	"github.com/suparena/modelstore/model"
	"github.com/suparena/modelstore/registry"
	"github.com/suparena/modelstore/storagemodels"
)

// Store wires a gateway, an observer registry and the model types that use them.
// It is safe for concurrent use.
type Store struct {
	gateway   *gateway.Gateway
	observers *model.ObserverRegistry
	logger    *slog.Logger
	strict    bool

	mu    sync.RWMutex
	types map[string]*model.Type
}

type settings struct {
	observers *model.ObserverRegistry
	logger    *slog.Logger
	metrics   prometheus.Registerer
	strict    bool
}

// Option configures a Store.
type Option func(*settings)

// WithObservers registers observers through boot, which runs on first use.
func WithObservers(boot func(b *registry.Builder[model.Observer])) Option {
	return func(s *settings) {
		s.observers = model.NewObserverRegistry(boot)
	}
}

// WithObserverRegistry shares an existing registry.
func WithObserverRegistry(r *model.ObserverRegistry) Option {
	return func(s *settings) {
		s.observers = r
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithMetrics registers gateway metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *settings) {
		s.metrics = reg
	}
}

// WithStrictOperators makes every registered type reject unknown query operators.
func WithStrictOperators() Option {
	return func(s *settings) {
		s.strict = true
	}
}

// New creates a store over backend. The database described by cfg is opened by Connect.
func New(backend datastore.Backend, cfg storagemodels.DatabaseConfig, opts ...Option) *Store {
	st := settings{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&st)
	}
	if st.observers == nil {
		st.observers = model.NewObserverRegistry(nil)
	}

	gwOpts := []gateway.Option{gateway.WithConfig(cfg), gateway.WithLogger(st.logger)}
	if st.metrics != nil {
		gwOpts = append(gwOpts, gateway.WithMetrics(st.metrics))
	}
	return &Store{
		gateway:   gateway.New(backend, gwOpts...),
		observers: st.observers,
		logger:    st.logger,
		strict:    st.strict,
		types:     make(map[string]*model.Type),
	}
}

// Open builds the configured backend and connects to it. Unless overridden,
// the logger comes from the configured log level.
func Open(ctx context.Context, cfg config.Config, opts ...Option) (*Store, error) {
	base := []Option{WithLogger(cfg.Logger())}
	if cfg.Query.StrictOperators {
		base = append(base, WithStrictOperators())
	}
	opts = append(base, opts...)

	st := settings{}
	for _, opt := range opts {
		opt(&st)
	}
	backend, err := config.OpenBackend(ctx, cfg, st.logger)
	if err != nil {
		return nil, err
	}

	s := New(backend, cfg.DatabaseConfig(), opts...)
	if _, err := s.Connect(ctx); err != nil {
		_ = backend.Close()
		return nil, err
	}
	return s, nil
}

// Connect opens the database. Later calls return the same connection.
func (s *Store) Connect(ctx context.Context) (*gateway.Conn, error) {
	return s.gateway.Connect(ctx, nil)
}

// Gateway returns the storage gateway.
func (s *Store) Gateway() *gateway.Gateway {
	return s.gateway
}

// Observers returns the observer registry shared by all types.
func (s *Store) Observers() *model.ObserverRegistry {
	return s.observers
}

// Register declares a model type bound to this store. Options given here are
// applied after the store's own.
func (s *Store) Register(id string, opts ...model.TypeOption) (*model.Type, error) {
	key := registry.Key(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.types[key]; exists {
		return nil, fmt.Errorf("model type %q already registered", key)
	}
	base := []model.TypeOption{
		model.WithGateway(s.gateway),
		model.WithObservers(s.observers),
		model.WithLogger(s.logger),
	}
	if s.strict {
		base = append(base, model.WithStrictOperators())
	}
	t := model.NewType(key, append(base, opts...)...)
	s.types[key] = t
	return t, nil
}

// Type returns a registered model type.
func (s *Store) Type(id string) (*model.Type, error) {
	key := registry.Key(id)

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.types[key]
	if !exists {
		return nil, fmt.Errorf("model type %q not registered", key)
	}
	return t, nil
}

// Types returns the registered type identifiers in sorted order.
func (s *Store) Types() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.types))
	for id := range s.types {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.gateway.Close()
}
