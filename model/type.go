/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/suparena/modelstore/casing"
	"github.com/suparena/modelstore/errors"
	"github.com/suparena/modelstore/event"
	"github.com/suparena/modelstore/internal/logging"
	"github.com/suparena/modelstore/query"
	"github.com/suparena/modelstore/registry"
	"github.com/suparena/modelstore/storagemodels"
)

// Timestamp fields maintained when timestamps are enabled.
const (
	CreatedAt = "created_at"
	UpdatedAt = "updated_at"
)

// Gateway is the storage surface models need. *gateway.Gateway implements it.
type Gateway interface {
	GetAll(ctx context.Context, partition string) ([]storagemodels.Record, error)
	Get(ctx context.Context, partition string, id any) (storagemodels.Record, error)
	Add(ctx context.Context, partition string, data storagemodels.Record) (any, error)
	Update(ctx context.Context, partition string, id any, data storagemodels.Record) (storagemodels.Record, error)
	Delete(ctx context.Context, partition string, id any) error
}

// Type is the static side of a model: its identity, table and shared collaborators.
type Type struct {
	id         string
	table      string
	primaryKey string
	events     bool
	timestamps bool
	strict     bool
	gateway    Gateway
	observers  *ObserverRegistry
	logger     *slog.Logger
	now        func() time.Time
}

// TypeOption configures a Type.
type TypeOption func(*Type)

// WithTable overrides the partition name. It is snake-cased like the default.
func WithTable(table string) TypeOption {
	return func(t *Type) {
		t.table = table
	}
}

// WithPrimaryKey sets the key field. Defaults to "id".
func WithPrimaryKey(field string) TypeOption {
	return func(t *Type) {
		t.primaryKey = field
	}
}

// WithEvents turns observer wiring on or off. It is on by default.
func WithEvents(enabled bool) TypeOption {
	return func(t *Type) {
		t.events = enabled
	}
}

// WithTimestamps maintains created_at and updated_at on Create and Update.
func WithTimestamps() TypeOption {
	return func(t *Type) {
		t.timestamps = true
	}
}

// WithStrictOperators makes queries reject unknown operators.
func WithStrictOperators() TypeOption {
	return func(t *Type) {
		t.strict = true
	}
}

func WithGateway(g Gateway) TypeOption {
	return func(t *Type) {
		t.gateway = g
	}
}

func WithObservers(r *ObserverRegistry) TypeOption {
	return func(t *Type) {
		t.observers = r
	}
}

func WithLogger(logger *slog.Logger) TypeOption {
	return func(t *Type) {
		t.logger = logger
	}
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) TypeOption {
	return func(t *Type) {
		t.now = now
	}
}

// NewType declares a model type. id is the type identifier used for observer
// lookup and, unless WithTable is given, for the partition name.
func NewType(id string, opts ...TypeOption) *Type {
	t := &Type{
		id:         registry.Key(id),
		primaryKey: storagemodels.DefaultKeyPath,
		events:     true,
		logger:     logging.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TypeOf declares a model type named after the Go type T.
func TypeOf[T any](opts ...TypeOption) *Type {
	return NewType(registry.TypeName[T](), opts...)
}

// ID returns the type identifier.
func (t *Type) ID() string { return t.id }

// PrimaryKey returns the key field.
func (t *Type) PrimaryKey() string { return t.primaryKey }

// Partition returns the partition the type's records live in.
func (t *Type) Partition() string {
	if t.table != "" {
		return casing.Snake(t.table)
	}
	return casing.Snake(t.id)
}

// PartitionConfig describes the partition for use in a DatabaseConfig.
func (t *Type) PartitionConfig(autoIncrement bool) storagemodels.PartitionConfig {
	return storagemodels.PartitionConfig{
		Name:          t.Partition(),
		KeyPath:       t.primaryKey,
		AutoIncrement: autoIncrement,
	}.WithDefaults()
}

func (t *Type) storage() (Gateway, error) {
	if t.gateway == nil {
		return nil, fmt.Errorf("%s: %w", t.id, errors.ErrStorageNotInitialized)
	}
	return t.gateway, nil
}

// Make constructs an unbooted instance holding attrs.
func (t *Type) Make(attrs storagemodels.Record) *Model {
	return &Model{
		typ:   t,
		attrs: NewAttributes(attrs),
	}
}

// New constructs and boots an instance.
func (t *Type) New(ctx context.Context, attrs storagemodels.Record) (*Model, error) {
	m := t.Make(attrs)
	if err := m.Boot(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// Hydrate boots an instance holding rec as both snapshots and fires fetched.
func (t *Type) Hydrate(ctx context.Context, rec storagemodels.Record) (*Model, error) {
	m, err := t.New(ctx, rec)
	if err != nil {
		return nil, err
	}
	if err := m.Fire(ctx, event.Fetched); err != nil {
		return nil, err
	}
	return m, nil
}

// Fetch reads every record of the type's partition.
func (t *Type) Fetch(ctx context.Context) ([]storagemodels.Record, error) {
	g, err := t.storage()
	if err != nil {
		return nil, err
	}
	return g.GetAll(ctx, t.Partition())
}

// All returns every stored instance in key order.
func (t *Type) All(ctx context.Context) ([]*Model, error) {
	records, err := t.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Model, 0, len(records))
	for _, rec := range records {
		m, err := t.Hydrate(ctx, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Find loads the instance stored under id. An absent key fails with NotFound.
// The instance is booted holding only the key and fires fetching before the
// read; it then holds the stored record as both snapshots and fires fetched.
func (t *Type) Find(ctx context.Context, id any) (*Model, error) {
	g, err := t.storage()
	if err != nil {
		return nil, err
	}
	m, err := t.New(ctx, storagemodels.Record{t.primaryKey: id})
	if err != nil {
		return nil, err
	}
	if err := m.Fire(ctx, event.Fetching); err != nil {
		return nil, err
	}
	rec, err := g.Get(ctx, t.Partition(), id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errors.NewNotFoundError(t.id, storagemodels.FormatKey(id))
	}
	m.attrs = NewAttributes(rec)
	if err := m.Fire(ctx, event.Fetched); err != nil {
		return nil, err
	}
	return m, nil
}

// Create builds an instance from data and persists it.
func (t *Type) Create(ctx context.Context, data storagemodels.Record) (*Model, error) {
	m, err := t.New(ctx, data)
	if err != nil {
		return nil, err
	}
	if err := m.Create(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// Update merges data into the record stored under id and returns the result.
// No instance lifecycle events other than those of hydration fire.
func (t *Type) Update(ctx context.Context, id any, data storagemodels.Record) (*Model, error) {
	g, err := t.storage()
	if err != nil {
		return nil, err
	}
	data = data.Clone()
	if t.timestamps {
		if data == nil {
			data = storagemodels.Record{}
		}
		data[UpdatedAt] = t.timestamp()
	}
	rec, err := g.Update(ctx, t.Partition(), id, data)
	if err != nil {
		return nil, err
	}
	return t.Hydrate(ctx, rec)
}

// ForceDelete removes the instance stored under id and returns it.
func (t *Type) ForceDelete(ctx context.Context, id any) (*Model, error) {
	m, err := t.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := m.ForceDelete(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// QueryOptions returns the builder options the type's queries use.
func (t *Type) QueryOptions() []query.Option {
	var opts []query.Option
	if t.strict {
		opts = append(opts, query.WithStrictOperators())
	}
	return opts
}

// Query starts a query over the type's partition.
func (t *Type) Query() *query.Builder[*Model] {
	return query.New(t.Fetch, t.Hydrate, t.QueryOptions()...)
}

// Where starts a query with one condition.
func (t *Type) Where(field string, operatorOrValue any, value ...any) *query.Builder[*Model] {
	return t.Query().Where(field, operatorOrValue, value...)
}
