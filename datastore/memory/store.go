/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package memory provides an in-process datastore.Backend.
package memory

import (
	"context"
	"sync"

	"github.com/suparena/modelstore/datastore"
	"github.com/suparena/modelstore/errors"
	"github.com/suparena/modelstore/storagemodels"
)

type partition struct {
	cfg  storagemodels.PartitionConfig
	rows map[string]storagemodels.Record
	seq  int64
}

func (p *partition) clone() *partition {
	out := &partition{cfg: p.cfg, rows: make(map[string]storagemodels.Record, len(p.rows)), seq: p.seq}
	for k, v := range p.rows {
		out.rows[k] = v
	}
	return out
}

type database struct {
	schema     storagemodels.Schema
	partitions map[string]*partition
}

// Store is an in-memory Backend. Databases survive Close, so a Store can be
// reopened to simulate a process restart.
type Store struct {
	mu        sync.RWMutex
	databases map[string]*database
	current   *database
	failures  map[string]error
}

// New creates an empty store.
func New() *Store {
	return &Store{
		databases: make(map[string]*database),
		failures:  make(map[string]error),
	}
}

// FailOn makes every call of op (one of the datastore.Op constants) return err.
// A nil err clears the failure.
func (s *Store) FailOn(op string, err error) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
	} else {
		s.failures[op] = err
	}
	return s
}

func (s *Store) failure(op string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failures[op]
}

// Open implements datastore.Backend.
func (s *Store) Open(ctx context.Context, cfg storagemodels.DatabaseConfig) (storagemodels.Schema, error) {
	if err := s.failure(datastore.OpOpen); err != nil {
		return storagemodels.Schema{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	db, ok := s.databases[cfg.Name]
	if !ok {
		db = &database{schema: storagemodels.Schema{Database: cfg.Name}, partitions: make(map[string]*partition)}
	}
	next, created, err := storagemodels.Upgrade(db.schema, cfg)
	if err != nil {
		return storagemodels.Schema{}, err
	}
	for _, p := range created {
		db.partitions[p.Name] = &partition{cfg: p, rows: make(map[string]storagemodels.Record)}
	}
	db.schema = next
	s.databases[cfg.Name] = db
	s.current = db
	return next, nil
}

// Close implements datastore.Backend. Data is kept.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	return nil
}

// View implements datastore.Backend.
func (s *Store) View(ctx context.Context, name string, fn func(datastore.Txn) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, err := s.lookup(name)
	if err != nil {
		return err
	}
	return fn(&txn{store: s, part: p, readOnly: true})
}

// Update implements datastore.Backend. fn works on a copy of the partition that
// replaces the original only when fn succeeds.
func (s *Store) Update(ctx context.Context, name string, fn func(datastore.Txn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.lookup(name)
	if err != nil {
		return err
	}
	work := p.clone()
	if err := fn(&txn{store: s, part: work}); err != nil {
		return err
	}
	s.current.partitions[name] = work
	return nil
}

func (s *Store) lookup(name string) (*partition, error) {
	if s.current == nil {
		return nil, datastore.ErrClosed
	}
	p, ok := s.current.partitions[name]
	if !ok {
		return nil, errors.NewUnknownPartitionError(name)
	}
	return p, nil
}

// Count returns the number of records in a partition of the open database.
func (s *Store) Count(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, err := s.lookup(name)
	if err != nil {
		return 0
	}
	return len(p.rows)
}

// txn runs with the store lock held, so failures are read without locking.
type txn struct {
	store    *Store
	part     *partition
	readOnly bool
}

func (t *txn) fail(op string) error {
	return t.store.failures[op]
}

func (t *txn) Partition() storagemodels.PartitionConfig { return t.part.cfg }

func (t *txn) GetAll(ctx context.Context) ([]storagemodels.Record, error) {
	if err := t.fail(datastore.OpGetAll); err != nil {
		return nil, err
	}
	out := make([]storagemodels.Record, 0, len(t.part.rows))
	for _, rec := range t.part.rows {
		c, err := datastore.Canonical(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	storagemodels.SortByKey(out, t.part.cfg.KeyPath)
	return out, nil
}

func (t *txn) Get(ctx context.Context, key any) (storagemodels.Record, error) {
	if err := t.fail(datastore.OpGet); err != nil {
		return nil, err
	}
	k, err := storagemodels.NormalizeKey(key)
	if err != nil {
		return nil, err
	}
	rec, ok := t.part.rows[storagemodels.EncodeKey(k)]
	if !ok {
		return nil, nil
	}
	return datastore.Canonical(rec)
}

func (t *txn) Add(ctx context.Context, rec storagemodels.Record) (any, error) {
	return t.write(datastore.OpAdd, rec, false)
}

func (t *txn) Put(ctx context.Context, rec storagemodels.Record) (any, error) {
	return t.write(datastore.OpPut, rec, true)
}

func (t *txn) write(op string, rec storagemodels.Record, overwrite bool) (any, error) {
	if t.readOnly {
		return nil, datastore.ErrReadOnly
	}
	if err := t.fail(op); err != nil {
		return nil, err
	}
	seq := t.part.seq
	row, key, err := datastore.PrepareWrite(t.part.cfg, rec, (*sequence)(&seq))
	if err != nil {
		return nil, err
	}
	enc := storagemodels.EncodeKey(key)
	if _, exists := t.part.rows[enc]; exists && !overwrite {
		return nil, errors.NewAlreadyExistsError(t.part.cfg.Name, storagemodels.FormatKey(key))
	}
	t.part.seq = seq
	t.part.rows[enc] = row
	return key, nil
}

func (t *txn) Delete(ctx context.Context, key any) error {
	if t.readOnly {
		return datastore.ErrReadOnly
	}
	if err := t.fail(datastore.OpDelete); err != nil {
		return err
	}
	k, err := storagemodels.NormalizeKey(key)
	if err != nil {
		return err
	}
	delete(t.part.rows, storagemodels.EncodeKey(k))
	return nil
}

type sequence int64

func (s *sequence) Next() (int64, error) {
	*s++
	return int64(*s), nil
}

func (s *sequence) Observe(k int64) error {
	if k > int64(*s) {
		*s = sequence(k)
	}
	return nil
}
