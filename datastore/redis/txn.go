/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package redis

import (
	"context"
	"fmt"
	"strconv"

	backend "github.com/redis/go-redis/v9"

	"github.com/suparena/modelstore/datastore"
	"github.com/suparena/modelstore/errors"
	"github.com/suparena/modelstore/storagemodels"
)

// advanceSeq raises the sequence to ARGV[1] unless it is already higher.
var advanceSeq = backend.NewScript(`
local cur = tonumber(redis.call("GET", KEYS[1]) or "0")
local want = tonumber(ARGV[1])
if want > cur then
	redis.call("SET", KEYS[1], ARGV[1])
	return want
end
return cur
`)

// reader is the subset of commands a transaction reads with; both *backend.Client
// and *backend.Tx satisfy it.
type reader interface {
	HGet(ctx context.Context, key, field string) *backend.StringCmd
	HGetAll(ctx context.Context, key string) *backend.MapStringStringCmd
	Get(ctx context.Context, key string) *backend.StringCmd
}

type txn struct {
	r        reader
	part     storagemodels.PartitionConfig
	dataKey  string
	seqKey   string
	readOnly bool

	// pending writes; a nil record marks a delete
	writes   map[string]storagemodels.Record
	seq      int64
	seqRead  bool
	seqDirty bool
}

func (s *Store) newTxn(r reader, db string, p storagemodels.PartitionConfig, readOnly bool) *txn {
	return &txn{
		r:        r,
		part:     p,
		dataKey:  s.dataKey(db, p.Name),
		seqKey:   s.seqKey(db, p.Name),
		readOnly: readOnly,
		writes:   make(map[string]storagemodels.Record),
	}
}

func (t *txn) Partition() storagemodels.PartitionConfig { return t.part }

func (t *txn) GetAll(ctx context.Context) ([]storagemodels.Record, error) {
	fields, err := t.r.HGetAll(ctx, t.dataKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read partition: %w", err)
	}
	rows := make(map[string]storagemodels.Record, len(fields))
	for field, value := range fields {
		rec, err := decodeRecord([]byte(value))
		if err != nil {
			return nil, fmt.Errorf("failed to decode record %q: %w", field, err)
		}
		rows[field] = rec
	}
	for field, rec := range t.writes {
		if rec == nil {
			delete(rows, field)
		} else {
			rows[field] = rec
		}
	}
	out := make([]storagemodels.Record, 0, len(rows))
	for _, rec := range rows {
		c, err := datastore.Canonical(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	storagemodels.SortByKey(out, t.part.KeyPath)
	return out, nil
}

func (t *txn) Get(ctx context.Context, key any) (storagemodels.Record, error) {
	k, err := storagemodels.NormalizeKey(key)
	if err != nil {
		return nil, err
	}
	field := storagemodels.EncodeKey(k)
	if rec, ok := t.writes[field]; ok {
		return datastore.Canonical(rec)
	}
	value, err := t.r.HGet(ctx, t.dataKey, field).Result()
	if err == backend.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	rec, err := decodeRecord([]byte(value))
	if err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return datastore.Canonical(rec)
}

func (t *txn) Add(ctx context.Context, rec storagemodels.Record) (any, error) {
	return t.write(ctx, rec, false)
}

func (t *txn) Put(ctx context.Context, rec storagemodels.Record) (any, error) {
	return t.write(ctx, rec, true)
}

func (t *txn) write(ctx context.Context, rec storagemodels.Record, overwrite bool) (any, error) {
	if t.readOnly {
		return nil, datastore.ErrReadOnly
	}
	seq := &sequence{ctx: ctx, t: t}
	row, key, err := datastore.PrepareWrite(t.part, rec, seq)
	if err != nil {
		return nil, err
	}
	if !overwrite {
		existing, err := t.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, errors.NewAlreadyExistsError(t.part.Name, storagemodels.FormatKey(key))
		}
	}
	seq.commit()
	t.writes[storagemodels.EncodeKey(key)] = row
	return key, nil
}

func (t *txn) Delete(ctx context.Context, key any) error {
	if t.readOnly {
		return datastore.ErrReadOnly
	}
	k, err := storagemodels.NormalizeKey(key)
	if err != nil {
		return err
	}
	t.writes[storagemodels.EncodeKey(k)] = nil
	return nil
}

func (t *txn) dirty() bool {
	return len(t.writes) > 0 || t.seqDirty
}

func (t *txn) flush(ctx context.Context, pipe backend.Pipeliner) error {
	var puts []any
	var dels []string
	for field, rec := range t.writes {
		if rec == nil {
			dels = append(dels, field)
			continue
		}
		data, err := encodeRecord(rec)
		if err != nil {
			return fmt.Errorf("failed to encode record %q: %w", field, err)
		}
		puts = append(puts, field, data)
	}
	if len(puts) > 0 {
		pipe.HSet(ctx, t.dataKey, puts...)
	}
	if len(dels) > 0 {
		pipe.HDel(ctx, t.dataKey, dels...)
	}
	if t.seqDirty {
		advanceSeq.Eval(ctx, pipe, []string{t.seqKey}, strconv.FormatInt(t.seq, 10))
	}
	return nil
}

func (t *txn) loadSeq(ctx context.Context) (int64, error) {
	if t.seqRead {
		return t.seq, nil
	}
	v, err := t.r.Get(ctx, t.seqKey).Int64()
	if err != nil && err != backend.Nil {
		return 0, fmt.Errorf("failed to read sequence: %w", err)
	}
	t.seq, t.seqRead = v, true
	return v, nil
}

// sequence stages generator changes for one write; commit applies them to the
// transaction once the write is accepted.
type sequence struct {
	ctx     context.Context
	t       *txn
	value   int64
	changed bool
}

func (s *sequence) current() (int64, error) {
	if s.changed {
		return s.value, nil
	}
	return s.t.loadSeq(s.ctx)
}

func (s *sequence) Next() (int64, error) {
	cur, err := s.current()
	if err != nil {
		return 0, err
	}
	s.value, s.changed = cur+1, true
	return s.value, nil
}

func (s *sequence) Observe(k int64) error {
	cur, err := s.current()
	if err != nil {
		return err
	}
	if k > cur {
		s.value, s.changed = k, true
	}
	return nil
}

func (s *sequence) commit() {
	if s.changed {
		s.t.seq = s.value
		s.t.seqDirty = true
	}
}
