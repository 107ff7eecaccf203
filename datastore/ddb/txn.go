/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/modelstore/datastore"
	"github.com/suparena/modelstore/errors"
	"github.com/suparena/modelstore/storagemodels"
)

// maxTransactItems is the DynamoDB limit on actions per TransactWriteItems call.
const maxTransactItems = 100

const seqAttr = "seq"

type pending struct {
	key any
	rec storagemodels.Record // nil deletes
}

type txn struct {
	s        *Store
	db       string
	part     storagemodels.PartitionConfig
	readOnly bool

	observed map[string]bool
	writes   map[string]pending
	order    []string

	seq seqState
}

type seqState struct {
	loaded  bool
	exists  bool
	stored  int64
	value   int64
	changed bool
}

func (s *Store) newTxn(db string, p storagemodels.PartitionConfig, readOnly bool) *txn {
	return &txn{
		s:        s,
		db:       db,
		part:     p,
		readOnly: readOnly,
		observed: make(map[string]bool),
		writes:   make(map[string]pending),
	}
}

func (t *txn) table() string {
	return TableName(t.db, t.part.Name)
}

func (t *txn) Partition() storagemodels.PartitionConfig { return t.part }

func (t *txn) GetAll(ctx context.Context) ([]storagemodels.Record, error) {
	rows := make(map[string]storagemodels.Record)
	paginator := sdk.NewScanPaginator(t.s.client, &sdk.ScanInput{
		TableName:      aws.String(t.table()),
		ConsistentRead: aws.Bool(true),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan %s failed: %w", t.table(), err)
		}
		for _, item := range page.Items {
			enc, ok := item[hashKey].(*types.AttributeValueMemberS)
			if !ok {
				continue
			}
			rec, err := decodeItem(item)
			if err != nil {
				return nil, err
			}
			rows[enc.Value] = rec
		}
	}
	for enc, w := range t.writes {
		if w.rec == nil {
			delete(rows, enc)
		} else {
			rows[enc] = w.rec
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
	enc := storagemodels.EncodeKey(k)
	if w, ok := t.writes[enc]; ok {
		return datastore.Canonical(w.rec)
	}

	out, err := t.s.client.GetItem(ctx, &sdk.GetItemInput{
		TableName:      aws.String(t.table()),
		Key:            keyAttr(k),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem error: %w", err)
	}
	if _, seen := t.observed[enc]; !seen {
		t.observed[enc] = out.Item != nil
	}
	if out.Item == nil {
		return nil, nil
	}
	return decodeItem(out.Item)
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
	t.stage(key, row)
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
	t.stage(k, nil)
	return nil
}

func (t *txn) stage(key any, rec storagemodels.Record) {
	enc := storagemodels.EncodeKey(key)
	if _, ok := t.writes[enc]; !ok {
		t.order = append(t.order, enc)
	}
	t.writes[enc] = pending{key: key, rec: rec}
}

// condition asserts the existence state the transaction observed for a key.
func (t *txn) condition(enc string) *string {
	existed, seen := t.observed[enc]
	switch {
	case !seen:
		return nil
	case existed:
		return aws.String("attribute_exists(pk)")
	default:
		return aws.String("attribute_not_exists(pk)")
	}
}

func (t *txn) transactItems() ([]types.TransactWriteItem, error) {
	items := make([]types.TransactWriteItem, 0, len(t.order)+1)
	for _, enc := range t.order {
		w := t.writes[enc]
		if w.rec == nil {
			items = append(items, types.TransactWriteItem{Delete: &types.Delete{
				TableName:           aws.String(t.table()),
				Key:                 keyAttr(w.key),
				ConditionExpression: t.condition(enc),
			}})
			continue
		}
		item, err := encodeItem(w.rec, w.key)
		if err != nil {
			return nil, err
		}
		items = append(items, types.TransactWriteItem{Put: &types.Put{
			TableName:           aws.String(t.table()),
			Item:                item,
			ConditionExpression: t.condition(enc),
		}})
	}
	if t.seq.changed {
		update := &types.Update{
			TableName:                aws.String(sequenceTable(t.db)),
			Key:                      map[string]types.AttributeValue{hashKey: &types.AttributeValueMemberS{Value: t.part.Name}},
			UpdateExpression:         aws.String("SET #s = :next"),
			ExpressionAttributeNames: map[string]string{"#s": seqAttr},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":next": &types.AttributeValueMemberN{Value: strconv.FormatInt(t.seq.value, 10)},
			},
			ConditionExpression: aws.String("attribute_not_exists(pk)"),
		}
		if t.seq.exists {
			update.ConditionExpression = aws.String("#s = :prev")
			update.ExpressionAttributeValues[":prev"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(t.seq.stored, 10)}
		}
		items = append(items, types.TransactWriteItem{Update: update})
	}
	if len(items) > maxTransactItems {
		return nil, errors.NewValidationError("transaction", fmt.Sprintf("%d writes exceed the limit of %d", len(items), maxTransactItems))
	}
	return items, nil
}

func (t *txn) commit(ctx context.Context) error {
	items, err := t.transactItems()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	_, err = t.s.client.TransactWriteItems(ctx, &sdk.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		return fmt.Errorf("TransactWriteItems on %s failed: %w", t.table(), err)
	}
	return nil
}

func (t *txn) loadSeq(ctx context.Context) (int64, error) {
	if t.seq.loaded {
		return t.seq.value, nil
	}
	out, err := t.s.client.GetItem(ctx, &sdk.GetItemInput{
		TableName:      aws.String(sequenceTable(t.db)),
		Key:            map[string]types.AttributeValue{hashKey: &types.AttributeValueMemberS{Value: t.part.Name}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to read sequence: %w", err)
	}
	t.seq.loaded = true
	if out.Item != nil {
		n, ok := out.Item[seqAttr].(*types.AttributeValueMemberN)
		if !ok {
			return 0, fmt.Errorf("corrupt sequence item for %s", t.part.Name)
		}
		v, err := strconv.ParseInt(n.Value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("corrupt sequence value %q: %w", n.Value, err)
		}
		t.seq.exists, t.seq.stored, t.seq.value = true, v, v
	}
	return t.seq.value, nil
}

// sequence stages generator changes for one write; commit applies them once
// the write is accepted.
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
		s.t.seq.value = s.value
		s.t.seq.changed = true
	}
}
