/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/modelstore/storagemodels"
)

// hashKey is the synthetic hash key attribute of every table.
const hashKey = "pk"

func keyAttr(key any) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		hashKey: &types.AttributeValueMemberS{Value: storagemodels.EncodeKey(key)},
	}
}

// encodeItem marshals a canonical record and adds the hash key.
func encodeItem(rec storagemodels.Record, key any) (map[string]types.AttributeValue, error) {
	if _, clash := rec[hashKey]; clash {
		return nil, fmt.Errorf("field %q is reserved", hashKey)
	}
	item, err := attributevalue.MarshalMap(map[string]any(rec))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	item[hashKey] = &types.AttributeValueMemberS{Value: storagemodels.EncodeKey(key)}
	return item, nil
}

// decodeItem unmarshals an item, dropping the hash key. Numbers are decoded
// exactly and folded to int64 when integral, float64 otherwise.
func decodeItem(item map[string]types.AttributeValue) (storagemodels.Record, error) {
	var m map[string]any
	err := attributevalue.UnmarshalMapWithOptions(item, &m, func(o *attributevalue.DecoderOptions) {
		o.UseNumber = true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	delete(m, hashKey)
	out := make(storagemodels.Record, len(m))
	for k, v := range m {
		fv, err := foldNumbers(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = fv
	}
	return out, nil
}

func foldNumbers(v any) (any, error) {
	switch x := v.(type) {
	case attributevalue.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		return x.Float64()
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			fe, err := foldNumbers(e)
			if err != nil {
				return nil, err
			}
			out[k] = fe
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			fe, err := foldNumbers(e)
			if err != nil {
				return nil, err
			}
			out[i] = fe
		}
		return out, nil
	default:
		return v, nil
	}
}
