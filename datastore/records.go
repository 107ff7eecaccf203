/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/suparena/modelstore/errors"
	"github.com/suparena/modelstore/storagemodels"
)

// RecordKey extracts and normalises the primary key of rec.
// ok is false when the record carries no key at all.
func RecordKey(p storagemodels.PartitionConfig, rec storagemodels.Record) (key any, ok bool, err error) {
	raw, present := rec[p.KeyPath]
	if !present || raw == nil {
		return nil, false, nil
	}
	key, err = storagemodels.NormalizeKey(raw)
	if err != nil {
		return nil, true, errors.NewValidationError(p.KeyPath, err.Error())
	}
	return key, true, nil
}

// Sequence tracks the key generator of an auto-increment partition.
type Sequence interface {
	// Next returns the next generated key.
	Next() (int64, error)
	// Observe advances the generator past an explicitly supplied key.
	Observe(key int64) error
}

// PrepareWrite returns a canonical copy of rec with its key assigned.
// A missing key is generated for auto-increment partitions and rejected otherwise.
func PrepareWrite(p storagemodels.PartitionConfig, rec storagemodels.Record, seq Sequence) (storagemodels.Record, any, error) {
	out, err := Canonical(rec)
	if err != nil {
		return nil, nil, err
	}
	if out == nil {
		out = storagemodels.Record{}
	}
	key, ok, err := RecordKey(p, out)
	if err != nil {
		return nil, nil, err
	}
	switch {
	case !ok && p.AutoIncrement:
		n, err := seq.Next()
		if err != nil {
			return nil, nil, err
		}
		key = n
	case !ok:
		return nil, nil, errors.NewValidationError(p.KeyPath, fmt.Sprintf("partition %q requires an explicit key", p.Name))
	case p.AutoIncrement:
		if n, isInt := key.(int64); isInt {
			if err := seq.Observe(n); err != nil {
				return nil, nil, err
			}
		}
	}
	out[p.KeyPath] = key
	return out, key, nil
}

// Canonical returns a deep copy of rec with numbers folded to int64 or float64 and
// times rendered as RFC3339 strings, so that every backend hands back the same value types.
func Canonical(rec storagemodels.Record) (storagemodels.Record, error) {
	if rec == nil {
		return nil, nil
	}
	out := make(storagemodels.Record, len(rec))
	for k, v := range rec {
		cv, err := CanonicalValue(v)
		if err != nil {
			return nil, errors.NewValidationError(k, err.Error())
		}
		out[k] = cv
	}
	return out, nil
}

// CanonicalValue folds one value. Maps and slices are copied recursively.
func CanonicalValue(v any) (any, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint:
		return uintValue(uint64(x))
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		return uintValue(x)
	case float32:
		return float64(x), nil
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		return x.Float64()
	case storagemodels.Record:
		return CanonicalValue(map[string]any(x))
	case time.Time:
		return strfmt.DateTime(x).String(), nil
	case strfmt.DateTime:
		return x.String(), nil
	case map[string]any:
		r, err := Canonical(x)
		if err != nil {
			return nil, err
		}
		return map[string]any(r), nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			ce, err := CanonicalValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = ce
		}
		return out, nil
	case []string:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = e
		}
		return out, nil
	default:
		return v, nil
	}
}

func uintValue(u uint64) (any, error) {
	if u > math.MaxInt64 {
		return nil, fmt.Errorf("value %d overflows int64", u)
	}
	return int64(u), nil
}
