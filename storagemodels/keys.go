/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/suparena/modelstore/errors"
)

// NormalizeKey converts a primary-key value to its canonical form:
// every integer kind (and integral floats) becomes int64, strings stay strings.
func NormalizeKey(v any) (any, error) {
	switch k := v.(type) {
	case int64:
		return k, nil
	case int:
		return int64(k), nil
	case int8:
		return int64(k), nil
	case int16:
		return int64(k), nil
	case int32:
		return int64(k), nil
	case uint:
		return uintKey(uint64(k))
	case uint8:
		return int64(k), nil
	case uint16:
		return int64(k), nil
	case uint32:
		return int64(k), nil
	case uint64:
		return uintKey(k)
	case float32:
		return floatKey(float64(k))
	case float64:
		return floatKey(k)
	case json.Number:
		if n, err := k.Int64(); err == nil {
			return n, nil
		}
		return nil, errors.NewValidationError("key", fmt.Sprintf("non-integral number %s", k))
	case string:
		return k, nil
	case nil:
		return nil, errors.NewValidationError("key", "key is missing")
	default:
		return nil, errors.NewValidationError("key", fmt.Sprintf("unsupported key type %T", v))
	}
}

func uintKey(u uint64) (any, error) {
	if u > math.MaxInt64 {
		return nil, errors.NewValidationError("key", fmt.Sprintf("key %d overflows int64", u))
	}
	return int64(u), nil
}

func floatKey(f float64) (any, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, errors.NewValidationError("key", fmt.Sprintf("non-integral number %v", f))
	}
	return int64(f), nil
}

// CoerceKey normalizes v and, for numeric partitions, parses string input such as "42".
func CoerceKey(p PartitionConfig, v any) (any, error) {
	if s, ok := v.(string); ok && p.WithDefaults().KeyType == KeyTypeNumber {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, errors.NewValidationError(p.KeyPath, fmt.Sprintf("%q is not a numeric key", s))
		}
		return n, nil
	}
	return NormalizeKey(v)
}

// EncodeKey renders a normalized key as a string that round-trips through DecodeKey.
func EncodeKey(k any) string {
	switch v := k.(type) {
	case int64:
		return "n:" + strconv.FormatInt(v, 10)
	case string:
		return "s:" + v
	default:
		return fmt.Sprintf("?:%v", v)
	}
}

// DecodeKey reverses EncodeKey.
func DecodeKey(s string) (any, error) {
	switch {
	case strings.HasPrefix(s, "n:"):
		return strconv.ParseInt(s[2:], 10, 64)
	case strings.HasPrefix(s, "s:"):
		return s[2:], nil
	default:
		return nil, fmt.Errorf("malformed encoded key %q", s)
	}
}

// FormatKey renders a key for messages.
func FormatKey(k any) string {
	return fmt.Sprintf("%v", k)
}

// CompareKeys orders normalized keys: integers ascending first, then strings lexicographically.
func CompareKeys(a, b any) int {
	ai, aInt := a.(int64)
	bi, bInt := b.(int64)
	switch {
	case aInt && bInt:
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	case aInt:
		return -1
	case bInt:
		return 1
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// SortByKey sorts records in place by their normalized primary key.
func SortByKey(records []Record, keyPath string) {
	sort.SliceStable(records, func(i, j int) bool {
		ki, _ := NormalizeKey(records[i][keyPath])
		kj, _ := NormalizeKey(records[j][keyPath])
		return CompareKeys(ki, kj) < 0
	})
}
