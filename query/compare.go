/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package query

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
)

type number struct {
	i     int64
	f     float64
	isInt bool
}

func asNumber(v any) (number, bool) {
	if v == nil {
		return number{}, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return number{i: rv.Int(), f: float64(rv.Int()), isInt: true}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return number{f: float64(u)}, true
		}
		return number{i: int64(u), f: float64(u), isInt: true}, true
	case reflect.Float32, reflect.Float64:
		return number{f: rv.Float()}, true
	}
	return number{}, false
}

func compareNumbers(a, b number) int {
	if a.isInt && b.isInt {
		switch {
		case a.i < b.i:
			return -1
		case a.i > b.i:
			return 1
		}
		return 0
	}
	switch {
	case a.f < b.f:
		return -1
	case a.f > b.f:
		return 1
	}
	return 0
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case strfmt.DateTime:
		return time.Time(t), true
	case *strfmt.DateTime:
		if t == nil {
			return time.Time{}, false
		}
		return time.Time(*t), true
	}
	return time.Time{}, false
}

// asStoredTime also accepts the RFC 3339 strings that records hold for times.
func asStoredTime(v any) (time.Time, bool) {
	if s, ok := v.(string); ok {
		dt, err := strfmt.ParseDateTime(s)
		if err != nil {
			return time.Time{}, false
		}
		return time.Time(dt), true
	}
	return asTime(v)
}

// order compares two values of the same family. ok is false when they are not
// comparable: different families, nil, or a type with no natural order.
func order(a, b any) (c int, ok bool) {
	if na, isNum := asNumber(a); isNum {
		if nb, isNum := asNumber(b); isNum {
			return compareNumbers(na, nb), true
		}
		return 0, false
	}
	if ta, isTime := asTime(a); isTime {
		if tb, isTime := asStoredTime(b); isTime {
			return ta.Compare(tb), true
		}
		return 0, false
	}
	if tb, isTime := asTime(b); isTime {
		if ta, isTime := asStoredTime(a); isTime {
			return ta.Compare(tb), true
		}
		return 0, false
	}
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), true
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0, true
			case !x:
				return -1, true
			default:
				return 1, true
			}
		}
	}
	return 0, false
}

// equal is strict equality with numbers compared by value across kinds and
// times by instant. Maps, slices and other non-comparable values are equal only
// when they are the same instance.
func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if c, ok := order(a, b); ok {
		return c == 0
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	return sameInstance(a, b)
}

func sameInstance(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Map, reflect.Slice, reflect.Func, reflect.Pointer, reflect.Chan:
		return va.Pointer() == vb.Pointer() && (va.Kind() != reflect.Slice || va.Len() == vb.Len())
	}
	return false
}

// rank orders value families for sorting: nil < bool < number < string < time < other.
func rank(v any) int {
	if v == nil {
		return 0
	}
	if _, ok := v.(bool); ok {
		return 1
	}
	if _, ok := asNumber(v); ok {
		return 2
	}
	if _, ok := v.(string); ok {
		return 3
	}
	if _, ok := asTime(v); ok {
		return 4
	}
	return 5
}

// sortCompare is a total order used by OrderBy.
func sortCompare(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	if c, ok := order(a, b); ok {
		return c
	}
	if ra == 0 {
		return 0
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// evaluate applies op to a field value. known is false for unrecognised operators.
func evaluate(fieldValue any, op Operator, value any) (result bool, known bool) {
	switch op {
	case Eq:
		return equal(fieldValue, value), true
	case Ne:
		return !equal(fieldValue, value), true
	case Gt, Lt, Gte, Lte:
		c, ok := order(fieldValue, value)
		if !ok {
			return false, true
		}
		switch op {
		case Gt:
			return c > 0, true
		case Lt:
			return c < 0, true
		case Gte:
			return c >= 0, true
		default:
			return c <= 0, true
		}
	}
	return true, false
}
