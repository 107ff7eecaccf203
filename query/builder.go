/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package query

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/suparena/modelstore/errors"
	"github.com/suparena/modelstore/storagemodels"
)

// Operator is a comparison operator used in Where.
type Operator string

const (
	Eq  Operator = "="
	Ne  Operator = "!="
	Gt  Operator = ">"
	Lt  Operator = "<"
	Gte Operator = ">="
	Lte Operator = "<="
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection maps "desc" (any case) to Desc and everything else to Asc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// Condition is one field comparison. Conditions are always AND-ed.
type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

// Order is a single sort key.
type Order struct {
	Field     string
	Direction Direction
}

// Spec is the accumulated state of a query. Nil Skip or Limit means unset.
type Spec struct {
	Conditions []Condition
	Order      *Order
	Skip       *int
	Limit      *int
}

// Source fetches the full record set of one partition.
type Source func(ctx context.Context) ([]storagemodels.Record, error)

// Hydrator turns a record into a result value.
type Hydrator[T any] func(ctx context.Context, rec storagemodels.Record) (T, error)

type options struct {
	strict bool
}

type Option func(*options)

// WithStrictOperators makes Get fail with ErrInvalidOperator on unknown
// operators instead of treating the condition as satisfied.
func WithStrictOperators() Option {
	return func(o *options) {
		o.strict = true
	}
}

// Builder accumulates a query and runs it in memory over a snapshot of a partition.
// Every terminal call resets the accumulated state. A Builder is not safe for
// concurrent use.
type Builder[T any] struct {
	source  Source
	hydrate Hydrator[T]
	opts    options
	spec    Spec
}

// New creates a builder.
func New[T any](source Source, hydrate Hydrator[T], opts ...Option) *Builder[T] {
	b := &Builder[T]{source: source, hydrate: hydrate}
	for _, opt := range opts {
		opt(&b.opts)
	}
	return b
}

// Where adds a condition. Where("age", 30) means age = 30;
// Where("age", ">", 30) uses the given operator.
func (b *Builder[T]) Where(field string, operatorOrValue any, value ...any) *Builder[T] {
	c := Condition{Field: field, Operator: Eq, Value: operatorOrValue}
	if len(value) > 0 {
		c.Operator = toOperator(operatorOrValue)
		c.Value = value[0]
	}
	b.spec.Conditions = append(b.spec.Conditions, c)
	return b
}

func toOperator(v any) Operator {
	switch op := v.(type) {
	case Operator:
		return op
	case string:
		return Operator(strings.TrimSpace(op))
	default:
		return Operator(fmt.Sprint(v))
	}
}

// OrderBy sets the single sort key. The direction defaults to Asc.
func (b *Builder[T]) OrderBy(field string, direction ...Direction) *Builder[T] {
	dir := Asc
	if len(direction) > 0 {
		dir = ParseDirection(string(direction[0]))
	}
	b.spec.Order = &Order{Field: field, Direction: dir}
	return b
}

// Limit caps the number of results. Negative values count as 0.
func (b *Builder[T]) Limit(n int) *Builder[T] {
	n = max(n, 0)
	b.spec.Limit = &n
	return b
}

// Skip drops the first n results. Negative values count as 0.
func (b *Builder[T]) Skip(n int) *Builder[T] {
	n = max(n, 0)
	b.spec.Skip = &n
	return b
}

// Spec returns a copy of the accumulated state.
func (b *Builder[T]) Spec() Spec {
	s := b.spec
	s.Conditions = append([]Condition(nil), b.spec.Conditions...)
	return s
}

func (b *Builder[T]) reset() {
	b.spec = Spec{}
}

// Get runs the query: fetch, filter, order, paginate, hydrate. The builder is
// reset whether or not it succeeds.
func (b *Builder[T]) Get(ctx context.Context) ([]T, error) {
	defer b.reset()

	records, err := b.source(ctx)
	if err != nil {
		return nil, err
	}
	records, err = Apply(b.spec, records, b.opts.strict)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(records))
	for _, rec := range records {
		v, err := b.hydrate(ctx, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// First runs the query with a limit of 1 and returns the result, or the zero
// value of T when nothing matches.
func (b *Builder[T]) First(ctx context.Context) (T, error) {
	var zero T
	results, err := b.Limit(1).Get(ctx)
	if err != nil || len(results) == 0 {
		return zero, err
	}
	return results[0], nil
}

// Apply reduces records according to spec. The input slice is not modified.
func Apply(spec Spec, records []storagemodels.Record, strict bool) ([]storagemodels.Record, error) {
	if strict {
		for _, c := range spec.Conditions {
			if _, known := evaluate(nil, c.Operator, nil); !known {
				return nil, errors.NewInvalidOperatorError(c.Field, string(c.Operator))
			}
		}
	}

	result := make([]storagemodels.Record, 0, len(records))
	for _, rec := range records {
		if matches(rec, spec.Conditions) {
			result = append(result, rec)
		}
	}

	if o := spec.Order; o != nil {
		sort.SliceStable(result, func(i, j int) bool {
			c := sortCompare(result[i][o.Field], result[j][o.Field])
			if o.Direction == Desc {
				return c > 0
			}
			return c < 0
		})
	}

	if spec.Skip != nil {
		result = result[min(*spec.Skip, len(result)):]
	}
	if spec.Limit != nil {
		result = result[:min(*spec.Limit, len(result))]
	}
	return result, nil
}

func matches(rec storagemodels.Record, conditions []Condition) bool {
	for _, c := range conditions {
		if ok, _ := evaluate(rec[c.Field], c.Operator, c.Value); !ok {
			return false
		}
	}
	return true
}

func (o Operator) String() string {
	return string(o)
}
