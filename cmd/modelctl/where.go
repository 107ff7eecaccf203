/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/suparena/modelstore/errors"
	"github.com/suparena/modelstore/query"
)

func parseSpec(where []string, order string) (query.Spec, error) {
	var spec query.Spec
	for _, w := range where {
		c, err := parseCondition(w)
		if err != nil {
			return query.Spec{}, err
		}
		spec.Conditions = append(spec.Conditions, c)
	}
	if order != "" {
		field, dir, _ := strings.Cut(order, ":")
		if field == "" {
			return query.Spec{}, errors.NewValidationError("order", fmt.Sprintf("missing field in %q", order))
		}
		spec.Order = &query.Order{Field: field, Direction: query.ParseDirection(dir)}
	}
	return spec, nil
}

// parseCondition reads field=op:value, or field=value for equality.
func parseCondition(s string) (query.Condition, error) {
	field, rest, ok := strings.Cut(s, "=")
	if !ok || field == "" {
		return query.Condition{}, errors.NewValidationError("where", fmt.Sprintf("expected field=op:value, got %q", s))
	}
	// Unknown operators are passed on so that strict mode can reject them.
	if op, v, found := strings.Cut(rest, ":"); found && op != "" && strings.Trim(op, "<>=!~") == "" {
		return query.Condition{Field: field, Operator: query.Operator(op), Value: parseValue(v)}, nil
	}
	return query.Condition{Field: field, Operator: query.Eq, Value: parseValue(rest)}, nil
}

// parseValue reads JSON scalars (numbers, booleans, null, quoted strings) and
// falls back to the raw text.
func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	switch v.(type) {
	case map[string]any, []any:
		return s
	}
	return v
}
