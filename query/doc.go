/*
Package query implements the in-memory query builder used by models.

A Builder reads the whole partition through its Source, then filters, orders
and paginates locally before hydrating the surviving records:

	adults, err := users.Query().
	    Where("age", ">=", 18).
	    Where("active", true).
	    OrderBy("name").
	    Skip(10).
	    Limit(10).
	    Get(ctx)

Conditions are conjunctive. Numbers compare by value across Go numeric types
(1 == 1.0), strings lexicographically, bools as false < true and times
chronologically. Ordering operators on values of different kinds, or on a
missing field, never match. Sorting is stable and ranks mixed kinds as
nil < bool < number < string < time < other.

Unknown operators match everything unless the builder was created with
WithStrictOperators, in which case Get fails with errors.ErrInvalidOperator.
Pagination applies Skip before Limit. Get and First reset the builder, even
when they fail.
*/
package query
