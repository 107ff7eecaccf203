/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package modelstore

import (
	"context"

	"github.com/suparena/modelstore/model"
	"github.com/suparena/modelstore/query"
	"github.com/suparena/modelstore/registry"
	"github.com/suparena/modelstore/storagemodels"
)

// Repository gives typed access to a model type. Values of T are converted to
// and from records through their json tags.
type Repository[T any] struct {
	typ *model.Type
}

// NewRepository registers a model type named after T and returns a repository for it.
func NewRepository[T any](s *Store, opts ...model.TypeOption) (*Repository[T], error) {
	t, err := s.Register(registry.TypeName[T](), opts...)
	if err != nil {
		return nil, err
	}
	return RepositoryFor[T](t), nil
}

// RepositoryFor wraps an existing model type.
func RepositoryFor[T any](t *model.Type) *Repository[T] {
	return &Repository[T]{typ: t}
}

// Type returns the underlying model type.
func (r *Repository[T]) Type() *model.Type {
	return r.typ
}

func (r *Repository[T]) decode(m *model.Model) (T, error) {
	var v T
	err := m.Decode(&v)
	return v, err
}

func (r *Repository[T]) hydrate(ctx context.Context, rec storagemodels.Record) (T, error) {
	m, err := r.typ.Hydrate(ctx, rec)
	if err != nil {
		var zero T
		return zero, err
	}
	return r.decode(m)
}

// All returns every stored value in key order.
func (r *Repository[T]) All(ctx context.Context) ([]T, error) {
	models, err := r.typ.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(models))
	for _, m := range models {
		v, err := r.decode(m)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Find returns the value stored under id.
func (r *Repository[T]) Find(ctx context.Context, id any) (T, error) {
	m, err := r.typ.Find(ctx, id)
	if err != nil {
		var zero T
		return zero, err
	}
	return r.decode(m)
}

// Create stores v and returns it as stored, including its assigned key. A zero
// key (0 or "") counts as no key, so auto-increment partitions assign one.
func (r *Repository[T]) Create(ctx context.Context, v T) (T, error) {
	var zero T
	rec, err := model.EncodeRecord(v)
	if err != nil {
		return zero, err
	}
	switch rec[r.typ.PrimaryKey()] {
	case int64(0), "":
		delete(rec, r.typ.PrimaryKey())
	}
	m, err := r.typ.Create(ctx, rec)
	if err != nil {
		return zero, err
	}
	return r.decode(m)
}

// Update merges patch, a map or a struct, into the value stored under id.
// A struct patch is encoded through its json tags like Create, so every field
// without omitempty is written, zero values included. Partial updates pass a
// map or a struct whose fields are all omitempty.
func (r *Repository[T]) Update(ctx context.Context, id any, patch any) (T, error) {
	var zero T
	rec, err := model.EncodeRecord(patch)
	if err != nil {
		return zero, err
	}
	m, err := r.typ.Update(ctx, id, rec)
	if err != nil {
		return zero, err
	}
	return r.decode(m)
}

// ForceDelete removes the value stored under id and returns it.
func (r *Repository[T]) ForceDelete(ctx context.Context, id any) (T, error) {
	m, err := r.typ.ForceDelete(ctx, id)
	if err != nil {
		var zero T
		return zero, err
	}
	return r.decode(m)
}

// Query starts a typed query.
func (r *Repository[T]) Query() *query.Builder[T] {
	return query.New(r.typ.Fetch, r.hydrate, r.typ.QueryOptions()...)
}

// Where starts a typed query with one condition.
func (r *Repository[T]) Where(field string, operatorOrValue any, value ...any) *query.Builder[T] {
	return r.Query().Where(field, operatorOrValue, value...)
}
