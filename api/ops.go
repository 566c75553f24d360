package api

import (
	"context"
	"encoding/json"
)

// Ops is the untyped view of a resource, keyed into registries by the
// derived operation names. Typed callers should use Resource directly.
type Ops interface {
	Names() OperationNames
	ListAll(ctx context.Context, q ListQuery) (any, error)
	GetByID(ctx context.Context, id string) (any, error)
	Create(ctx context.Context, payload json.RawMessage) (any, error)
	Update(ctx context.Context, id string, payload json.RawMessage) (any, error)
	Delete(ctx context.Context, id string) error
}

// Ops returns the untyped dispatch view of the resource.
func (r *Resource[T]) Ops() Ops {
	return resourceOps[T]{r}
}

type resourceOps[T Entity] struct {
	r *Resource[T]
}

func (o resourceOps[T]) Names() OperationNames {
	return o.r.desc.Operations()
}

func (o resourceOps[T]) ListAll(ctx context.Context, q ListQuery) (any, error) {
	return o.r.List(ctx, q)
}

func (o resourceOps[T]) GetByID(ctx context.Context, id string) (any, error) {
	return o.r.Get(ctx, id)
}

func (o resourceOps[T]) Create(ctx context.Context, payload json.RawMessage) (any, error) {
	return o.r.Create(ctx, payload)
}

func (o resourceOps[T]) Update(ctx context.Context, id string, payload json.RawMessage) (any, error) {
	return o.r.Update(ctx, id, payload)
}

func (o resourceOps[T]) Delete(ctx context.Context, id string) error {
	return o.r.Delete(ctx, id)
}
