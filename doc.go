/*
Package modelstore is an embedded object mapper over a transactional,
partitioned key-value store.

It combines four pieces:
  - model: typed records with dirty tracking and lifecycle events
  - registry: observers registered per model type, fixed once booted
  - query: in-memory filtering, ordering and pagination of a partition
  - gateway: one-partition transactions against a memory, Redis or DynamoDB backend

Basic Usage:

	cfg, err := config.Load("modelstore.yaml")
	store, err := modelstore.Open(ctx, cfg,
	    modelstore.WithObservers(func(b *registry.Builder[model.Observer]) {
	        b.Register("User", &UserObserver{})
	    }),
	)

	// Untyped access through a model type
	users, _ := store.Register("User")
	u, err := users.Create(ctx, storagemodels.Record{"name": "ada", "age": 36})
	u.Set("age", 37)
	err = u.Update(ctx)

	// Typed access through a repository
	type Order struct {
	    ID    int64   `json:"id"`
	    Total float64 `json:"total"`
	}
	orders, _ := modelstore.NewRepository[Order](store)
	big, err := orders.Where("total", ">", 100).OrderBy("total", query.Desc).Get(ctx)

Every partition a model type uses must be declared in the database
configuration; partitions are only ever added, when the configured version
increases.
*/
package modelstore
