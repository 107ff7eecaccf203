/*
Package model provides the model layer: typed access to a partition of the
storage gateway with attribute tracking and lifecycle events.

A Type describes a kind of model and carries the shared collaborators:

	users := model.NewType("User",
	    model.WithGateway(gw),
	    model.WithObservers(observers),
	    model.WithTimestamps(),
	)

	u, err := users.Create(ctx, storagemodels.Record{"name": "ada"})
	found, err := users.Find(ctx, u.Key())
	adults, err := users.Where("age", ">=", 18).OrderBy("name").Get(ctx)

Instances keep their live fields next to the snapshot taken when they were
built or loaded. IsDirty compares the two field by field with shallow ==.

# Lifecycle

Boot runs once per instance. It derives the partition name (the snake-cased
type identifier or table override), wires observers and fires booting and
booted. Every lifecycle operation fires a before and an after event:

	Save         saving, saved
	Create       creating, created          inserts the record
	Update       updating, updated          merges into the stored record
	Delete       deleting, deleted
	ForceDelete  force_deleting, force_deleted  removes the record

A handler error on the before event aborts the operation. Instances loaded from
storage also fire fetched.

# Observers

Observers are registered per type identifier in an ObserverRegistry. An
observer implements any of the per-kind interfaces, or is a Bundle:

	observers := model.NewObserverRegistry(func(b *registry.Builder[model.Observer]) {
	    b.Register("User", model.Bundle{
	        event.Saving: func(m *model.Model) model.Handler {
	            return func(ctx context.Context, m *model.Model) error {
	                return nil
	            }
	        },
	    })
	})

Each factory is called once per instance at boot, so every instance gets its
own handlers.
*/
package model
