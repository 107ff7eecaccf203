/*
Package datastore defines the backend contract behind the storage gateway.

A Backend holds one logical database made of named partitions. Every call runs
inside a transaction scoped to exactly one partition:

	err := backend.Update(ctx, "users", func(tx datastore.Txn) error {
	    key, err := tx.Add(ctx, storagemodels.Record{"name": "ada"})
	    ...
	    return err
	})

Returning an error from the callback discards the transaction's writes.

Implementations:
  - memory: in-process maps, clone-then-commit transactions
  - redis: go-redis with WATCH/MULTI and CBOR encoded records
  - ddb: DynamoDB, one table per partition, TransactWriteItems commits

The datastoretest package holds the contract suite every implementation runs.
Records cross the boundary in canonical form (see Canonical): integers as int64,
floats as float64, nested maps as map[string]any and lists as []any.
*/
package datastore
