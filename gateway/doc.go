/*
Package gateway is the storage gateway models talk to.

A Gateway wraps one datastore.Backend. Connect opens the backend exactly once;
every later call returns the same *Conn, so the partition set is fixed for the
life of the connection:

	gw := gateway.New(memory.New(), gateway.WithLogger(logger))
	conn, err := gw.Connect(ctx, &storagemodels.DatabaseConfig{
	    Name:    "app",
	    Version: 1,
	    Partitions: []storagemodels.PartitionConfig{
	        {Name: "users", AutoIncrement: true},
	    },
	})

Each data operation runs in its own transaction scoped to a single partition.
Update is the one compound operation: it reads, merges and writes inside one
transaction and fails with NotFound, writing nothing, when the record is absent.

Errors:
  - errors.ErrStorageNotInitialized before Connect
  - *errors.UnknownPartitionError for partitions outside the connection
  - *errors.StorageOperationError wrapping any unclassified backend failure

Nothing is retried.
*/
package gateway
