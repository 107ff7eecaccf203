/*
Package storagemodels contains the data types shared by the storage gateway,
the backends and the model layer.

Records:

	rec := storagemodels.Record{"name": "ada", "age": 36}
	clone := rec.Clone()

Keys are normalized before they reach a backend so that every backend agrees on
identity and ordering:

	k, err := storagemodels.NormalizeKey(42)      // int64(42)
	k, err = storagemodels.NormalizeKey(42.0)     // int64(42)
	k, err = storagemodels.NormalizeKey("abc")    // "abc"
	k, err = storagemodels.NormalizeKey(4.2)      // validation error

Schema configuration:

	cfg := storagemodels.DatabaseConfig{
	    Name:    "app",
	    Version: 1,
	    Partitions: []storagemodels.PartitionConfig{
	        {Name: "users", KeyPath: "id", AutoIncrement: true},
	        {Name: "sessions", KeyPath: "token"},
	    },
	}

Upgrade computes the additive schema change a backend must apply when it is
opened with a configuration: partitions are only ever added, and only when the
configured version is higher than the stored one.
*/
package storagemodels
