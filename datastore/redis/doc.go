/*
Package redis implements datastore.Backend on Redis using go-redis.

Layout, for database "app" and the default "modelstore:" prefix:

	modelstore:app:meta            hash: version, partition:<name> -> CBOR PartitionConfig
	modelstore:app:p:<partition>   hash: encoded key -> CBOR record
	modelstore:app:seq:<partition> auto-increment counter

Update transactions WATCH the partition hash and its counter, buffer writes and
commit them in a single MULTI/EXEC. When another client touches the partition
in between, the commit fails with go-redis TxFailedErr; nothing is retried.

	store := redis.New("localhost:6379", "", 0, redis.WithPrefix("myapp:"))
	schema, err := store.Open(ctx, cfg)
*/
package redis
