/*
Package ddb implements datastore.Backend on Amazon DynamoDB.

Every partition is stored in its own table, "<db>_<partition>", keyed by a
synthetic string hash key "pk" that holds the encoded primary key. Two more
tables hold bookkeeping:

	<db>__meta       one item: schema version and partition configurations
	<db>__sequences  one item per auto-increment partition

Open creates missing tables (on-demand billing) and waits for them to become
active. Reads are strongly consistent. Update transactions buffer their writes
and commit them with one TransactWriteItems call; each write carries a
condition asserting that its key is still in the state the transaction read,
and the sequence update is conditioned on the counter value read. A conflicting
writer therefore cancels the whole transaction.

	client, err := ddb.NewClient(ctx, ddb.ClientConfig{Region: "us-east-1"})
	store := ddb.New(client)
	schema, err := store.Open(ctx, cfg)

Records are marshalled with attributevalue; numbers come back as int64 when
integral and float64 otherwise.
*/
package ddb
