// Package pgstore keeps dripfeed queues in PostgreSQL.
//
// Queue definitions live in the queues table; messages of every queue share
// the messages table, partitioned by the collection column. The unique
// partial index on (collection, claim) turns Claim into a conditional write.
// Apply the embedded migrations with pg.Migrate(ctx, pool, cfg, pgstore.Migrations, "migrations", log).
package pgstore
