// Package mongostore keeps dripfeed queues in MongoDB.
//
// The master collection ("master" by default) holds one document per queue
// definition. Every queue owns a collection named after its collectionname
// with documents shaped as
//
//	{orderid: 1, id: "<uuid>", text: "...", mediaurl: "..." | null, sent: "<period key>", claim: "<period key>"}
//
// A unique partial index on claim makes Claim a conditional write: two
// messages of one queue can never hold the same period key. EnsureIndexes must
// run once per collection before visits start.
package mongostore
