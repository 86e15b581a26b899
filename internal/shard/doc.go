// Package shard maps shard sequence numbers to file names and describes
// positions inside the shard sequence.
//
// Shards are numbered 1 through Total with no gaps. The directory holding them
// is never listed; every file is opened by a name built from its id.
package shard
