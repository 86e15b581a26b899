// Package search finds the boundary positions of a timestamp range in a
// sequence of chronologically ordered shards.
//
// The search has two levels. A binary search over windows of shard ids picks
// the shard holding a boundary; inside that shard a buffered forward scan
// brackets the boundary and a binary search over the buffered lines finds
// the exact line. Shards are never loaded whole.
package search
