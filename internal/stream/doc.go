// Package stream copies a resolved range of log lines to a writer, crossing
// shard boundaries as needed.
package stream
