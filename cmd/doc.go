// Command log-range-extract prints the log lines that fall within a timestamp
// range, reading from a directory of numbered, chronologically ordered log
// shards.
//
// The shard holding each end of the range is found by binary search, and only
// the lines in between are read and printed.
//
// Usage:
//
//	log-range-extract -f 2020-01-01T10:00:00Z -t 2020-01-01T11:00:00Z -i /var/log/app
package main
