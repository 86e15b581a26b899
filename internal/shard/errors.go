package shard

import "fmt"

// OutOfRangeError is returned when advancing past the last shard.
type OutOfRangeError struct {
	ID    int
	Total int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("shard %d is outside [1, %d]", e.ID, e.Total)
}

// ShardMissingError is returned when a shard that must exist cannot be opened.
type ShardMissingError struct {
	Name string
	Err  error
}

func (e *ShardMissingError) Error() string {
	return fmt.Sprintf("shard %s is missing: %v", e.Name, e.Err)
}

func (e *ShardMissingError) Unwrap() error { return e.Err }
