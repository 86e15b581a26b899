package shard

import "fmt"

// EndOfShard as a Position line means "through the last line of the shard".
const EndOfShard = -1

// Position addresses a line in the shard sequence.
type Position struct {
	Shard int
	Line  int
}

// Unbounded reports whether p extends to the end of its shard.
func (p Position) Unbounded() bool {
	return p.Line == EndOfShard
}

// Before reports whether p addresses a line strictly before q.
func (p Position) Before(q Position) bool {
	if p.Shard != q.Shard {
		return p.Shard < q.Shard
	}
	if p.Unbounded() {
		return false
	}
	if q.Unbounded() {
		return true
	}
	return p.Line < q.Line
}

func (p Position) String() string {
	if p.Unbounded() {
		return fmt.Sprintf("%d:end", p.Shard)
	}
	return fmt.Sprintf("%d:%d", p.Shard, p.Line)
}
