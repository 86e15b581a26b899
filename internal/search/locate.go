package search

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/minuteman3/log-range-extract/internal/logline"
	"github.com/minuteman3/log-range-extract/internal/shard"
)

const (
	// DefaultBufferLines is the number of lines held in memory per scan step.
	DefaultBufferLines = 100000
	// DefaultMaxLineBytes bounds the length of a single line.
	DefaultMaxLineBytes = 1 << 20
)

// Bound selects which side of the target a boundary line sits on.
type Bound int

const (
	// LowerBound finds the first line at or after the target.
	LowerBound Bound = iota
	// UpperBound finds the first line strictly after the target.
	UpperBound
)

func (b Bound) String() string {
	if b == UpperBound {
		return "upper"
	}
	return "lower"
}

// before reports whether a line at ts sits before the boundary for target.
func (b Bound) before(ts, target time.Time) bool {
	if b == UpperBound {
		return !ts.After(target)
	}
	return ts.Before(target)
}

// Kind classifies the outcome of probing one shard.
type Kind int

const (
	// Unknown is the zero Kind, carried by outcomes returned with an error.
	Unknown Kind = iota
	// FoundAt means the boundary line is inside the shard.
	FoundAt
	// BeforeShard means the shard's first line is already past the target.
	BeforeShard
	// AfterShard means every line of the shard is before the target.
	AfterShard
)

func (k Kind) String() string {
	switch k {
	case BeforeShard:
		return "before"
	case AfterShard:
		return "after"
	case FoundAt:
		return "found"
	}
	return "unknown"
}

// Outcome is the result of probing one shard. Line is only meaningful for
// FoundAt.
type Outcome struct {
	Kind Kind
	Line int
}

func (o Outcome) String() string {
	if o.Kind == FoundAt {
		return fmt.Sprintf("found at %d", o.Line)
	}
	return o.Kind.String()
}

// Locate probes shard id for the boundary of target.
//
// The first line decides BeforeShard. Otherwise the shard is read in buffers
// of BufferLines lines until a buffer's last line is no longer before the
// target, and that buffer is binary searched. Reaching end of file with every
// line before the target yields AfterShard.
func (l *Locator) Locate(ctx context.Context, id int, target time.Time, bound Bound) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	name := l.naming.NameOf(id)
	f, err := os.Open(l.naming.Path(l.dir, id))
	if err != nil {
		if os.IsNotExist(err) {
			return Outcome{}, &shard.ShardMissingError{Name: name, Err: err}
		}
		return Outcome{}, errors.Wrapf(err, "open %s", name)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), l.maxLineBytes)

	out, err := l.scan(sc, target, bound)
	if err != nil {
		return Outcome{}, errors.Wrapf(err, "shard %s", name)
	}
	glog.V(2).Infof("probe %s for %s (%s bound): %s", name, target.Format(time.RFC3339Nano), bound, out)
	return out, nil
}

func (l *Locator) scan(sc *bufio.Scanner, target time.Time, bound Bound) (Outcome, error) {
	if !sc.Scan() {
		// Empty shard: nothing in it reaches the target.
		return Outcome{Kind: AfterShard}, sc.Err()
	}

	first := copyLine(sc.Bytes())
	ts, err := first.Timestamp()
	if err != nil {
		return Outcome{}, err
	}
	if !bound.before(ts, target) {
		if ts.Equal(target) {
			return Outcome{Kind: FoundAt, Line: 0}, nil
		}
		return Outcome{Kind: BeforeShard}, nil
	}

	buf := make([]logline.Line, 0, l.bufferLines)
	buf = append(buf, first)
	base := 0
	for {
		eof := false
		for len(buf) < l.bufferLines {
			if !sc.Scan() {
				eof = true
				break
			}
			buf = append(buf, copyLine(sc.Bytes()))
		}
		if err := sc.Err(); err != nil {
			return Outcome{}, err
		}
		if len(buf) == 0 {
			// The previous buffer ended exactly at end of file.
			return Outcome{Kind: AfterShard}, nil
		}

		ts, err := buf[len(buf)-1].Timestamp()
		if err != nil {
			return Outcome{}, err
		}
		if !bound.before(ts, target) {
			i, err := firstNotBefore(buf, target, bound)
			if err != nil {
				return Outcome{}, err
			}
			return Outcome{Kind: FoundAt, Line: base + i}, nil
		}
		if eof {
			return Outcome{Kind: AfterShard}, nil
		}

		base += len(buf)
		buf = buf[:0]
	}
}

// firstNotBefore returns the index of the first line in buf that is not before
// the boundary. The last line of buf must not be before it.
func firstNotBefore(buf []logline.Line, target time.Time, bound Bound) (int, error) {
	lo, hi := 0, len(buf)-1
	for lo < hi {
		mid := lo + (hi-lo)/2
		ts, err := buf[mid].Timestamp()
		if err != nil {
			return 0, err
		}
		if bound.before(ts, target) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, nil
}

// copyLine detaches a scanned line from the scanner's buffer.
func copyLine(b []byte) logline.Line {
	line := make(logline.Line, len(b))
	copy(line, b)
	return line
}
