package stream

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/minuteman3/log-range-extract/internal/shard"
)

const defaultMaxLineBytes = 1 << 20

// Stats summarises one Stream call.
type Stats struct {
	Shards int
	Lines  int64
	Bytes  int64
}

// Streamer writes the lines between two positions.
type Streamer struct {
	dir          string
	naming       shard.Naming
	maxLineBytes int
}

// NewStreamer returns a Streamer over the shards in dir. maxLineBytes bounds
// the length of one line; zero selects a default.
func NewStreamer(dir string, naming shard.Naming, maxLineBytes int) *Streamer {
	if maxLineBytes <= 0 {
		maxLineBytes = defaultMaxLineBytes
	}
	return &Streamer{dir: dir, naming: naming, maxLineBytes: maxLineBytes}
}

// Stream writes every line from start through end, both inclusive, to sink,
// each followed by a newline. An end with shard.EndOfShard runs to the end of
// its shard. The sink is not closed. Lines written before an error are not
// retracted.
func (s *Streamer) Stream(ctx context.Context, start, end shard.Position, sink io.Writer) (Stats, error) {
	var stats Stats
	if end.Before(start) {
		return stats, nil
	}

	id, skip := start.Shard, start.Line
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		last := -1
		if id == end.Shard {
			last = end.Line
		}
		if err := s.copyShard(id, skip, last, sink, &stats); err != nil {
			return stats, err
		}
		if id == end.Shard {
			break
		}

		next, err := s.naming.Next(id)
		if err != nil {
			return stats, err
		}
		id, skip = next, 0
	}

	glog.V(1).Infof("streamed %d lines (%d bytes) from %d shards", stats.Lines, stats.Bytes, stats.Shards)
	return stats, nil
}

// copyShard writes lines skip through last of shard id. A negative last
// copies to the end of the file.
func (s *Streamer) copyShard(id, skip, last int, sink io.Writer, stats *Stats) error {
	name := s.naming.NameOf(id)
	f, err := os.Open(s.naming.Path(s.dir, id))
	if err != nil {
		return &shard.ShardMissingError{Name: name, Err: err}
	}
	defer f.Close()
	stats.Shards++

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), s.maxLineBytes)

	for i := 0; last < 0 || i <= last; i++ {
		if !sc.Scan() {
			break
		}
		if i < skip {
			continue
		}
		line := sc.Bytes()
		if _, err := sink.Write(line); err != nil {
			return errors.Wrap(err, "write line")
		}
		if _, err := sink.Write(newline); err != nil {
			return errors.Wrap(err, "write line")
		}
		stats.Lines++
		stats.Bytes += int64(len(line)) + 1
	}
	return errors.Wrapf(sc.Err(), "read %s", name)
}

var newline = []byte{'\n'}
