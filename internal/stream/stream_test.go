package stream

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minuteman3/log-range-extract/internal/shard"
	"github.com/minuteman3/log-range-extract/internal/shard/shardtest"
)

func joined(offsets ...int) string {
	return strings.Join(shardtest.Lines(offsets...), "\n") + "\n"
}

func TestStream(t *testing.T) {
	// T+0..T+4, T+5..T+9, T+10..T+14
	dir, n := shardtest.Write(t, 10, shardtest.Offsets(15, 5)...)
	s := NewStreamer(dir, n, 0)

	tests := []struct {
		name       string
		start, end shard.Position
		expected   string
		shards     int
	}{
		{
			name:     "across three shards",
			start:    shard.Position{Shard: 1, Line: 3},
			end:      shard.Position{Shard: 3, Line: 1},
			expected: joined(shardtest.Seq(3, 12)...),
			shards:   3,
		},
		{
			name:     "single line",
			start:    shard.Position{Shard: 2, Line: 2},
			end:      shard.Position{Shard: 2, Line: 2},
			expected: joined(7),
			shards:   1,
		},
		{
			name:     "within one shard",
			start:    shard.Position{Shard: 2, Line: 1},
			end:      shard.Position{Shard: 2, Line: 3},
			expected: joined(6, 7, 8),
			shards:   1,
		},
		{
			name:     "end of shard",
			start:    shard.Position{Shard: 1, Line: 4},
			end:      shard.Position{Shard: 1, Line: shard.EndOfShard},
			expected: joined(4),
			shards:   1,
		},
		{
			name:     "to end of corpus",
			start:    shard.Position{Shard: 1, Line: 0},
			end:      shard.Position{Shard: 3, Line: shard.EndOfShard},
			expected: joined(shardtest.Seq(0, 15)...),
			shards:   3,
		},
		{
			name:     "end on first line of next shard",
			start:    shard.Position{Shard: 1, Line: 4},
			end:      shard.Position{Shard: 2, Line: 0},
			expected: joined(4, 5),
			shards:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			stats, err := s.Stream(context.Background(), tt.start, tt.end, &out)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out.String())
			assert.Equal(t, tt.shards, stats.Shards)
			assert.Equal(t, int64(strings.Count(tt.expected, "\n")), stats.Lines)
			assert.Equal(t, int64(len(tt.expected)), stats.Bytes)
		})
	}
}

func TestStreamReversedRangeWritesNothing(t *testing.T) {
	dir, n := shardtest.Write(t, 10, shardtest.Offsets(10, 5)...)

	var out bytes.Buffer
	stats, err := NewStreamer(dir, n, 0).Stream(context.Background(),
		shard.Position{Shard: 2, Line: 1}, shard.Position{Shard: 1, Line: 3}, &out)
	require.NoError(t, err)
	assert.Empty(t, out.String())
	assert.Equal(t, Stats{}, stats)
}

func TestStreamMissingShard(t *testing.T) {
	dir, n := shardtest.Write(t, 10, shardtest.Offsets(15, 5)...)
	require.NoError(t, os.Remove(n.Path(dir, 2)))

	var out bytes.Buffer
	_, err := NewStreamer(dir, n, 0).Stream(context.Background(),
		shard.Position{Shard: 1, Line: 3}, shard.Position{Shard: 3, Line: 1}, &out)

	var missing *shard.ShardMissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "LogFile-000002.log", missing.Name)
	assert.Contains(t, err.Error(), "LogFile-000002.log")
	// Lines written before the gap stay written.
	assert.Equal(t, joined(3, 4), out.String())
}

func TestStreamPastLastShard(t *testing.T) {
	dir, n := shardtest.Write(t, 10, shardtest.Offsets(10, 5)...)

	var out bytes.Buffer
	_, err := NewStreamer(dir, n, 0).Stream(context.Background(),
		shard.Position{Shard: 2, Line: 0}, shard.Position{Shard: 3, Line: 0}, &out)

	var oor *shard.OutOfRangeError
	require.True(t, errors.As(err, &oor))
	assert.Equal(t, joined(5, 6, 7, 8, 9), out.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestStreamWriteError(t *testing.T) {
	dir, n := shardtest.Write(t, 10, shardtest.Offsets(5, 5)...)

	_, err := NewStreamer(dir, n, 0).Stream(context.Background(),
		shard.Position{Shard: 1, Line: 0}, shard.Position{Shard: 1, Line: shard.EndOfShard}, failingWriter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestStreamCanceled(t *testing.T) {
	dir, n := shardtest.Write(t, 10, shardtest.Offsets(10, 5)...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	_, err := NewStreamer(dir, n, 0).Stream(ctx,
		shard.Position{Shard: 1, Line: 0}, shard.Position{Shard: 2, Line: 0}, &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}
