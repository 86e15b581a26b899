// Package shardtest writes synthetic shard corpora for tests.
package shardtest

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/minuteman3/log-range-extract/internal/shard"
)

// Base is the timestamp of offset 0 in generated corpora.
var Base = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// At returns Base shifted by offset seconds.
func At(offset int) time.Time {
	return Base.Add(time.Duration(offset) * time.Second)
}

// Line renders a log line at offset seconds from Base.
func Line(offset int) string {
	return fmt.Sprintf("%s,event %d", At(offset).Format(time.RFC3339Nano), offset)
}

// Lines renders one line per offset.
func Lines(offsets ...int) []string {
	lines := make([]string, len(offsets))
	for i, o := range offsets {
		lines[i] = Line(o)
	}
	return lines
}

// Seq returns the offsets [from, to).
func Seq(from, to int) []int {
	s := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		s = append(s, i)
	}
	return s
}

// Write creates one shard per element of shards in a fresh temporary directory
// and returns the directory with a Naming covering exactly those shards.
func Write(t testing.TB, windowSize int, shards ...[]string) (string, shard.Naming) {
	t.Helper()

	dir := t.TempDir()
	n := shard.NewNaming(len(shards))
	n.WindowSize = windowSize
	for i, lines := range shards {
		body := ""
		if len(lines) > 0 {
			body = strings.Join(lines, "\n") + "\n"
		}
		require.NoError(t, os.WriteFile(n.Path(dir, i+1), []byte(body), 0o644))
	}
	return dir, n
}

// Offsets groups offsets into shards of size per.
func Offsets(total, per int) [][]string {
	var shards [][]string
	for lo := 0; lo < total; lo += per {
		hi := lo + per
		if hi > total {
			hi = total
		}
		shards = append(shards, Lines(Seq(lo, hi)...))
	}
	return shards
}
