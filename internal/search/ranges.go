package search

import (
	"context"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/minuteman3/log-range-extract/internal/shard"
)

// Options tunes how shards are read.
type Options struct {
	// BufferLines is the number of lines buffered per scan step.
	BufferLines int

	// MaxLineBytes is the longest line accepted.
	MaxLineBytes int
}

// Locator resolves boundary positions over the shards of one directory. It
// holds no mutable state and may be used from several goroutines.
type Locator struct {
	dir          string
	naming       shard.Naming
	bufferLines  int
	maxLineBytes int
}

// NewLocator returns a Locator over the shards in dir.
func NewLocator(dir string, naming shard.Naming, opts Options) (*Locator, error) {
	if err := naming.Validate(); err != nil {
		return nil, err
	}
	l := &Locator{
		dir:          dir,
		naming:       naming,
		bufferLines:  opts.BufferLines,
		maxLineBytes: opts.MaxLineBytes,
	}
	if l.bufferLines <= 0 {
		l.bufferLines = DefaultBufferLines
	}
	if l.maxLineBytes <= 0 {
		l.maxLineBytes = DefaultMaxLineBytes
	}
	return l, nil
}

// WindowResult is what one binary search round over a window learned.
type WindowResult struct {
	// Found is set when a shard in the window holds the boundary past its
	// first line.
	Found bool
	Pos   shard.Position

	// Candidate is the lowest shard whose first line is already at or past
	// the boundary, or 0 when the whole window is before it.
	Candidate int
}

// SearchWindow binary searches the shards of w for the boundary of target.
//
// AfterShard moves the search right. BeforeShard and a boundary on line 0 both
// mean the boundary is at or before the start of the shard, so the shard is
// remembered as a candidate and the search moves left. A window whose search
// ends with neither a hit nor a candidate lies entirely before the target.
func (l *Locator) SearchWindow(ctx context.Context, w shard.Window, target time.Time, bound Bound) (WindowResult, error) {
	var res WindowResult
	lo, hi := w.Lo, w.Hi
	for lo <= hi {
		mid := lo + (hi-lo)/2
		out, err := l.Locate(ctx, mid, target, bound)
		if err != nil {
			return WindowResult{}, err
		}

		switch {
		case out.Kind == AfterShard:
			lo = mid + 1
		case out.Kind == BeforeShard, out.Kind == FoundAt && out.Line == 0:
			res.Candidate = mid
			hi = mid - 1
		case out.Kind == FoundAt:
			res.Found = true
			res.Pos = shard.Position{Shard: mid, Line: out.Line}
			return res, nil
		default:
			return WindowResult{}, errors.Errorf("probe of shard %d returned %s", mid, out)
		}
	}
	return res, nil
}

// LocateStart returns the position of the first line at or after t. It
// reports false when every line of the corpus is before t.
func (l *Locator) LocateStart(ctx context.Context, t time.Time) (shard.Position, bool, error) {
	for _, w := range l.naming.Windows() {
		res, err := l.SearchWindow(ctx, w, t, LowerBound)
		if err != nil {
			return shard.Position{}, false, err
		}
		switch {
		case res.Found:
			return res.Pos, true, nil
		case res.Candidate > 0:
			return shard.Position{Shard: res.Candidate, Line: 0}, true, nil
		}
		glog.V(1).Infof("start %s not in window %s", t.Format(time.RFC3339Nano), w)
	}
	return shard.Position{}, false, nil
}

// LocateEnd returns the position of the last line at or before t. When t
// follows the whole corpus the position is the unbounded end of the last
// shard. It reports false when t precedes every line.
func (l *Locator) LocateEnd(ctx context.Context, t time.Time) (shard.Position, bool, error) {
	for _, w := range l.naming.Windows() {
		res, err := l.SearchWindow(ctx, w, t, UpperBound)
		if err != nil {
			return shard.Position{}, false, err
		}
		switch {
		case res.Found:
			// An upper bound hit is never on line 0, so the line before it
			// is in the same shard.
			return shard.Position{Shard: res.Pos.Shard, Line: res.Pos.Line - 1}, true, nil
		case res.Candidate == 1:
			return shard.Position{}, false, nil
		case res.Candidate > 1:
			// The boundary falls between two shards.
			return shard.Position{Shard: res.Candidate - 1, Line: shard.EndOfShard}, true, nil
		}
		glog.V(1).Infof("end %s not in window %s", t.Format(time.RFC3339Nano), w)
	}
	return shard.Position{Shard: l.naming.Total, Line: shard.EndOfShard}, true, nil
}

// Range is a resolved, inclusive pair of positions.
type Range struct {
	Start shard.Position
	End   shard.Position
}

// Resolve locates both ends of [from, to]. The two searches are independent
// and run concurrently. It reports false when no line falls inside the range.
func (l *Locator) Resolve(ctx context.Context, from, to time.Time) (Range, bool, error) {
	if to.Before(from) {
		glog.V(1).Infof("end %s precedes start %s", to.Format(time.RFC3339Nano), from.Format(time.RFC3339Nano))
		return Range{}, false, nil
	}

	var r Range
	var startFound, endFound bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		r.Start, startFound, err = l.LocateStart(gctx, from)
		return errors.Wrap(err, "locate start")
	})
	g.Go(func() error {
		var err error
		r.End, endFound, err = l.LocateEnd(gctx, to)
		return errors.Wrap(err, "locate end")
	})
	if err := g.Wait(); err != nil {
		return Range{}, false, err
	}

	if !startFound || !endFound || r.End.Before(r.Start) {
		glog.V(1).Infof("no lines in range: start=%v(%t) end=%v(%t)", r.Start, startFound, r.End, endFound)
		return Range{}, false, nil
	}
	glog.V(1).Infof("resolved range %v to %v", r.Start, r.End)
	return r, true, nil
}
