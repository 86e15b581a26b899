package logline

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Delimiter separates the timestamp prefix from the payload.
const Delimiter = ','

// minuteLayout is ISO-8601 without seconds, e.g. 2020-01-01T10:00Z.
const minuteLayout = "2006-01-02T15:04Z07:00"

// MalformedLineError reports a line whose prefix is not a timestamp.
type MalformedLineError struct {
	Line string
	Err  error
}

func (e *MalformedLineError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("malformed log line %q", e.Line)
	}
	return fmt.Sprintf("malformed log line %q: %v", e.Line, e.Err)
}

func (e *MalformedLineError) Unwrap() error { return e.Err }

// Line is a raw log line. Its timestamp is parsed on demand.
type Line []byte

// Timestamp parses the line's timestamp prefix.
func (l Line) Timestamp() (time.Time, error) {
	return ParseTimestamp(l)
}

// ParseTimestamp parses the timestamp prefix of raw, i.e. everything before
// the first Delimiter.
func ParseTimestamp(raw []byte) (time.Time, error) {
	i := bytes.IndexByte(raw, Delimiter)
	if i < 0 {
		return time.Time{}, &MalformedLineError{Line: truncate(raw), Err: errors.New("no timestamp delimiter")}
	}
	t, err := parse(string(raw[:i]))
	if err != nil {
		return time.Time{}, &MalformedLineError{Line: truncate(raw), Err: err}
	}
	return t, nil
}

// ParseTarget parses a timestamp supplied by a user, with the same rules as
// line prefixes.
func ParseTarget(s string) (time.Time, error) {
	t, err := parse(strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid timestamp %q", s)
	}
	return t, nil
}

func parse(s string) (time.Time, error) {
	var zone string
	// 2020-01-01T10:00:00+01:00[Europe/Paris]
	if strings.HasSuffix(s, "]") {
		open := strings.LastIndexByte(s, '[')
		if open < 0 {
			return time.Time{}, errors.Errorf("unbalanced zone id in %q", s)
		}
		zone = s[open+1 : len(s)-1]
		s = s[:open]
	}

	// RFC3339Nano accepts an absent fractional second as well.
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		var merr error
		if t, merr = time.Parse(minuteLayout, s); merr != nil {
			return time.Time{}, err
		}
	}
	if zone != "" {
		// The offset fixes the instant; the region only changes presentation.
		if loc, lerr := time.LoadLocation(zone); lerr == nil {
			t = t.In(loc)
		}
	}
	return t, nil
}

const maxQuoted = 120

func truncate(raw []byte) string {
	if len(raw) > maxQuoted {
		return string(raw[:maxQuoted]) + "..."
	}
	return string(raw)
}
