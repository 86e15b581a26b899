package shard

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	DefaultPrefix     = "LogFile-"
	DefaultExtension  = ".log"
	DefaultDigits     = 6
	DefaultWindowSize = 1000
)

// Naming knows how shards are named and how many there are.
type Naming struct {
	Prefix    string
	Extension string

	// Digits is the zero-padded width of the sequence number.
	Digits int

	// Total is the id of the last shard.
	Total int

	// WindowSize is the number of shard ids covered by one probing window.
	WindowSize int
}

// NewNaming returns the default naming scheme for total shards.
func NewNaming(total int) Naming {
	return Naming{
		Prefix:     DefaultPrefix,
		Extension:  DefaultExtension,
		Digits:     DefaultDigits,
		Total:      total,
		WindowSize: DefaultWindowSize,
	}
}

// Validate reports whether n can be used for searching.
func (n Naming) Validate() error {
	if n.Digits <= 0 {
		return errors.Errorf("shard digits must be positive, got %d", n.Digits)
	}
	if n.Total <= 0 {
		return errors.Errorf("shard total must be positive, got %d", n.Total)
	}
	if n.WindowSize <= 0 {
		return errors.Errorf("window size must be positive, got %d", n.WindowSize)
	}
	return nil
}

// NameOf returns the file name of shard id.
func (n Naming) NameOf(id int) string {
	return fmt.Sprintf("%s%0*d%s", n.Prefix, n.Digits, id, n.Extension)
}

// Path returns the path of shard id inside dir.
func (n Naming) Path(dir string, id int) string {
	return filepath.Join(dir, n.NameOf(id))
}

// Parse returns the id encoded in a shard file name.
func (n Naming) Parse(name string) (int, error) {
	if !strings.HasPrefix(name, n.Prefix) || !strings.HasSuffix(name, n.Extension) {
		return 0, errors.Errorf("%q is not a shard name", name)
	}
	num := name[len(n.Prefix) : len(name)-len(n.Extension)]
	if len(num) != n.Digits {
		return 0, errors.Errorf("%q: expected %d digits", name, n.Digits)
	}
	id, err := strconv.Atoi(num)
	if err != nil {
		return 0, errors.Wrapf(err, "%q is not a shard name", name)
	}
	if id < 1 || id > n.Total {
		return 0, &OutOfRangeError{ID: id, Total: n.Total}
	}
	return id, nil
}

// Next returns the id following id.
func (n Naming) Next(id int) (int, error) {
	if id < 1 || id >= n.Total {
		return 0, &OutOfRangeError{ID: id + 1, Total: n.Total}
	}
	return id + 1, nil
}

// Window is an inclusive range of shard ids searched in one round.
type Window struct {
	Lo, Hi int
}

func (w Window) String() string {
	return fmt.Sprintf("[%d, %d]", w.Lo, w.Hi)
}

// Windows splits [1, Total] into consecutive probing windows. The last window
// ends at Total and may be shorter than WindowSize.
func (n Naming) Windows() []Window {
	if n.Total <= 0 || n.WindowSize <= 0 {
		return nil
	}
	w := min(n.WindowSize, n.Total)
	windows := make([]Window, 0, (n.Total+w-1)/w)
	for lo := 1; lo <= n.Total; lo += w {
		hi := lo + w - 1
		if hi > n.Total {
			hi = n.Total
		}
		windows = append(windows, Window{Lo: lo, Hi: hi})
	}
	return windows
}
