// Package config loads settings for log-range-extract from an INI file.
package config

import (
	"os"
	"path/filepath"

	"github.com/go-ini/ini"
	"github.com/pkg/errors"

	"github.com/minuteman3/log-range-extract/internal/search"
	"github.com/minuteman3/log-range-extract/internal/shard"
)

// DefaultFile is the name of the config file looked up in the home directory.
const DefaultFile = ".log-range-extract.ini"

// Config holds shard layout and search settings.
type Config struct {
	Dir       string
	Prefix    string
	Extension string
	Digits    int

	// Total is the number of shards; 0 means discover it from the directory.
	Total        int
	WindowSize   int
	BufferLines  int
	MaxLineBytes int

	From string
	To   string
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Prefix:       shard.DefaultPrefix,
		Extension:    shard.DefaultExtension,
		Digits:       shard.DefaultDigits,
		WindowSize:   shard.DefaultWindowSize,
		BufferLines:  search.DefaultBufferLines,
		MaxLineBytes: search.DefaultMaxLineBytes,
	}
}

// Load reads path over the defaults. A missing file is not an error.
//
//	[shards]
//	dir = /var/log/app
//	prefix = LogFile-
//	extension = .log
//	digits = 6
//	total = 18203
//	window = 1000
//	buffer_lines = 100000
//	max_line_bytes = 1048576
//
//	[search]
//	from = 2020-01-01T00:00:00Z
//	to = 2020-01-02T00:00:00Z
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrap(err, "failed to stat config file")
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config file")
	}

	shards := iniFile.Section("shards")
	cfg.Dir = shards.Key("dir").MustString(cfg.Dir)
	cfg.Prefix = shards.Key("prefix").MustString(cfg.Prefix)
	cfg.Extension = shards.Key("extension").MustString(cfg.Extension)
	cfg.Digits = shards.Key("digits").MustInt(cfg.Digits)
	cfg.Total = shards.Key("total").MustInt(cfg.Total)
	cfg.WindowSize = shards.Key("window").MustInt(cfg.WindowSize)
	cfg.BufferLines = shards.Key("buffer_lines").MustInt(cfg.BufferLines)
	cfg.MaxLineBytes = shards.Key("max_line_bytes").MustInt(cfg.MaxLineBytes)

	searchSection := iniFile.Section("search")
	cfg.From = searchSection.Key("from").String()
	cfg.To = searchSection.Key("to").String()

	return cfg, nil
}

// DefaultPath returns the config file in the user's home directory.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return DefaultFile
	}
	return filepath.Join(homeDir, DefaultFile)
}

// Validate checks that a search can run with cfg.
func (c *Config) Validate() error {
	switch {
	case c.From == "":
		return errors.New("start timestamp is required (-f or [search] from)")
	case c.To == "":
		return errors.New("end timestamp is required (-t or [search] to)")
	case c.Dir == "":
		return errors.New("shard directory is required (-i or [shards] dir)")
	case c.Digits <= 0:
		return errors.Errorf("digits must be positive, got %d", c.Digits)
	case c.Total < 0:
		return errors.Errorf("total must not be negative, got %d", c.Total)
	case c.WindowSize <= 0:
		return errors.Errorf("window must be positive, got %d", c.WindowSize)
	case c.BufferLines <= 0:
		return errors.Errorf("buffer_lines must be positive, got %d", c.BufferLines)
	case c.MaxLineBytes <= 0:
		return errors.Errorf("max_line_bytes must be positive, got %d", c.MaxLineBytes)
	}
	return nil
}

// Naming returns the shard naming scheme described by cfg. When Total is 0
// the shard count is discovered from Dir.
func (c *Config) Naming() (shard.Naming, error) {
	n := shard.Naming{
		Prefix:     c.Prefix,
		Extension:  c.Extension,
		Digits:     c.Digits,
		Total:      c.Total,
		WindowSize: c.WindowSize,
	}
	if n.Total == 0 {
		total, err := shard.DiscoverTotal(c.Dir, n)
		if err != nil {
			return shard.Naming{}, errors.Wrap(err, "discover shards")
		}
		n.Total = total
	}
	return n, n.Validate()
}

// SearchOptions returns the shard read settings.
func (c *Config) SearchOptions() search.Options {
	return search.Options{BufferLines: c.BufferLines, MaxLineBytes: c.MaxLineBytes}
}
