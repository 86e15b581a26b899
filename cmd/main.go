package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/minuteman3/log-range-extract/internal/config"
	"github.com/minuteman3/log-range-extract/internal/logline"
	"github.com/minuteman3/log-range-extract/internal/search"
	"github.com/minuteman3/log-range-extract/internal/stream"
)

const noLogsMessage = "No Logs found from given timestamp range!!"

func printHelp() {
	helpText := `
Log Range Extract - print log lines between two timestamps

Usage:
  log-range-extract -f START -t END -i DIR [flags]

Flags:
  -f TIME        Start of the range, inclusive (e.g. 2020-01-01T10:00:00Z)
  -t TIME        End of the range, inclusive
  -i DIR         Directory holding LogFile-NNNNNN.log shards
  -config FILE   Path to configuration file (default: ~/.log-range-extract.ini)
  -v LEVEL       Verbosity of diagnostic logging on stderr

Configuration file format (.ini):
  [shards]
  dir = /var/log/app
  prefix = LogFile-
  extension = .log
  digits = 6
  total = 18203        ; 0 or absent: count shards in dir
  window = 1000
  buffer_lines = 100000

  [search]
  from = 2020-01-01T10:00:00Z
  to = 2020-01-01T11:00:00Z

Example:
  log-range-extract -f 2020-01-01T10:00:00Z -t 2020-01-01T11:00:00+01:00 -i /var/log/app
`
	fmt.Fprintln(os.Stderr, helpText)
}

func main() {
	configFile := flag.String("config", config.DefaultPath(), "Path to configuration file")
	from := flag.String("f", "", "Start timestamp (ISO-8601 with offset)")
	to := flag.String("t", "", "End timestamp (ISO-8601 with offset)")
	dir := flag.String("i", "", "Directory holding the log shards")
	flag.Usage = printHelp

	flag.Set("logtostderr", "true")
	flag.Parse()
	defer glog.Flush()

	if flag.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %v\n", flag.Args())
		printHelp()
		os.Exit(2)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		glog.Exitf("Error loading config: %v", err)
	}
	if *from != "" {
		cfg.From = *from
	}
	if *to != "" {
		cfg.To = *to
	}
	if *dir != "" {
		cfg.Dir = *dir
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		printHelp()
		os.Exit(2)
	}

	out := bufio.NewWriter(os.Stdout)
	found, err := run(context.Background(), cfg, out)
	if ferr := out.Flush(); err == nil && ferr != nil {
		err = errors.Wrap(ferr, "flush output")
	}
	if err != nil {
		glog.Exitf("%v", err)
	}
	glog.V(1).Infof("lines found: %t", found)
}

// run resolves the configured range and streams it to out. When no line falls
// in the range it writes the not-found message to out and reports false.
func run(ctx context.Context, cfg *config.Config, out io.Writer) (bool, error) {
	start, err := logline.ParseTarget(cfg.From)
	if err != nil {
		return false, errors.Wrap(err, "start")
	}
	end, err := logline.ParseTarget(cfg.To)
	if err != nil {
		return false, errors.Wrap(err, "end")
	}

	naming, err := cfg.Naming()
	if err != nil {
		return false, err
	}

	locator, err := search.NewLocator(cfg.Dir, naming, cfg.SearchOptions())
	if err != nil {
		return false, err
	}
	r, found, err := locator.Resolve(ctx, start, end)
	if err != nil {
		return false, err
	}
	if !found {
		if _, err := fmt.Fprintln(out, noLogsMessage); err != nil {
			return false, errors.Wrap(err, "write output")
		}
		return false, nil
	}

	streamer := stream.NewStreamer(cfg.Dir, naming, cfg.MaxLineBytes)
	stats, err := streamer.Stream(ctx, r.Start, r.End, out)
	if err != nil {
		return true, err
	}
	glog.V(1).Infof("printed %d lines from %d shards", stats.Lines, stats.Shards)
	return true, nil
}
