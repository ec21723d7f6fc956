// Package cli implements the command-line front-ends of the scripts.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"syscall"

	"github.com/babarot/scripts/internal/utils/log"
	"github.com/jessevdk/go-flags"
	"github.com/rs/xid"
)

// LogOption is the logging option group shared by every tool
type LogOption struct {
	File    string `short:"l" long:"log" value-name:"FILE" description:"Print log messages to FILE instead of stderr (overwrites it)"`
	Quiet   bool   `short:"q" long:"quiet" description:"Only log fatal errors"`
	Verbose bool   `short:"v" long:"verbose" description:"Log informational messages"`
	Debug   bool   `short:"D" long:"debug" description:"Log debug messages"`
}

type MetaOption struct {
	Version bool `short:"V" long:"version" description:"Show version"`
}

var errVolumeConflict = errors.New("-q/--quiet, -v/--verbose and -D/--debug are mutually exclusive")

// Level returns the level selected by the volume flags
func (o LogOption) Level() (log.Level, error) {
	n := 0
	level := log.WarnLevel
	if o.Quiet {
		n++
		level = log.FatalLevel
	}
	if o.Verbose {
		n++
		level = log.InfoLevel
	}
	if o.Debug {
		n++
		level = log.DebugLevel
	}
	if n > 1 {
		return level, errVolumeConflict
	}
	return level, nil
}

var runID = sync.OnceValue(func() string {
	return xid.New().String()
})

// setupLogger installs the default logger described by o. The returned
// function closes the log file, if any.
func setupLogger(o LogOption, extra ...log.Option) (func(), error) {
	level, err := o.Level()
	if err != nil {
		return func() {}, err
	}

	var w io.Writer = os.Stderr
	closer := func() {}
	if o.File != "" {
		f, err := os.Create(o.File)
		if err != nil {
			return closer, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closer = func() { f.Close() }
	}

	opts := append([]log.Option{
		log.UseLevel(level),
		log.UseOutput(w),
		log.With("run_id", runID()),
		log.AsDefault(),
	}, extra...)
	log.New(opts...)
	return closer, nil
}

// parse parses os.Args into opt. help is true when go-flags already printed
// the help message.
func parse(opt any, v Version, usage string) (args []string, help bool, err error) {
	parser := flags.NewParser(opt, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = v.AppName
	parser.Usage = usage
	parser.ShortDescription = v.Description
	parser.LongDescription = v.Description

	args, err = parser.Parse()
	if err != nil {
		if flags.WroteHelp(err) {
			fmt.Fprintln(os.Stdout, err)
			return nil, true, nil
		}
		return nil, false, err
	}
	return args, false, nil
}

// Main runs a tool and returns its exit code. Errors are logged through the
// default logger; a closed stdout pipe is not an error.
func Main(run func() error) int {
	// Until a tool configures logging, errors still reach stderr
	log.New(log.AsDefault())

	err := run()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, syscall.EPIPE):
		return 0
	}
	// Logged at fatal so that --quiet still reports it
	slog.Log(context.Background(), slog.Level(log.FatalLevel), "Error: "+err.Error())
	return 1
}
