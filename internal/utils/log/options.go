package log

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// Options represents logger configuration options
type Options struct {
	charmlog.Options
	Writer  io.Writer
	Styles  *Styles
	Default bool

	// Tee receives every record in addition to Writer, filtered by its own level.
	Tee slog.Handler

	Attrs []any
}

// DefaultOptions returns the default logger options
func DefaultOptions() *Options {
	return &Options{
		Options: charmlog.Options{
			Level:           WarnLevel,
			ReportCaller:    false,
			ReportTimestamp: false,
		},
		Writer: os.Stderr,
		Styles: DefaultStyles(),
	}
}

// Apply applies the given options
func (o *Options) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(o)
	}
}

type Option func(*Options)

func UseLevel(l Level) Option {
	return func(o *Options) {
		o.Level = l
	}
}

func UseOutput(w io.Writer) Option {
	return func(o *Options) {
		o.Writer = w
	}
}

func UseReportTimestamp(report bool) Option {
	return func(o *Options) {
		o.ReportTimestamp = report
	}
}

func UseFormatter(f Formatter) Option {
	return func(o *Options) {
		o.Formatter = f
	}
}

func UseTee(h slog.Handler) Option {
	return func(o *Options) {
		o.Tee = h
	}
}

func With(args ...any) Option {
	return func(o *Options) {
		o.Attrs = append(o.Attrs, args...)
	}
}

func AsDefault() Option {
	return func(o *Options) {
		o.Default = true
	}
}
