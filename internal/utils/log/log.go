package log

import (
	"io"
	"log/slog"
	"time"

	charmlog "github.com/charmbracelet/log"
	slogmulti "github.com/samber/slog-multi"
)

// New creates a new logger with the given options
func New(opts ...Option) *slog.Logger {
	o := DefaultOptions()
	o.Apply(opts...)

	handler := charmlog.NewWithOptions(o.Writer, o.Options)
	handler.SetStyles(o.Styles)

	var h slog.Handler = handler
	if o.Tee != nil {
		h = slogmulti.Fanout(handler, o.Tee)
	}

	logger := slog.New(h)
	if len(o.Attrs) > 0 {
		logger = logger.With(o.Attrs...)
	}

	if o.Default {
		charmlog.SetDefault(handler)
		slog.SetDefault(logger)
	}

	return logger
}

// NewFileHandler returns a plain, timestamped handler for persistent log files.
func NewFileHandler(w io.Writer, level Level) slog.Handler {
	return charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		ReportTimestamp: true,
		ReportCaller:    true,
		TimeFormat:      time.DateTime,
		Formatter:       charmlog.LogfmtFormatter,
	})
}
