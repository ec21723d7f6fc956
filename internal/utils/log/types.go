package log

import (
	charmlog "github.com/charmbracelet/log"
)

type (
	Level     = charmlog.Level
	Styles    = charmlog.Styles
	Formatter = charmlog.Formatter
)

const (
	DebugLevel = charmlog.DebugLevel
	InfoLevel  = charmlog.InfoLevel
	WarnLevel  = charmlog.WarnLevel
	ErrorLevel = charmlog.ErrorLevel
	FatalLevel = charmlog.FatalLevel
)

// Formatters
const (
	TextFormatter   = charmlog.TextFormatter
	JSONFormatter   = charmlog.JSONFormatter
	LogfmtFormatter = charmlog.LogfmtFormatter
)

// ParseLevel converts a config level name ("debug", "info", ...) to a Level.
// Unknown names fall back to DebugLevel.
func ParseLevel(s string) Level {
	l, err := charmlog.ParseLevel(s)
	if err != nil {
		return DebugLevel
	}
	return l
}
