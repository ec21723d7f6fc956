package debug

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/mattn/go-isatty"
	"github.com/nxadm/tail"
	"github.com/samber/lo"
)

// Logs prints the persistent log at path, preceded by its rotated backups
// (newest first, as RotateWriter.Backups returns them), or follows it when
// live is set.
func Logs(w io.Writer, path string, backups []string, enabled, live bool) error {
	if live {
		return tailLiveLogs(w, path, enabled)
	}
	return showExistingLogs(w, path, backups, enabled)
}

// tailLiveLogs follows log entries in real-time
func tailLiveLogs(w io.Writer, path string, enabled bool) error {
	if !enabled {
		return errors.New("logging is not enabled in config: enable logging in config for live debugging")
	}

	shouldFollow := isatty.IsTerminal(os.Stdout.Fd())
	tailConfig := tail.Config{
		ReOpen: shouldFollow,
		Follow: shouldFollow,
		Poll:   true,
		Logger: tail.DiscardingLogger,
		Location: &tail.SeekInfo{
			Offset: 0,
			Whence: io.SeekEnd,
		},
	}

	t, err := tail.TailFile(path, tailConfig)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New("log file does not exist: try running some commands with logging enabled")
		}
		return err
	}
	slog.Info("live tail started", "path", path)

	for line := range t.Lines {
		if line.Err != nil {
			return line.Err
		}
		fmt.Fprintln(w, line.Text)
	}

	return nil
}

// showExistingLogs displays the rotated backups, oldest first, and then the
// current content of the log file
func showExistingLogs(w io.Writer, path string, backups []string, enabled bool) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if !enabled {
			return errors.New("logging is not enabled in config: enable logging to create log files")
		}
		return errors.New("no log file exists yet: try running some commands first")
	}

	for _, p := range append(lo.Reverse(slices.Clone(backups)), path) {
		if err := copyFile(w, p); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}
