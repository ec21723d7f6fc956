// Package finder moves files to the macOS Trash through Finder.
package finder

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/babarot/scripts/internal/trash"
)

const script = `
on run argv
  tell application "Finder"
    repeat with f in argv
      delete (f as POSIX file)
    end repeat
  end tell
end run
`

// Runner executes osascript and returns its combined output
type Runner func(name string, args ...string) ([]byte, error)

func execRunner(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// Trash implements trash.SystemTrash via Finder
type Trash struct {
	run Runner
}

// New returns a Finder trash. A nil runner executes osascript.
func New(run Runner) *Trash {
	if run == nil {
		run = execRunner
	}
	return &Trash{run: run}
}

// Send asks Finder to delete every path in a single osascript call
func (t *Trash) Send(paths []string) error {
	abs := make([]string, 0, len(paths))
	for _, p := range paths {
		a, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to get absolute path: %w", err)
		}
		if _, err := os.Lstat(a); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return trash.NewSystemError(trash.ErrTargetNotFound, a, err)
			}
			return trash.NewSystemError(trash.ErrPermissionDenied, a, err)
		}
		abs = append(abs, a)
	}

	args := append([]string{"-e", script}, abs...)
	out, err := t.run("osascript", args...)
	if err == nil {
		slog.Debug("moved to Finder trash", "paths", abs)
		return nil
	}

	msg := strings.TrimSpace(string(out))
	slog.Debug("osascript failed", "error", err, "output", msg)
	cause := fmt.Errorf("%w: %s", err, msg)
	if isNotAuthorized(msg) {
		return trash.NewSystemError(trash.ErrPermissionDenied, "", cause)
	}
	return trash.NewSystemError(trash.ErrTrashCreationFailed, "", cause)
}

// isNotAuthorized matches Finder's automation refusal (errAEEventNotPermitted)
func isNotAuthorized(output string) bool {
	return strings.Contains(output, "-1743") ||
		strings.Contains(strings.ToLower(output), "not authorized") ||
		strings.Contains(strings.ToLower(output), "not allowed")
}
