// Package trash moves files out of the user's way, preferring the system
// trash and falling back to a self-managed backup trash directory.
package trash

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/lo"
)

// SystemTrash is the platform trash (freedesktop.org trash, macOS Finder, ...).
// Failures should be reported as *SystemError so they can be classified.
type SystemTrash interface {
	Send(paths []string) error
}

// Location tells where a target ended up
type Location int

const (
	LocationSystem Location = iota
	LocationBackup
)

func (l Location) String() string {
	switch l {
	case LocationSystem:
		return "system"
	case LocationBackup:
		return "backup"
	default:
		return "unknown"
	}
}

// Placement records one relocated target. Dest is empty for the system trash.
type Placement struct {
	Source   string
	Dest     string
	Location Location
}

// Result is the outcome of a successful Relocate call
type Result struct {
	Placements []Placement
}

// Relocator moves targets to the system trash or the backup trash
type Relocator struct {
	config    Config
	system    SystemTrash
	backup    *BackupTrash
	protector *protector
	now       func() time.Time
}

// Option configures a Relocator
type Option func(*Relocator)

// WithSystemTrash sets the primary trash. Without it every call goes
// straight to the backup trash.
func WithSystemTrash(s SystemTrash) Option {
	return func(r *Relocator) {
		r.system = s
	}
}

// WithClock overrides the time source used to name collision directories
func WithClock(now func() time.Time) Option {
	return func(r *Relocator) {
		r.now = now
	}
}

// NewRelocator creates a new Relocator with the given configuration
func NewRelocator(cfg Config, opts ...Option) (*Relocator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	p, err := newProtector(cfg)
	if err != nil {
		return nil, err
	}

	r := &Relocator{
		config:    cfg,
		backup:    NewBackupTrash(cfg.BackupDir),
		protector: p,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Backup returns the backup trash used for fallback
func (r *Relocator) Backup() *BackupTrash {
	return r.backup
}

// Relocate removes every target from its original location, via the system
// trash when possible and the backup trash otherwise. On a mid-batch move
// failure the partial Result is returned together with the error.
func (r *Relocator) Relocate(targets []string) (*Result, error) {
	slog.Debug("relocate started", "targets", targets)
	defer slog.Debug("relocate finished")

	if len(targets) == 0 {
		return nil, errors.New("too few arguments")
	}
	start := r.now()

	paths, err := r.prepare(targets)
	if err != nil {
		return nil, err
	}

	if r.system != nil {
		err := r.system.Send(paths)
		if err == nil {
			return &Result{Placements: lo.Map(paths, func(p string, _ int) Placement {
				return Placement{Source: p, Location: LocationSystem}
			})}, nil
		}
		if errors.Is(err, ErrTargetNotFound) {
			return nil, &TargetError{Path: systemErrorPath(err), Err: ErrNotFound}
		}
		if !IsRecoverable(err) && !r.config.FallbackOnAnyError {
			return nil, fmt.Errorf("system trash failed: %w", err)
		}
		slog.Warn("resorting to backup trash", "dir", r.backup.Root(), "reason", err)
	}

	return r.toBackup(paths, start)
}

// prepare resolves, deduplicates and validates targets. Nothing on disk is
// modified here, so a missing target aborts before any fallback work.
func (r *Relocator) prepare(targets []string) ([]string, error) {
	paths := make([]string, 0, len(targets))
	for _, target := range targets {
		abs, err := filepath.Abs(target)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %w", err)
		}
		if err := r.protector.check(target, abs); err != nil {
			return nil, err
		}
		if _, err := os.Lstat(abs); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, &TargetError{Path: target, Err: ErrNotFound}
			}
			return nil, fmt.Errorf("failed to stat %s: %w", target, err)
		}
		paths = append(paths, abs)
	}

	uniq := lo.Uniq(paths)
	if len(uniq) != len(paths) {
		slog.Debug("dropped duplicate targets", "given", len(paths), "unique", len(uniq))
	}
	return uniq, nil
}

func (r *Relocator) toBackup(paths []string, start time.Time) (*Result, error) {
	if err := r.backup.Ensure(); err != nil {
		return nil, err
	}

	// A system trash that failed midway may already hold some targets
	exists := func(p string, _ int) bool {
		_, err := os.Lstat(p)
		return err == nil
	}
	remaining := lo.Filter(paths, exists)
	gone := lo.Reject(paths, exists)
	result := &Result{}
	for _, p := range gone {
		slog.Info("target already in system trash, skipping", "path", p)
		result.Placements = append(result.Placements, Placement{Source: p, Location: LocationSystem})
	}

	placements, err := r.backup.Place(remaining, start)
	result.Placements = append(result.Placements, placements...)
	if err != nil {
		// Moves that succeeded before the failure stand
		return result, err
	}
	return result, nil
}

func systemErrorPath(err error) string {
	var se *SystemError
	if errors.As(err, &se) {
		return se.Path
	}
	return ""
}
