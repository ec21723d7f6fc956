//go:build !windows

// Package xdg puts files into the freedesktop.org trash.
package xdg

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/babarot/scripts/internal/trash"
)

// Options configures the XDG trash
type Options struct {
	// HomeTrash overrides $XDG_DATA_HOME/Trash
	HomeTrash string

	// HomeOnly sends targets on other devices to the home trash as well,
	// which fails there with a cross-device error instead of using $topdir
	HomeOnly bool

	// Now is used for DeletionDate
	Now func() time.Time
}

// Trash implements trash.SystemTrash for the XDG trash specification
type Trash struct {
	home     *location
	homeOnly bool
	uid      int
	now      func() time.Time
}

// location represents a single trash directory
type location struct {
	// Root directory (e.g., ~/.local/share/Trash or /media/disk/.Trash-1000)
	root     string
	filesDir string
	infoDir  string

	// topdir is the mount point for $topdir trashes, empty for the home trash
	topdir string
}

func newLocation(root, topdir string) *location {
	return &location{
		root:     root,
		filesDir: filepath.Join(root, "files"),
		infoDir:  filepath.Join(root, "info"),
		topdir:   topdir,
	}
}

// New creates the XDG trash. Directories are created lazily by Send.
func New(opts Options) (*Trash, error) {
	root := opts.HomeTrash
	if root == "" {
		dataDir := os.Getenv("XDG_DATA_HOME")
		if dataDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get home directory: %w", err)
			}
			dataDir = filepath.Join(home, ".local", "share")
		}
		root = filepath.Join(dataDir, "Trash")
	}
	slog.Debug("xdg home trash", "root", root)

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Trash{
		home:     newLocation(root, ""),
		homeOnly: opts.HomeOnly,
		uid:      os.Getuid(),
		now:      now,
	}, nil
}

// HomeRoot returns the home trash directory
func (t *Trash) HomeRoot() string {
	return t.home.root
}

// Send moves each path into the trash in order, stopping at the first failure
func (t *Trash) Send(paths []string) error {
	for _, path := range paths {
		if err := t.put(path); err != nil {
			return err
		}
	}
	return nil
}

func (t *Trash) put(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	if _, err := os.Lstat(abs); err != nil {
		return classify(abs, err)
	}

	loc, err := t.locationFor(abs)
	if err != nil {
		return trash.NewSystemError(trash.ErrTrashCreationFailed, abs, err)
	}
	if err := loc.ensure(); err != nil {
		return trash.NewSystemError(trash.ErrTrashCreationFailed, loc.root, err)
	}

	info := TrashInfo{Path: loc.infoPath(abs), DeletionDate: t.now()}
	name, infoFile, err := loc.reserve(filepath.Base(abs), info)
	if err != nil {
		return classify(loc.root, err)
	}

	dst := filepath.Join(loc.filesDir, name)
	if err := os.Rename(abs, dst); err != nil {
		os.Remove(infoFile)
		return classify(abs, err)
	}

	slog.Debug("moved to system trash", "path", abs, "trash", dst)
	return nil
}

// locationFor picks the home trash for targets on its device and a $topdir
// trash otherwise
func (t *Trash) locationFor(abs string) (*location, error) {
	if t.homeOnly {
		return t.home, nil
	}

	targetDev, err := device(abs)
	if err != nil {
		return nil, err
	}
	homeDev, err := device(t.home.root)
	if err != nil {
		return nil, err
	}
	if targetDev == homeDev {
		return t.home, nil
	}

	top, err := topdir(abs)
	if err != nil {
		return nil, err
	}
	uid := strconv.Itoa(t.uid)
	if shared := filepath.Join(top, ".Trash"); isValidSharedTrash(shared) {
		return newLocation(filepath.Join(shared, uid), top), nil
	}
	return newLocation(filepath.Join(top, ".Trash-"+uid), top), nil
}

func (l *location) ensure() error {
	for _, dir := range []string{l.filesDir, l.infoDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	return nil
}

// infoPath returns the Path= value: absolute in the home trash and
// relative to the topdir elsewhere
func (l *location) infoPath(abs string) string {
	if l.topdir == "" {
		return abs
	}
	rel, err := filepath.Rel(l.topdir, abs)
	if err != nil {
		return abs
	}
	return rel
}

// reserve finds a free name (name, name_1, ...) by creating its info file
// exclusively
func (l *location) reserve(base string, info TrashInfo) (string, string, error) {
	for i := 0; ; i++ {
		name := base
		if i > 0 {
			name = fmt.Sprintf("%s_%d", base, i)
		}
		if _, err := os.Lstat(filepath.Join(l.filesDir, name)); err == nil {
			continue
		}

		infoFile := filepath.Join(l.infoDir, name+infoExt)
		err := info.Save(infoFile)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", "", err
		}
		return name, infoFile, nil
	}
}

func classify(path string, err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return trash.NewSystemError(trash.ErrTargetNotFound, path, err)
	case errors.Is(err, os.ErrPermission):
		return trash.NewSystemError(trash.ErrPermissionDenied, path, err)
	case errors.Is(err, syscall.EROFS), errors.Is(err, syscall.EXDEV):
		return trash.NewSystemError(trash.ErrTrashCreationFailed, path, err)
	default:
		return fmt.Errorf("failed to trash %s: %w", path, err)
	}
}
