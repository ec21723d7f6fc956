package trash

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	utilfs "github.com/babarot/scripts/internal/utils/fs"
	"github.com/google/uuid"
)

const (
	// SentinelName is the marker file proving the backup trash is ours
	SentinelName = ".backup-trash-directory"

	// SentinelContent is the exact (whitespace-trimmed) content of the marker.
	// Directories made by trash.py carry the same marker.
	SentinelContent = "Made by my trash.py"
)

// BackupTrash is a self-managed trash directory used when the system trash
// is unavailable. It refuses to write into a directory it cannot prove it owns.
type BackupTrash struct {
	root string
}

// NewBackupTrash returns the backup trash rooted at root (absolute)
func NewBackupTrash(root string) *BackupTrash {
	return &BackupTrash{root: filepath.Clean(root)}
}

// Root returns the root directory of the backup trash
func (b *BackupTrash) Root() string {
	return b.root
}

// Ensure creates the backup trash if missing, or verifies ownership of an
// existing one. It never modifies a directory that fails verification.
func (b *BackupTrash) Ensure() error {
	fi, err := os.Stat(b.root)
	switch {
	case err == nil:
		return b.verify(fi)
	case errors.Is(err, fs.ErrNotExist):
		if _, lerr := os.Lstat(b.root); lerr == nil {
			return &ForeignDirectoryError{Path: b.root, Reason: "dangling symbolic link"}
		}
		return b.create()
	default:
		return fmt.Errorf("failed to stat backup trash: %w", err)
	}
}

// create builds the directory and its sentinel under a staging name and
// renames it into place, so the root never exists without a sentinel.
func (b *BackupTrash) create() error {
	parent := filepath.Dir(b.root)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return fmt.Errorf("failed to create parent of backup trash: %w", err)
	}

	staging := filepath.Join(parent, fmt.Sprintf(".%s.%s.tmp", filepath.Base(b.root), uuid.NewString()))
	if err := os.Mkdir(staging, 0700); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := writeSentinel(filepath.Join(staging, SentinelName)); err != nil {
		return err
	}

	if err := os.Rename(staging, b.root); err != nil {
		// Another process may have won the race; that is fine as long as
		// what it created is ours.
		fi, statErr := os.Stat(b.root)
		if statErr != nil {
			return fmt.Errorf("failed to create backup trash: %w", err)
		}
		slog.Debug("backup trash appeared concurrently, verifying it", "dir", b.root, "error", err)
		return b.verify(fi)
	}

	slog.Info("created backup trash", "dir", b.root)
	return nil
}

func writeSentinel(path string) error {
	f, err := utilfs.CreateExclusive(path, 0644)
	if err != nil {
		return fmt.Errorf("failed to create sentinel: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(SentinelContent + "\n"); err != nil {
		return fmt.Errorf("failed to write sentinel: %w", err)
	}
	return f.Sync()
}

func (b *BackupTrash) verify(fi fs.FileInfo) error {
	if !fi.IsDir() {
		slog.Error("something (not a directory) already exists at the backup trash path", "path", b.root)
		return &ForeignDirectoryError{Path: b.root, Reason: "not a directory"}
	}

	sentinel := filepath.Join(b.root, SentinelName)
	si, err := os.Lstat(sentinel)
	if err != nil || !si.Mode().IsRegular() {
		slog.Error("backup trash exists but its sentinel is missing", "path", b.root, "sentinel", SentinelName)
		return &ForeignDirectoryError{Path: b.root, Reason: "missing " + SentinelName}
	}

	data, err := os.ReadFile(sentinel)
	if err != nil {
		return &ForeignDirectoryError{Path: b.root, Reason: "unreadable " + SentinelName + ": " + err.Error()}
	}
	if strings.TrimSpace(string(data)) != SentinelContent {
		slog.Error("backup trash exists but the sentinel contents are wrong", "path", b.root, "sentinel", SentinelName)
		return &ForeignDirectoryError{Path: b.root, Reason: "unexpected contents in " + SentinelName}
	}

	slog.Debug("backup trash verified", "dir", b.root)
	return nil
}

// Timestamp names the collision subdirectory for an operation started at t
func Timestamp(t time.Time) string {
	return fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/int(time.Microsecond))
}

// Place moves each target into the backup trash in order. A target whose
// base name is taken goes into a subdirectory named by Timestamp(at), created
// on the first collision and shared by every later one. The first failure
// stops the batch; targets already moved stay where they are.
func (b *BackupTrash) Place(targets []string, at time.Time) ([]Placement, error) {
	timeDir := filepath.Join(b.root, Timestamp(at))
	timeDirReady := false

	placements := make([]Placement, 0, len(targets))
	for _, target := range targets {
		name := filepath.Base(target)
		dst := filepath.Join(b.root, name)

		if _, err := os.Lstat(dst); err == nil {
			if !timeDirReady {
				if err := os.MkdirAll(timeDir, 0700); err != nil {
					return placements, &MoveError{Target: target, Dest: timeDir, Err: err}
				}
				timeDirReady = true
			}
			slog.Debug("name collision in backup trash", "name", name, "dir", timeDir)
			dst = filepath.Join(timeDir, name)
		}

		if err := utilfs.Move(target, dst); err != nil {
			return placements, &MoveError{Target: target, Dest: dst, Err: err}
		}

		placements = append(placements, Placement{
			Source:   target,
			Dest:     dst,
			Location: LocationBackup,
		})
	}

	return placements, nil
}
