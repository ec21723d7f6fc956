package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	cp "github.com/otiai10/copy"
)

// rename is swapped out in tests
var rename = os.Rename

// Move moves src to dst, never replacing an existing dst. It renames when
// both sides are on the same partition and falls back to copy and delete
// otherwise, or when the rename fails (bind mounts share a device but
// still report EXDEV). Symbolic links are moved as links.
func Move(src, dst string) error {
	if src == "" || dst == "" {
		return ErrInvalidPath
	}

	if _, err := os.Lstat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &MoveError{Op: "stat", Src: src, Dst: dst, Err: ErrSourceNotFound}
		}
		return &MoveError{Op: "stat", Src: src, Dst: dst, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return &MoveError{Op: "create_parent", Src: src, Dst: dst, Err: err}
	}

	if _, err := os.Lstat(dst); err == nil {
		return &MoveError{Op: "check", Src: src, Dst: dst, Err: ErrDestinationExists}
	}

	samePartition, err := isSamePartition(src, dst)
	if err != nil {
		slog.Debug("partition check failed, assuming different partitions", "error", err)
	}

	if samePartition {
		slog.Debug("moving with os.Rename", "from", src, "to", dst)
		err := rename(src, dst)
		if err == nil {
			return nil
		}
		slog.Debug("rename failed, falling back to copy-and-delete", "from", src, "to", dst, "error", err)
	} else {
		slog.Debug("different partitions detected, falling back to copy-and-delete", "from", src, "to", dst)
	}

	return copyAndDelete(src, dst)
}

// copyAndDelete copies a file or directory and then deletes the original
func copyAndDelete(src, dst string) error {
	opts := cp.Options{
		OnSymlink: func(string) cp.SymlinkAction {
			return cp.Shallow
		},
		PreserveTimes: true,
		Sync:          true,
	}

	if err := cp.Copy(src, dst, opts); err != nil {
		// A partial copy must not be left behind
		_ = os.RemoveAll(dst)
		return &MoveError{Op: "copy", Src: src, Dst: dst, Err: err}
	}

	if err := os.RemoveAll(src); err != nil {
		if rmErr := os.RemoveAll(dst); rmErr != nil {
			return &MoveError{
				Op:  "cleanup",
				Src: src,
				Dst: dst,
				Err: fmt.Errorf("failed to remove both source and destination: %w, %v", err, rmErr),
			}
		}
		return &MoveError{Op: "remove_source", Src: src, Dst: dst, Err: err}
	}

	return nil
}
