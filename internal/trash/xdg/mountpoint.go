//go:build !windows

package xdg

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/babarot/scripts/internal/utils/fs"
	"github.com/moby/sys/mountinfo"
)

// topdir returns the mount point holding path
func topdir(path string) (string, error) {
	mounts, err := mountinfo.GetMounts(func(info *mountinfo.Info) (skip, stop bool) {
		return !fs.IsWithin(path, info.Mountpoint), false
	})
	if err != nil {
		return "", fmt.Errorf("failed to get mount info: %w", err)
	}

	longest := "/"
	for _, m := range mounts {
		if len(m.Mountpoint) > len(longest) {
			longest = m.Mountpoint
		}
	}
	slog.Debug("found mount point", "path", path, "mountpoint", longest)
	return longest, nil
}

// device returns the device id of the nearest existing ancestor of path,
// so that a trash directory that does not exist yet can still be compared
func device(path string) (uint64, error) {
	for {
		fi, err := os.Lstat(path)
		if err == nil {
			st, ok := fi.Sys().(*syscall.Stat_t)
			if !ok {
				return 0, errors.New("failed to get device information")
			}
			return uint64(st.Dev), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return 0, err
		}
		parent := filepath.Dir(path)
		if parent == path {
			return 0, err
		}
		path = parent
	}
}

// isValidSharedTrash checks $topdir/.Trash: a real directory with the sticky bit set
func isValidSharedTrash(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	if info.Mode()&os.ModeSymlink != 0 {
		slog.Debug("is a symbolic link", "path", path)
		return false
	}
	if !info.IsDir() {
		slog.Debug("not a directory", "path", path)
		return false
	}
	if info.Mode()&os.ModeSticky == 0 {
		slog.Debug("missing sticky bit", "path", path)
		return false
	}
	return true
}
