//go:build !windows

package fs

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
)

// isSamePartition reports whether src and the parent directory of dst
// reside on the same filesystem.
func isSamePartition(src, dst string) (bool, error) {
	srcInfo, err := os.Lstat(src)
	if err != nil {
		return false, err
	}

	dstInfo, err := os.Stat(filepath.Dir(dst))
	if err != nil {
		return false, err
	}

	srcSys, ok := srcInfo.Sys().(*syscall.Stat_t)
	if !ok {
		return false, errors.New("failed to get source system info")
	}

	dstSys, ok := dstInfo.Sys().(*syscall.Stat_t)
	if !ok {
		return false, errors.New("failed to get destination system info")
	}

	return srcSys.Dev == dstSys.Dev, nil
}
