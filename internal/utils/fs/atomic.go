package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

// CreateExclusive creates a new file with O_EXCL flag to ensure atomic creation.
// Returns error if the file already exists.
func CreateExclusive(path string, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
}

// CreateAtomic creates a temporary file next to path. Nothing is visible at
// path until commit succeeds; cleanup discards the temporary file and is safe
// to call after commit.
func CreateAtomic(path string, perm os.FileMode) (*os.File, func(), func() error, error) {
	dir := filepath.Dir(path)
	temp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	if err := temp.Chmod(perm); err != nil {
		_ = temp.Close()
		_ = os.Remove(temp.Name())
		return nil, nil, nil, fmt.Errorf("failed to set permissions: %w", err)
	}

	committed := false
	cleanup := func() {
		if committed {
			return
		}
		name := temp.Name()
		_ = temp.Close()
		_ = os.Remove(name)
	}

	commit := func() error {
		name := temp.Name()
		if err := temp.Sync(); err != nil {
			return fmt.Errorf("failed to sync temporary file: %w", err)
		}
		if err := temp.Close(); err != nil {
			return fmt.Errorf("failed to close temporary file: %w", err)
		}
		if err := os.Rename(name, path); err != nil {
			return fmt.Errorf("failed to move temporary file: %w", err)
		}
		committed = true
		return nil
	}

	return temp, cleanup, commit, nil
}
