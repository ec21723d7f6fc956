package log

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/docker/go-units"
)

// RotateWriter appends to a log file shared by every run. Backups are
// numbered path.1 (newest) to path.N, so --show-log can walk them in order.
type RotateWriter struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	size    int64
	limit   int64
	backups int
}

// NewRotateWriter opens path for appending, keeping at most backups rotated
// files of roughly maxSize (a human size such as "10MB") each. A file that is
// already full is rotated before the run writes its first record, so the
// records of one run start in a fresh file.
func NewRotateWriter(path, maxSize string, backups int) (*RotateWriter, error) {
	limit, err := units.FromHumanSize(maxSize)
	if err != nil {
		return nil, fmt.Errorf("invalid max size format: %w", err)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("invalid max size %q", maxSize)
	}

	w := &RotateWriter{path: path, limit: limit, backups: backups}
	if err := w.open(); err != nil {
		return nil, err
	}
	if w.size >= w.limit {
		if err := w.rotate(); err != nil {
			w.file.Close()
			return nil, err
		}
	}
	return w, nil
}

// Write writes one record. Records are never split across files.
func (w *RotateWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, os.ErrClosed
	}
	if w.size > 0 && w.size+int64(len(p)) > w.limit {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *RotateWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// Backups returns the rotated files that exist, newest first
func (w *RotateWriter) Backups() []string {
	var paths []string
	for i := 1; i <= w.backups; i++ {
		p := w.backupPath(i)
		if _, err := os.Stat(p); err == nil {
			paths = append(paths, p)
		}
	}
	return paths
}

func (w *RotateWriter) backupPath(n int) string {
	return fmt.Sprintf("%s.%d", w.path, n)
}

func (w *RotateWriter) open() error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}

	w.file = f
	w.size = info.Size()
	return nil
}

// rotate shifts path.N-1 to path.N and so on down to path to path.1. The
// oldest backup falls off the end. With no backups the file is truncated.
func (w *RotateWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return err
	}
	w.file = nil

	if w.backups <= 0 {
		if err := os.Truncate(w.path, 0); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return w.open()
	}

	if err := os.Remove(w.backupPath(w.backups)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	for i := w.backups - 1; i >= 1; i-- {
		if err := os.Rename(w.backupPath(i), w.backupPath(i+1)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	if err := os.Rename(w.path, w.backupPath(1)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return w.open()
}
