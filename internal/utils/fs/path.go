package fs

import (
	"path/filepath"
	"strings"
)

// IsUnsafePath checks if the given path is unsafe to remove
func IsUnsafePath(path string) bool {
	// Check the original input before normalization so that "." or ".."
	// are caught as typed
	originalBase := filepath.Base(path)
	if originalBase == "." || originalBase == ".." {
		return true
	}

	if strings.HasPrefix(path, "//") {
		return true
	}

	cleaned := filepath.Clean(path)
	return cleaned == string(filepath.Separator) ||
		cleaned == filepath.VolumeName(cleaned)+string(filepath.Separator)
}

// IsWithin reports whether path equals root or lies below it.
// Both are expected to be absolute and clean.
func IsWithin(path, root string) bool {
	if path == root {
		return true
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
