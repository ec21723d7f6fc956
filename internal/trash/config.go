package trash

import (
	"fmt"
	"path/filepath"
)

// Config holds everything the Relocator needs. The backup location is an
// explicit value so tests can point it at a temporary directory.
type Config struct {
	// BackupDir is the root of the backup trash (e.g. ~/.trash, already expanded)
	BackupDir string

	// FallbackOnAnyError restores the historical behavior of falling back to
	// the backup trash on every system trash failure except a missing target
	FallbackOnAnyError bool

	// ProtectedPaths are refused as targets, in addition to the built-in list
	ProtectedPaths []string

	// ProtectedGlobs are matched against the absolute target path
	ProtectedGlobs []string
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	if c.BackupDir == "" {
		return fmt.Errorf("backup trash directory is not set")
	}
	if !filepath.IsAbs(c.BackupDir) {
		return fmt.Errorf("backup trash directory must be an absolute path: %s", c.BackupDir)
	}
	return nil
}
