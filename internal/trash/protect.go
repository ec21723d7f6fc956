package trash

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/babarot/scripts/internal/utils/fs"
	"github.com/gobwas/glob"
)

// Common paths that should not be trashed
var defaultProtected = []string{
	"/",
	"/home",
	"/usr",
	"/etc",
	"/var",
	"/tmp",
}

type protector struct {
	paths     []string
	globs     []glob.Glob
	backupDir string
}

func newProtector(cfg Config) (*protector, error) {
	p := &protector{backupDir: filepath.Clean(cfg.BackupDir)}

	for _, path := range append(defaultProtected, cfg.ProtectedPaths...) {
		p.paths = append(p.paths, filepath.Clean(path))
	}
	if home, err := os.UserHomeDir(); err == nil {
		p.paths = append(p.paths, filepath.Clean(home))
	}

	for _, pattern := range cfg.ProtectedGlobs {
		g, err := glob.Compile(pattern, filepath.Separator)
		if err != nil {
			return nil, fmt.Errorf("invalid protected glob %q: %w", pattern, err)
		}
		p.globs = append(p.globs, g)
	}

	return p, nil
}

// check validates the target as typed and in its absolute form
func (p *protector) check(arg, abs string) error {
	if fs.IsUnsafePath(arg) {
		return &TargetError{Path: arg, Err: ErrUnsafePath}
	}

	for _, path := range p.paths {
		if abs == path {
			return &TargetError{Path: arg, Err: ErrProtectedPath}
		}
	}

	for _, g := range p.globs {
		if g.Match(abs) {
			return &TargetError{Path: arg, Err: ErrProtectedPath}
		}
	}

	// Trashing the backup trash, or anything containing it, into itself
	if fs.IsWithin(p.backupDir, abs) {
		return &TargetError{Path: arg, Err: ErrProtectedPath}
	}

	return nil
}
