package config

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gobwas/glob"
)

var sizeRe = regexp.MustCompile(`^\d+(KB|MB|GB|TB|PB)$`)

// validateSize validates the size format (e.g., "10MB", "1GB")
func validateSize(fl validator.FieldLevel) bool {
	return sizeRe.MatchString(strings.ToUpper(fl.Field().String()))
}

func validateGlob(fl validator.FieldLevel) bool {
	_, err := glob.Compile(fl.Field().String(), filepath.Separator)
	return err == nil
}

func validateLevel(fl validator.FieldLevel) bool {
	value := strings.ToLower(fl.Field().String())
	return slices.Contains([]string{"debug", "info", "warn", "error"}, value)
}

// validateDirPath accepts any clean absolute path. Whether the directory
// may be used is decided by the trash itself.
func validateDirPath(fl validator.FieldLevel) bool {
	path := strings.TrimSpace(fl.Field().String())
	if path == "" {
		return false
	}
	return filepath.IsAbs(path) && filepath.Clean(path) == path
}

// ExpandPath expands environment variables and "~" in paths
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	path = os.ExpandEnv(path)

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	return abs, nil
}
