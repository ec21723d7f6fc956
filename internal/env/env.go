package env

import (
	"os"
	"path/filepath"
)

const (
	appDirname = "scripts"

	defaultXDGConfigDirname = ".config"
	defaultXDGDataDirname   = ".local/share"
)

var (
	SCRIPTS_CONFIG_PATH string

	SCRIPTS_LOG_PATH string
)

func init() {
	// Follow https://specifications.freedesktop.org/basedir-spec/latest/
	SCRIPTS_CONFIG_PATH = os.Getenv("SCRIPTS_CONFIG_PATH")
	if SCRIPTS_CONFIG_PATH == "" {
		configDir := os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			configDir = filepath.Join(homeDir(), defaultXDGConfigDirname)
		}
		SCRIPTS_CONFIG_PATH = filepath.Join(configDir, appDirname, "config.yaml")
	}

	SCRIPTS_LOG_PATH = os.Getenv("SCRIPTS_LOG_PATH")
	if SCRIPTS_LOG_PATH == "" {
		dataDir := os.Getenv("XDG_DATA_HOME")
		if dataDir == "" {
			dataDir = filepath.Join(homeDir(), defaultXDGDataDirname)
		}
		SCRIPTS_LOG_PATH = filepath.Join(dataDir, appDirname, "debug.log")
	}
}

// homeDir falls back to the temp dir so that a missing $HOME never
// prevents the tools from starting.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.TempDir()
	}
	return home
}
