package config

import (
	"gopkg.in/yaml.v2"
)

const DefaultBackupDir = "~/.trash"

// NewDefaultConfig creates a new Config with default values
func NewDefaultConfig() Config {
	return Config{
		Trash: TrashConfig{
			BackupDir:      DefaultBackupDir,
			UseSystemTrash: true,
			Protect: ProtectConfig{
				Paths: []string{},
				Globs: []string{},
			},
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "debug",
			Rotation: RotationConfig{
				MaxSize:  "10MB",
				MaxFiles: 3,
			},
		},
	}
}

// DefaultContents renders the default config as YAML
func DefaultContents() string {
	content, _ := yaml.Marshal(NewDefaultConfig())
	return string(content)
}
