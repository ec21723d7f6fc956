package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/babarot/scripts/internal/env"
	"github.com/go-playground/validator/v10"
	"github.com/muesli/reflow/indent"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Trash   TrashConfig   `yaml:"trash"`
	Logging LoggingConfig `yaml:"logging"`
}

type TrashConfig struct {
	BackupDir          string        `yaml:"backup_dir" validate:"required,validDirPath"`
	UseSystemTrash     bool          `yaml:"use_system_trash"`
	FallbackOnAnyError bool          `yaml:"fallback_on_any_error"`
	Protect            ProtectConfig `yaml:"protect"`
}

type ProtectConfig struct {
	Paths []string `yaml:"paths" validate:"dive,validDirPath"`
	Globs []string `yaml:"globs" validate:"dive,validGlob"`
}

type LoggingConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Level    string         `yaml:"level" validate:"validLevel"`
	Rotation RotationConfig `yaml:"rotation"`
}

type RotationConfig struct {
	MaxSize  string `yaml:"max_size" validate:"validSize"`
	MaxFiles int    `yaml:"max_files" validate:"gte=0"`
}

type configError struct {
	configPath string
	err        error
}

func (e configError) Error() string {
	return heredoc.Docf(`
		Couldn't read the "%s" config file.
		Please try again after creating it or specifying a valid config path.
		The recommended config path is %s (default).
		Example YAML file contents:
		---
		%s
		---
		Original error:
		%s
		`,
		e.configPath,
		env.SCRIPTS_CONFIG_PATH,
		DefaultContents(),
		indent.String(e.err.Error(), 2),
	)
}

func (e configError) Unwrap() error { return e.err }

type parsingError struct {
	err error
}

func (e parsingError) Error() string {
	return fmt.Sprintf("failed to parse config: %v", e.err)
}

func (e parsingError) Unwrap() error { return e.err }

type parser struct {
	validate *validator.Validate
}

func newParser() parser {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.Split(fld.Tag.Get("yaml"), ",")[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("validSize", validateSize)
	_ = validate.RegisterValidation("validGlob", validateGlob)
	_ = validate.RegisterValidation("validLevel", validateLevel)
	_ = validate.RegisterValidation("validDirPath", validateDirPath)

	return parser{validate: validate}
}

func (p parser) readConfigFile(path string) (Config, error) {
	cfg := NewDefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, configError{configPath: path, err: err}
	}

	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (p parser) validateConfig(cfg Config) error {
	err := p.validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Errorf("validation error: field %s, %q is invalid", verrs[0].Namespace(), verrs[0].Value())
	}
	return err
}

// Parse loads the config at path. An empty path means the default location,
// which may be absent: built-in defaults are used then.
func Parse(path string) (Config, error) {
	if path == "" {
		return parse(env.SCRIPTS_CONFIG_PATH, false)
	}
	return parse(path, true)
}

func parse(path string, explicit bool) (Config, error) {
	p := newParser()

	cfg, err := p.readConfigFile(path)
	switch {
	case err == nil:
		slog.Debug("config file found", "config-file", path)
	case !explicit && errors.Is(err, fs.ErrNotExist):
		slog.Debug("config file not found, using defaults", "config-file", path)
		cfg = NewDefaultConfig()
	default:
		return cfg, parsingError{err: err}
	}

	cfg.Trash.BackupDir, err = ExpandPath(cfg.Trash.BackupDir)
	if err != nil {
		return cfg, parsingError{err: fmt.Errorf("backup_dir: %w", err)}
	}
	for i, path := range cfg.Trash.Protect.Paths {
		if cfg.Trash.Protect.Paths[i], err = ExpandPath(path); err != nil {
			return cfg, parsingError{err: fmt.Errorf("protect.paths: %w", err)}
		}
	}

	if err := p.validateConfig(cfg); err != nil {
		return cfg, parsingError{err: err}
	}
	return cfg, nil
}
