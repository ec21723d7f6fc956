package cli

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"al.essio.dev/pkg/shellescape"
	"github.com/babarot/scripts/internal/config"
	"github.com/babarot/scripts/internal/env"
	"github.com/babarot/scripts/internal/trash"
	"github.com/babarot/scripts/internal/utils/debug"
	"github.com/babarot/scripts/internal/utils/log"
	"github.com/dustin/go-humanize"
)

type TrashOption struct {
	Config    string `long:"config" value-name:"PATH" description:"Path to config file"`
	BackupDir string `long:"backup-dir" value-name:"DIR" description:"Backup trash directory used when the system trash is unavailable (overrides config)"`
	NoSystem  bool   `long:"no-system" description:"Skip the system trash and use the backup trash directly"`
	ShowLog   string `long:"show-log" description:"View the persistent log (default: \"full\")" optional-value:"full" optional:"yes" choice:"full" choice:"live"`

	Log  LogOption  `group:"Logging Options"`
	Meta MetaOption `group:"Meta Options"`
}

// RunTrash is the entry point of the trash command
func RunTrash(v Version) error {
	var opt TrashOption
	args, help, err := parse(&opt, v, "[options] TARGET...")
	if err != nil || help {
		return err
	}

	if opt.Meta.Version {
		fmt.Fprint(os.Stdout, v.Print())
		return nil
	}

	cfg, err := config.Parse(opt.Config)
	if err != nil {
		return err
	}

	var extra []log.Option
	var backups []string
	if cfg.Logging.Enabled {
		tee, w, err := persistentLog(cfg.Logging)
		if err != nil {
			slog.Warn("persistent log disabled", "path", env.SCRIPTS_LOG_PATH, "error", err)
		} else {
			defer w.Close()
			backups = w.Backups()
			extra = append(extra, log.UseTee(tee))
		}
	}
	closeLog, err := setupLogger(opt.Log, extra...)
	defer closeLog()
	if err != nil {
		return err
	}

	slog.Debug("trash started", "version", v.Version, "revision", v.Revision, "args", args)
	defer slog.Debug("trash finished")

	switch opt.ShowLog {
	case "live":
		return debug.Logs(os.Stdout, env.SCRIPTS_LOG_PATH, backups, cfg.Logging.Enabled, true)
	case "full":
		return debug.Logs(os.Stdout, env.SCRIPTS_LOG_PATH, backups, cfg.Logging.Enabled, false)
	}

	r, err := newRelocator(cfg, opt)
	if err != nil {
		return err
	}

	result, err := r.Relocate(args)
	if result != nil {
		logPlacements(result)
	}
	return err
}

func newRelocator(cfg config.Config, opt TrashOption) (*trash.Relocator, error) {
	backupDir := cfg.Trash.BackupDir
	if opt.BackupDir != "" {
		dir, err := config.ExpandPath(opt.BackupDir)
		if err != nil {
			return nil, fmt.Errorf("invalid backup dir: %w", err)
		}
		backupDir = dir
	}

	var opts []trash.Option
	if cfg.Trash.UseSystemTrash && !opt.NoSystem {
		sys, err := newSystemTrash()
		if err != nil {
			slog.Warn("system trash unavailable", "error", err)
		} else {
			opts = append(opts, trash.WithSystemTrash(sys))
		}
	}

	return trash.NewRelocator(trash.Config{
		BackupDir:          backupDir,
		FallbackOnAnyError: cfg.Trash.FallbackOnAnyError,
		ProtectedPaths:     cfg.Trash.Protect.Paths,
		ProtectedGlobs:     cfg.Trash.Protect.Globs,
	}, opts...)
}

// persistentLog opens the rotating debug log shared by every run
func persistentLog(cfg config.LoggingConfig) (slog.Handler, *log.RotateWriter, error) {
	if err := os.MkdirAll(filepath.Dir(env.SCRIPTS_LOG_PATH), 0755); err != nil {
		return nil, nil, err
	}
	w, err := log.NewRotateWriter(env.SCRIPTS_LOG_PATH, cfg.Rotation.MaxSize, cfg.Rotation.MaxFiles)
	if err != nil {
		return nil, nil, err
	}
	return log.NewFileHandler(w, log.ParseLevel(cfg.Level)), w, nil
}

func logPlacements(result *trash.Result) {
	for _, p := range result.Placements {
		switch p.Location {
		case trash.LocationBackup:
			slog.Info("moved to backup trash",
				"from", shellescape.Quote(p.Source),
				"to", shellescape.Quote(p.Dest),
				"size", humanize.Bytes(diskUsage(p.Dest)))
		default:
			slog.Info("moved to system trash", "path", shellescape.Quote(p.Source))
		}
	}
}

// diskUsage sums the sizes of regular files under path
func diskUsage(path string) uint64 {
	var total uint64
	filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				total += uint64(info.Size())
			}
		}
		return nil
	})
	return total
}
