package cli

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/babarot/scripts/internal/config"
	"github.com/babarot/scripts/internal/trash"
	"github.com/babarot/scripts/internal/utils/log"
	"github.com/fatih/color"
)

func TestLogOptionLevel(t *testing.T) {
	tests := []struct {
		name    string
		opt     LogOption
		want    log.Level
		wantErr bool
	}{
		{name: "default", opt: LogOption{}, want: log.WarnLevel},
		{name: "quiet", opt: LogOption{Quiet: true}, want: log.FatalLevel},
		{name: "verbose", opt: LogOption{Verbose: true}, want: log.InfoLevel},
		{name: "debug", opt: LogOption{Debug: true}, want: log.DebugLevel},
		{name: "quiet and debug", opt: LogOption{Quiet: true, Debug: true}, wantErr: true},
		{name: "all three", opt: LogOption{Quiet: true, Verbose: true, Debug: true}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.opt.Level()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Level() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Level() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMainExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: 0},
		{name: "failure", err: errors.New("boom"), want: 1},
		{name: "broken pipe", err: fmt.Errorf("write /dev/stdout: %w", syscall.EPIPE), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Main(func() error { return tt.err }); got != tt.want {
				t.Errorf("Main() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSetupLoggerTruncatesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	if err := os.WriteFile(path, []byte("stale contents\n"), 0644); err != nil {
		t.Fatal(err)
	}

	closeLog, err := setupLogger(LogOption{File: path, Verbose: true})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { log.New(log.AsDefault()) })

	slog.Info("fresh run")
	closeLog()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "stale contents") {
		t.Error("log file should be truncated")
	}
	if !strings.Contains(string(data), "fresh run") {
		t.Errorf("log file should hold the new message, got %q", data)
	}
}

func TestBinToASCII(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		stdin   string
		want    string
		wantErr bool
	}{
		{
			name: "arguments are joined",
			args: []string{"01001000", "0110", "1001"},
			want: "Hi\n",
		},
		{
			name:  "stdin lines without separators",
			stdin: "01001000\r\n01101001\n",
			want:  "Hi\n",
		},
		{
			name:  "empty stdin",
			stdin: "",
			want:  "\n",
		},
		{
			name:  "stdin line longer than 64KiB",
			stdin: strings.Repeat("01000001", 10000) + "\n",
			want:  strings.Repeat("A", 10000) + "\n",
		},
		{
			name:  "last line without newline",
			stdin: "01001000\n01101001",
			want:  "Hi\n",
		},
		{
			name:    "invalid input",
			args:    []string{"0100100x"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := binToASCII(tt.args, strings.NewReader(tt.stdin), &out)
			if (err != nil) != tt.wantErr {
				t.Fatalf("binToASCII() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && out.String() != tt.want {
				t.Errorf("binToASCII() = %q, want %q", out.String(), tt.want)
			}
		})
	}
}

func TestQueryParams(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		url  string
		want string
	}{
		{
			url:  "https://example.com/path",
			want: "https://example.com/path\n",
		},
		{
			url:  "https://example.com/s?q=a%20b&lang=en",
			want: "https://example.com/s\nq:    a b\nlang: en\n",
		},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		if err := queryParams(&out, tt.url, 20); err != nil {
			t.Fatal(err)
		}
		if out.String() != tt.want {
			t.Errorf("queryParams(%q) = %q, want %q", tt.url, out.String(), tt.want)
		}
	}
}

func TestReadLine(t *testing.T) {
	for in, want := range map[string]string{
		"https://a.io/?x=1\n":   "https://a.io/?x=1",
		"https://a.io/?x=1\r\n": "https://a.io/?x=1",
		"no newline":            "no newline",
		"":                      "",
		"first\nsecond\n":       "first",
	} {
		got, err := readLine(strings.NewReader(in))
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("readLine(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewRelocator(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Trash.BackupDir = filepath.Join(t.TempDir(), ".trash")

	backup := filepath.Join(t.TempDir(), "other")
	r, err := newRelocator(cfg, TrashOption{BackupDir: backup, NoSystem: true})
	if err != nil {
		t.Fatal(err)
	}
	if r.Backup().Root() != backup {
		t.Errorf("backup root = %s, want %s", r.Backup().Root(), backup)
	}

	target := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(target, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	result, err := r.Relocate([]string{target})
	if err != nil {
		t.Fatal(err)
	}
	if got := result.Placements[0]; got.Location != trash.LocationBackup {
		t.Errorf("expected backup placement, got %+v", got)
	}
	if n := diskUsage(filepath.Join(backup, "a.txt")); n != 5 {
		t.Errorf("diskUsage = %d, want 5", n)
	}
}

func TestVersionPrint(t *testing.T) {
	v := Version{AppName: "trash", Description: "move files to the trash", Version: "v1.2.3", Revision: "abc123"}
	out := v.Print()
	for _, want := range []string{"trash - move files to the trash", "version: v1.2.3", "revision: abc123"} {
		if !strings.Contains(out, want) {
			t.Errorf("Print() missing %q:\n%s", want, out)
		}
	}
}
