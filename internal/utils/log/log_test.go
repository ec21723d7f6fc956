package log

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWithTee(t *testing.T) {
	var console, file bytes.Buffer

	logger := New(
		UseOutput(&console),
		UseLevel(WarnLevel),
		UseTee(NewFileHandler(&file, DebugLevel)),
		With("run_id", "abc"),
	)

	logger.Debug("details")
	logger.Warn("careful")

	if strings.Contains(console.String(), "details") {
		t.Error("console should not receive debug records")
	}
	if !strings.Contains(console.String(), "careful") {
		t.Error("console should receive warnings")
	}
	for _, want := range []string{"details", "careful", "run_id=abc"} {
		if !strings.Contains(file.String(), want) {
			t.Errorf("file log missing %q:\n%s", want, file.String())
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"error", ErrorLevel},
		{"bogus", DebugLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRotateWriter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "debug.log")

	w, err := NewRotateWriter(path, "1KB", 2)
	if err != nil {
		t.Fatalf("NewRotateWriter failed: %v", err)
	}
	defer w.Close()

	line := []byte(strings.Repeat("x", 399) + "\n")
	for i := 0; i < 20; i++ {
		if _, err := w.Write(line); err != nil {
			t.Fatalf("Write #%d failed: %v", i, err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() > 1000 {
		t.Errorf("active log is %d bytes, expected rotation at 1KB", info.Size())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	backups := 0
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "debug.log.") {
			backups++
		}
	}
	if backups != 2 {
		t.Errorf("expected 2 rotated files, got %d", backups)
	}
}

func TestRotateWriterShiftsBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "debug.log")

	w, err := NewRotateWriter(path, "10B", 2)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	for _, rec := range []string{"first-run\n", "second-run\n", "third-run\n"} {
		if _, err := w.Write([]byte(rec)); err != nil {
			t.Fatal(err)
		}
	}

	want := map[string]string{
		path:        "third-run\n",
		path + ".1": "second-run\n",
		path + ".2": "first-run\n",
	}
	for p, content := range want {
		got, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("missing %s: %v", p, err)
		}
		if string(got) != content {
			t.Errorf("%s = %q, want %q", filepath.Base(p), got, content)
		}
	}

	backups := w.Backups()
	if len(backups) != 2 || backups[0] != path+".1" || backups[1] != path+".2" {
		t.Errorf("Backups() = %v", backups)
	}
}

func TestRotateWriterRotatesFullFileOnOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "debug.log")
	if err := os.WriteFile(path, []byte(strings.Repeat("x", 2048)), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := NewRotateWriter(path, "1KB", 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("new run\n")); err != nil {
		t.Fatal(err)
	}
	w.Close()

	got, _ := os.ReadFile(path)
	if string(got) != "new run\n" {
		t.Errorf("active log = %q, want only the new run", got)
	}
	if info, err := os.Stat(path + ".1"); err != nil || info.Size() != 2048 {
		t.Errorf("expected the full log rotated to .1, got %v", err)
	}
}

func TestRotateWriterClosed(t *testing.T) {
	w, err := NewRotateWriter(filepath.Join(t.TempDir(), "debug.log"), "1KB", 1)
	if err != nil {
		t.Fatal(err)
	}
	w.Close()
	if _, err := w.Write([]byte("late\n")); !errors.Is(err, os.ErrClosed) {
		t.Errorf("expected os.ErrClosed, got %v", err)
	}
}

func TestRotateWriterInvalidSize(t *testing.T) {
	if _, err := NewRotateWriter(filepath.Join(t.TempDir(), "x.log"), "lots", 1); err == nil {
		t.Fatal("expected an error for an invalid size")
	}
}

func TestTeeWithAttrs(t *testing.T) {
	var console, file bytes.Buffer
	logger := New(
		UseOutput(&console),
		UseLevel(ErrorLevel),
		UseTee(NewFileHandler(&file, InfoLevel)),
	).With("component", "relocator")
	logger.Info("hello")

	if !strings.Contains(file.String(), "component=relocator") {
		t.Errorf("attrs not propagated: %q", file.String())
	}
	if console.Len() != 0 {
		t.Errorf("error-level console should stay empty, got %q", console.String())
	}
}
