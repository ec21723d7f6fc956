package debug

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestShowExistingLogs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "debug.log")
	files := map[string]string{
		path:        "current\n",
		path + ".1": "older\n",
		path + ".2": "oldest\n",
	}
	for p, content := range files {
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	var out bytes.Buffer
	if err := Logs(&out, path, []string{path + ".1", path + ".2"}, true, false); err != nil {
		t.Fatalf("Logs failed: %v", err)
	}
	if want := "oldest\nolder\ncurrent\n"; out.String() != want {
		t.Errorf("Logs() = %q, want %q", out.String(), want)
	}
}

func TestShowExistingLogsMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")

	tests := []struct {
		name    string
		enabled bool
		want    string
	}{
		{"logging disabled", false, "not enabled"},
		{"nothing logged yet", true, "no log file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Logs(&bytes.Buffer{}, path, nil, tt.enabled, false)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
