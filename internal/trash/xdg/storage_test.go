//go:build !windows

package xdg

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/babarot/scripts/internal/trash"
)

var deletedAt = time.Date(2024, 6, 10, 8, 30, 0, 0, time.Local)

func newTestTrash(t *testing.T) (*Trash, string) {
	t.Helper()
	base := t.TempDir()
	tr, err := New(Options{
		HomeTrash: filepath.Join(base, "Trash"),
		Now:       func() time.Time { return deletedAt },
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	src := filepath.Join(base, "src")
	if err := os.MkdirAll(src, 0755); err != nil {
		t.Fatal(err)
	}
	return tr, src
}

func writeFile(t *testing.T, path string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(filepath.Base(path)), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSend(t *testing.T) {
	tr, src := newTestTrash(t)
	target := writeFile(t, filepath.Join(src, "report draft.txt"))

	if err := tr.Send([]string{target}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if _, err := os.Lstat(target); !os.IsNotExist(err) {
		t.Errorf("target still exists: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tr.HomeRoot(), "files", "report draft.txt")); err != nil {
		t.Errorf("file not in trash: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tr.HomeRoot(), "info", "report draft.txt.trashinfo"))
	if err != nil {
		t.Fatalf("info file missing: %v", err)
	}
	want := TrashInfo{Path: target, DeletionDate: deletedAt}.Encode()
	if string(data) != want {
		t.Errorf("info file = %q, want %q", data, want)
	}

	fi, err := os.Stat(filepath.Join(tr.HomeRoot(), "files"))
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm() != 0700 {
		t.Errorf("files dir mode = %v, want 0700", fi.Mode().Perm())
	}
}

func TestSendNameCollision(t *testing.T) {
	tr, src := newTestTrash(t)

	for i := 0; i < 3; i++ {
		target := writeFile(t, filepath.Join(src, "a.txt"))
		if err := tr.Send([]string{target}); err != nil {
			t.Fatalf("Send #%d failed: %v", i+1, err)
		}
	}

	for _, name := range []string{"a.txt", "a.txt_1", "a.txt_2"} {
		if _, err := os.Stat(filepath.Join(tr.HomeRoot(), "files", name)); err != nil {
			t.Errorf("%s missing from trash: %v", name, err)
		}
		if _, err := os.Stat(filepath.Join(tr.HomeRoot(), "info", name+".trashinfo")); err != nil {
			t.Errorf("%s.trashinfo missing: %v", name, err)
		}
	}
}

func TestSendTargetNotFound(t *testing.T) {
	tr, src := newTestTrash(t)
	missing := filepath.Join(src, "missing")

	err := tr.Send([]string{missing})
	if !errors.Is(err, trash.ErrTargetNotFound) {
		t.Fatalf("expected ErrTargetNotFound, got %v", err)
	}
	var se *trash.SystemError
	if !errors.As(err, &se) || se.Path != missing {
		t.Errorf("expected SystemError for %s, got %v", missing, err)
	}
}

func TestSendStopsAtFirstFailure(t *testing.T) {
	tr, src := newTestTrash(t)
	a := writeFile(t, filepath.Join(src, "a"))
	c := writeFile(t, filepath.Join(src, "c"))

	err := tr.Send([]string{a, filepath.Join(src, "b"), c})
	if !errors.Is(err, trash.ErrTargetNotFound) {
		t.Fatalf("expected ErrTargetNotFound, got %v", err)
	}
	if _, err := os.Lstat(a); !os.IsNotExist(err) {
		t.Error("a should have been trashed")
	}
	if _, err := os.Lstat(c); err != nil {
		t.Error("c should be untouched")
	}
}

func TestSendClassifiesFailures(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	t.Run("uncreatable trash", func(t *testing.T) {
		base := t.TempDir()
		locked := filepath.Join(base, "locked")
		if err := os.Mkdir(locked, 0500); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { os.Chmod(locked, 0700) })

		tr, err := New(Options{HomeTrash: filepath.Join(locked, "Trash")})
		if err != nil {
			t.Fatal(err)
		}
		target := writeFile(t, filepath.Join(base, "a"))

		err = tr.Send([]string{target})
		if !errors.Is(err, trash.ErrTrashCreationFailed) {
			t.Fatalf("expected ErrTrashCreationFailed, got %v", err)
		}
		if !trash.IsRecoverable(err) {
			t.Error("expected a recoverable error")
		}
	})

	t.Run("permission denied on target", func(t *testing.T) {
		tr, src := newTestTrash(t)
		dir := filepath.Join(src, "ro")
		if err := os.Mkdir(dir, 0755); err != nil {
			t.Fatal(err)
		}
		target := writeFile(t, filepath.Join(dir, "a"))
		if err := os.Chmod(dir, 0500); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { os.Chmod(dir, 0700) })

		err := tr.Send([]string{target})
		if !errors.Is(err, trash.ErrPermissionDenied) {
			t.Fatalf("expected ErrPermissionDenied, got %v", err)
		}
		entries, _ := os.ReadDir(filepath.Join(tr.HomeRoot(), "info"))
		if len(entries) != 0 {
			t.Errorf("info file should be removed after a failed move, found %d", len(entries))
		}
	})
}

func TestEncode(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/home/user/a.txt", "Path=/home/user/a.txt"},
		{"/home/user/my file.txt", "Path=/home/user/my%20file.txt"},
		{"/home/user/a+b&c.txt", "Path=/home/user/a%2Bb%26c.txt"},
		{"data/résumé.pdf", "Path=data/r%C3%A9sum%C3%A9.pdf"},
	}
	for _, tt := range tests {
		got := TrashInfo{Path: tt.path, DeletionDate: deletedAt}.Encode()
		lines := strings.Split(got, "\n")
		if lines[0] != "[Trash Info]" {
			t.Errorf("header = %q", lines[0])
		}
		if lines[1] != tt.want {
			t.Errorf("Encode(%q) path line = %q, want %q", tt.path, lines[1], tt.want)
		}
		if lines[2] != "DeletionDate=2024-06-10T08:30:00" {
			t.Errorf("date line = %q", lines[2])
		}
	}
}

func TestSaveIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.trashinfo")
	info := TrashInfo{Path: "/a", DeletionDate: deletedAt}
	if err := info.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := info.Save(path); !errors.Is(err, os.ErrExist) {
		t.Fatalf("expected os.ErrExist, got %v", err)
	}
}
