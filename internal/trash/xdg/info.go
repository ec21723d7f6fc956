package xdg

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/babarot/scripts/internal/utils/fs"
)

const (
	// According to XDG spec
	trashInfoHeader = "[Trash Info]"
	timeFormat      = "2006-01-02T15:04:05"
	infoExt         = ".trashinfo"
)

// TrashInfo represents the contents of a .trashinfo file
type TrashInfo struct {
	// Path is the original path, absolute or relative to the trash's topdir
	Path string

	// DeletionDate is when the file was moved to trash, in local time
	DeletionDate time.Time
}

// Encode renders the info file contents
func (i TrashInfo) Encode() string {
	var b strings.Builder
	fmt.Fprintln(&b, trashInfoHeader)
	fmt.Fprintf(&b, "Path=%s\n", encodeTrashPath(i.Path))
	fmt.Fprintf(&b, "DeletionDate=%s\n", i.DeletionDate.Local().Format(timeFormat))
	return b.String()
}

// Save writes the info file, failing with fs.ErrExist if the name is taken.
// The exclusive create is what reserves a name in the trash.
func (i TrashInfo) Save(path string) error {
	f, err := fs.CreateExclusive(path, 0600)
	if err != nil {
		return err
	}

	if _, err := f.WriteString(i.Encode()); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write info file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to close info file: %w", err)
	}
	return nil
}

// encodeTrashPath encodes a path according to the XDG specification:
// slashes are kept and spaces become %20 rather than +
func encodeTrashPath(path string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		parts[i] = strings.ReplaceAll(url.QueryEscape(part), "+", "%20")
	}
	return strings.Join(parts, "/")
}
