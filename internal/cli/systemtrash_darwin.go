//go:build darwin

package cli

import (
	"github.com/babarot/scripts/internal/trash"
	"github.com/babarot/scripts/internal/trash/finder"
)

func newSystemTrash() (trash.SystemTrash, error) {
	return finder.New(nil), nil
}
