//go:build !darwin && !windows

package cli

import (
	"github.com/babarot/scripts/internal/trash"
	"github.com/babarot/scripts/internal/trash/xdg"
)

func newSystemTrash() (trash.SystemTrash, error) {
	t, err := xdg.New(xdg.Options{})
	if err != nil {
		return nil, err
	}
	return t, nil
}
