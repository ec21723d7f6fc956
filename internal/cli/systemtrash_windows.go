//go:build windows

package cli

import (
	"errors"

	"github.com/babarot/scripts/internal/trash"
)

// recycleBin stands in for the Recycle Bin, which is not supported
type recycleBin struct{}

func (recycleBin) Send(paths []string) error {
	return trash.NewSystemError(trash.ErrTrashCreationFailed, "", errors.New("the recycle bin is not supported"))
}

func newSystemTrash() (trash.SystemTrash, error) {
	return recycleBin{}, nil
}
