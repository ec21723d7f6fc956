//go:build windows

package fs

import (
	"errors"
	"fmt"
	"path/filepath"

	"golang.org/x/sys/windows"
)

// isSamePartition compares the volume serial numbers of src and dst.
func isSamePartition(src, dst string) (bool, error) {
	srcAbs, err := filepath.Abs(src)
	if err != nil {
		return false, err
	}
	dstAbs, err := filepath.Abs(dst)
	if err != nil {
		return false, err
	}

	srcVolume := filepath.VolumeName(srcAbs)
	dstVolume := filepath.VolumeName(dstAbs)
	if srcVolume == "" || dstVolume == "" {
		return false, errors.New("failed to determine volume name from file paths")
	}

	var srcVolID, dstVolID uint32
	err = windows.GetVolumeInformation(windows.StringToUTF16Ptr(srcVolume+`\`), nil, 0, &srcVolID, nil, nil, nil, 0)
	if err != nil {
		return false, fmt.Errorf("failed to get source volume information: %w", err)
	}

	err = windows.GetVolumeInformation(windows.StringToUTF16Ptr(dstVolume+`\`), nil, 0, &dstVolID, nil, nil, nil, 0)
	if err != nil {
		return false, fmt.Errorf("failed to get destination volume information: %w", err)
	}

	return srcVolID == dstVolID, nil
}
