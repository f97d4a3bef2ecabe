//go:build !unix

package devfs

import (
	"errors"
	"io/fs"
)

func deviceOfPath(string) (uint64, error) {
	return 0, errors.New("device ids are not available on this platform")
}

// DeviceOf always fails on platforms without st_dev.
func DeviceOf(fs.FileInfo) (uint64, bool) { return 0, false }

// InodeOf always fails on platforms without st_ino.
func InodeOf(fs.FileInfo) (uint64, bool) { return 0, false }
