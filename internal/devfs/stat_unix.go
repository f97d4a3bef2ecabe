//go:build unix

package devfs

import (
	"io/fs"
	"syscall"

	"golang.org/x/sys/unix"
)

func deviceOfPath(path string) (uint64, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, err
	}
	return uint64(st.Dev), nil
}

// DeviceOf extracts st_dev from a FileInfo produced by os.Lstat/os.Stat.
func DeviceOf(fi fs.FileInfo) (uint64, bool) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	return uint64(st.Dev), true
}

// InodeOf extracts st_ino from a FileInfo produced by os.Lstat/os.Stat.
func InodeOf(fi fs.FileInfo) (uint64, bool) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	return uint64(st.Ino), true
}
