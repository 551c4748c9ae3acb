//go:build linux

package prune

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// CreationTime returns when path was created. Filesystems that record a birth time report it
// through statx; elsewhere the inode status-change time is used, which is what most
// tooling on Linux treats as "ctime".
func CreationTime(path string) (time.Time, error) {
	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, path, unix.AT_SYMLINK_NOFOLLOW, unix.STATX_BTIME|unix.STATX_CTIME, &stx)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if stx.Mask&unix.STATX_BTIME != 0 {
		return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec)), nil
	}
	return time.Unix(stx.Ctime.Sec, int64(stx.Ctime.Nsec)), nil
}
