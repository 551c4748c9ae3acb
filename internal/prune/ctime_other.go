//go:build !linux

package prune

import (
	"fmt"
	"os"
	"time"
)

// CreationTime returns when path was created. Without statx the modification time is the
// closest portable approximation.
func CreationTime(path string) (time.Time, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return info.ModTime(), nil
}
