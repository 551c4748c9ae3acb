// Package fsutil contains the plain path helpers used around a sweep: directory setup,
// path removal and text dumps.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// ErrDirNotFound is returned by every directory-based operation when its target directory
// does not exist (or is not a directory).
var ErrDirNotFound = errors.New("directory not found")

// CheckDir returns an error wrapping ErrDirNotFound when dir does not exist or is not a
// directory.
func CheckDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrDirNotFound, dir)
		}
		return fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrDirNotFound, dir)
	}
	return nil
}

// ReadDir lists dir, translating a missing directory into ErrDirNotFound.
func ReadDir(dir string) ([]fs.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDirNotFound, dir)
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	return entries, nil
}

// MakePaths creates every path that does not exist yet, including parents.
// Existing directories are left alone, so calling it repeatedly is safe.
func MakePaths(paths ...string) error {
	for _, path := range paths {
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
	}
	return nil
}

// RemovePaths deletes every given path that exists (files and whole directories) and returns
// the ones it removed. Paths that do not exist are ignored.
func RemovePaths(log zerolog.Logger, paths ...string) ([]string, error) {
	var removed []string
	for _, path := range paths {
		if _, err := os.Lstat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return removed, fmt.Errorf("failed to stat %s: %w", path, err)
		}

		if err := os.RemoveAll(path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", path, err)
		}

		log.Info().Str("path", path).Msg("Removed path")
		removed = append(removed, path)
	}
	return removed, nil
}

// WriteText writes parts to filename back to back, replacing any previous content.
func WriteText(filename string, parts ...string) error {
	if err := os.WriteFile(filename, []byte(strings.Join(parts, "")), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}
