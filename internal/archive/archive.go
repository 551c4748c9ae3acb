// Package archive moves the result records of a finished sweep into a timestamped
// sub-directory so the next sweep starts from an empty working directory.
package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/aristath/gridsweep/internal/fsutil"
	"github.com/aristath/gridsweep/internal/records"
	"github.com/aristath/gridsweep/internal/utils"
	"github.com/rs/zerolog"
)

// DirLayout is the time layout of archive directory names (minute resolution).
const DirLayout = "2006_01_02_1504"

// ErrArchiveExists is returned when the archive directory for the current minute already
// exists. Archiving twice within a minute would otherwise merge two batches.
var ErrArchiveExists = errors.New("archive directory already exists")

// Result describes an archive run.
type Result struct {
	Dir     string   // Newly created archive directory
	Moved   []string // Record files relocated into Dir
	Skipped []string // Entries left in place because they are not records
}

// Archiver relocates result records into timestamped directories.
//
// Archiver does no locking; running two archives against the same base path at once, or
// archiving while a sweep is still writing, is the caller's responsibility to prevent.
type Archiver struct {
	store *records.Store
	now   func() time.Time
	log   zerolog.Logger
}

// NewArchiver creates a new archiver
func NewArchiver(store *records.Store, log zerolog.Logger) *Archiver {
	return &Archiver{
		store: store,
		now:   time.Now,
		log:   log.With().Str("service", "archive").Logger(),
	}
}

// WithClock replaces the clock used to name archive directories.
func (a *Archiver) WithClock(now func() time.Time) *Archiver {
	a.now = now
	return a
}

// Archive creates basePath/<YYYY_MM_DD_HHMM> and moves every file in basePath that decodes as a
// result record into it. Files that are not records stay where they are.
func (a *Archiver) Archive(basePath string) (*Result, error) {
	defer utils.OperationTimer("archive", a.log)()

	if err := fsutil.CheckDir(basePath); err != nil {
		return nil, err
	}

	name := a.now().Format(DirLayout)
	newDir := filepath.Join(basePath, name)
	if err := os.Mkdir(newDir, 0755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrArchiveExists, newDir)
		}
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	entries, err := fsutil.ReadDir(basePath)
	if err != nil {
		return nil, err
	}

	result := &Result{Dir: newDir}
	for _, entry := range entries {
		if entry.Name() == name {
			continue
		}
		if !entry.Type().IsRegular() {
			result.Skipped = append(result.Skipped, entry.Name())
			continue
		}

		src := filepath.Join(basePath, entry.Name())
		if _, err := a.store.ReadFile(src); err != nil {
			result.Skipped = append(result.Skipped, entry.Name())
			continue
		}

		if err := os.Rename(src, filepath.Join(newDir, entry.Name())); err != nil {
			return result, fmt.Errorf("failed to move %s into archive: %w", entry.Name(), err)
		}
		result.Moved = append(result.Moved, entry.Name())
	}

	a.log.Info().
		Str("dir", newDir).
		Int("moved", len(result.Moved)).
		Int("skipped", len(result.Skipped)).
		Msg("Archived sweep results")

	return result, nil
}
