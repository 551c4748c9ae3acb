// Package prune keeps a grid-search output directory from growing without bound.
//
// The directory is treated as a rolling log: entries are timestamp-named result files or
// archive directories, and only the most recent contiguous burst of activity is kept. Walking
// from the newest entry to the oldest, the first gap in creation time larger than the
// threshold (the sweep was paused and later resumed) is the break point; everything from the
// break point on is deleted.
package prune

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/aristath/gridsweep/internal/fsutil"
	"github.com/aristath/gridsweep/internal/utils"
	"github.com/rs/zerolog"
)

// PrefixDigits is the number of leading digits an entry name needs to be a prune candidate.
const PrefixDigits = 4

// NoBreakPoint is the break-point index reported when no gap exceeds the threshold.
const NoBreakPoint = -1

// ErrNoCandidates is returned when a directory holds no timestamp-named entries.
var ErrNoCandidates = errors.New("no prune candidates")

// TimeSource reports the creation time of a path.
type TimeSource func(path string) (time.Time, error)

// Candidate is a timestamp-named directory entry and its creation time.
type Candidate struct {
	Name    string
	Created time.Time
}

// Result describes a prune run.
type Result struct {
	// BreakPoint is the index into the newest-first candidate list where deletion started,
	// or NoBreakPoint.
	BreakPoint int      `json:"break_point"`
	Kept       []string `json:"kept"`
	Deleted    []string `json:"deleted"`
}

// Pruner deletes stale entries from a sweep directory.
type Pruner struct {
	times TimeSource
	log   zerolog.Logger
}

// NewPruner creates a pruner that reads creation times from the filesystem.
func NewPruner(log zerolog.Logger) *Pruner {
	return NewPrunerWithTimeSource(CreationTime, log)
}

// NewPrunerWithTimeSource creates a pruner with a custom creation-time source.
func NewPrunerWithTimeSource(times TimeSource, log zerolog.Logger) *Pruner {
	return &Pruner{
		times: times,
		log:   log.With().Str("service", "prune").Logger(),
	}
}

// Candidates returns the timestamp-named entries of dir sorted newest first by creation time.
// Entries created at the same instant are ordered by name, descending.
func (p *Pruner) Candidates(dir string) ([]Candidate, error) {
	entries, err := fsutil.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	for _, entry := range entries {
		if !hasNumericPrefix(entry.Name()) {
			continue
		}

		created, err := p.times(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read creation time: %w", err)
		}
		candidates = append(candidates, Candidate{Name: entry.Name(), Created: created})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Created.Equal(candidates[j].Created) {
			return candidates[i].Name > candidates[j].Name
		}
		return candidates[i].Created.After(candidates[j].Created)
	})

	return candidates, nil
}

// Prune deletes every candidate in dir older than the most recent contiguous cluster, where
// consecutive entries of a cluster were created at most maxGap apart.
//
// When no gap exceeds maxGap nothing is deleted. A directory without candidates returns
// ErrNoCandidates. Deletion failures do not stop the run; they are joined into the returned
// error alongside a Result describing what was actually removed.
func (p *Pruner) Prune(dir string, maxGap time.Duration) (*Result, error) {
	timer := utils.NewTimer("prune", p.log)
	defer timer.Stop()

	candidates, err := p.Candidates(dir)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoCandidates, dir)
	}

	times := make([]time.Time, len(candidates))
	for i, c := range candidates {
		times[i] = c.Created
	}

	breakPoint, found := FindBreakPoint(times, maxGap)
	result := &Result{BreakPoint: breakPoint}

	keep := len(candidates)
	if found {
		keep = breakPoint
	}
	for _, c := range candidates[:keep] {
		result.Kept = append(result.Kept, c.Name)
	}

	var errs []error
	for _, c := range candidates[keep:] {
		if err := os.RemoveAll(filepath.Join(dir, c.Name)); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", c.Name, err))
			result.Kept = append(result.Kept, c.Name)
			continue
		}
		result.Deleted = append(result.Deleted, c.Name)
	}

	p.log.Info().
		Str("dir", dir).
		Int("break_point", breakPoint).
		Int("deleted", len(result.Deleted)).
		Int("remaining", len(result.Kept)).
		Dur("elapsed", timer.Elapsed()).
		Msg("Pruned sweep directory")

	return result, errors.Join(errs...)
}

// FindBreakPoint scans creation times ordered newest first and returns the first index i
// where times[i-1] - times[i] exceeds maxGap. It returns (NoBreakPoint, false) when every gap
// is within maxGap.
func FindBreakPoint(times []time.Time, maxGap time.Duration) (int, bool) {
	for i := 1; i < len(times); i++ {
		if times[i-1].Sub(times[i]) > maxGap {
			return i, true
		}
	}
	return NoBreakPoint, false
}

func hasNumericPrefix(name string) bool {
	if len(name) < PrefixDigits {
		return false
	}
	for i := 0; i < PrefixDigits; i++ {
		if name[i] < '0' || name[i] > '9' {
			return false
		}
	}
	return true
}
