package prune

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aristath/gridsweep/internal/fsutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// fixture creates the named entries in dir and returns a TimeSource that reports each entry as
// created the given number of minutes before base.
func fixture(t *testing.T, dir string, minutesAgo map[string]int) TimeSource {
	t.Helper()
	for name := range minutesAgo {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0644))
	}
	return func(path string) (time.Time, error) {
		m, ok := minutesAgo[filepath.Base(path)]
		if !ok {
			return time.Time{}, errors.New("unexpected path " + path)
		}
		return base.Add(-time.Duration(m) * time.Minute), nil
	}
}

func remaining(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestFindBreakPoint(t *testing.T) {
	at := func(minutesAgo ...int) []time.Time {
		out := make([]time.Time, len(minutesAgo))
		for i, m := range minutesAgo {
			out[i] = base.Add(-time.Duration(m) * time.Minute)
		}
		return out
	}

	testCases := []struct {
		name      string
		times     []time.Time
		maxGap    time.Duration
		wantIndex int
		wantFound bool
	}{
		{"gap between 2 and 10", at(0, 1, 2, 10, 11), 5 * time.Minute, 3, true},
		{"first gap wins", at(0, 10, 20, 30), 5 * time.Minute, 1, true},
		{"no gap", at(0, 1, 2, 3), 5 * time.Minute, NoBreakPoint, false},
		{"gap equal to threshold is kept", at(0, 5, 10), 5 * time.Minute, NoBreakPoint, false},
		{"single entry", at(0), time.Minute, NoBreakPoint, false},
		{"empty", nil, time.Minute, NoBreakPoint, false},
		{"zero threshold", at(0, 0, 1), 0, 2, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			idx, found := FindBreakPoint(tc.times, tc.maxGap)
			assert.Equal(t, tc.wantIndex, idx)
			assert.Equal(t, tc.wantFound, found)
		})
	}
}

func TestPrune_DeletesEntriesOlderThanRecentCluster(t *testing.T) {
	dir := t.TempDir()
	times := fixture(t, dir, map[string]int{
		"2024_05_01_1200": 0,
		"2024_05_01_1159": 1,
		"2024_05_01_1158": 2,
		"2024_05_01_1150": 10,
		"2024_05_01_1149": 11,
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("keep me"), 0644))

	pruner := NewPrunerWithTimeSource(times, zerolog.Nop())
	result, err := pruner.Prune(dir, 300*time.Second)
	require.NoError(t, err)

	assert.Equal(t, 3, result.BreakPoint)
	assert.Equal(t, []string{"2024_05_01_1200", "2024_05_01_1159", "2024_05_01_1158"}, result.Kept)
	assert.Equal(t, []string{"2024_05_01_1150", "2024_05_01_1149"}, result.Deleted)
	assert.ElementsMatch(t,
		[]string{"2024_05_01_1158", "2024_05_01_1159", "2024_05_01_1200", "README.md"},
		remaining(t, dir))
}

func TestPrune_Idempotent(t *testing.T) {
	dir := t.TempDir()
	times := fixture(t, dir, map[string]int{
		"1000_a": 0, "1001_b": 1, "1002_c": 2, "1003_d": 10, "1004_e": 11,
	})
	pruner := NewPrunerWithTimeSource(times, zerolog.Nop())

	first, err := pruner.Prune(dir, 5*time.Minute)
	require.NoError(t, err)
	assert.Len(t, first.Deleted, 2)

	second, err := pruner.Prune(dir, 5*time.Minute)
	require.NoError(t, err)
	assert.Empty(t, second.Deleted)
	assert.Equal(t, NoBreakPoint, second.BreakPoint)
	assert.ElementsMatch(t, first.Kept, second.Kept)
}

func TestPrune_OrdersByCreationTimeNotName(t *testing.T) {
	dir := t.TempDir()
	// Descending name order would put 9999_z first even though it is the oldest entry
	times := fixture(t, dir, map[string]int{
		"9999_z": 60,
		"1111_a": 0,
		"5555_m": 1,
	})
	pruner := NewPrunerWithTimeSource(times, zerolog.Nop())

	result, err := pruner.Prune(dir, 5*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, []string{"1111_a", "5555_m"}, result.Kept)
	assert.Equal(t, []string{"9999_z"}, result.Deleted)
}

func TestPrune_NoBreakPointDeletesNothing(t *testing.T) {
	dir := t.TempDir()
	times := fixture(t, dir, map[string]int{"2024_a": 0, "2024_b": 1, "2024_c": 2})
	pruner := NewPrunerWithTimeSource(times, zerolog.Nop())

	result, err := pruner.Prune(dir, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, NoBreakPoint, result.BreakPoint)
	assert.Empty(t, result.Deleted)
	assert.Len(t, result.Kept, 3)
	assert.Len(t, remaining(t, dir), 3)
}

func TestPrune_RemovesArchiveDirectories(t *testing.T) {
	dir := t.TempDir()
	recent := filepath.Join(dir, "2024_05_01_1200")
	stale := filepath.Join(dir, "2024_04_01_0900")
	require.NoError(t, os.MkdirAll(recent, 0755))
	require.NoError(t, os.MkdirAll(stale, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(stale, "run_001.msgpack"), []byte("x"), 0644))

	times := func(path string) (time.Time, error) {
		if filepath.Base(path) == "2024_05_01_1200" {
			return base, nil
		}
		return base.AddDate(0, -1, 0), nil
	}

	result, err := NewPrunerWithTimeSource(times, zerolog.Nop()).Prune(dir, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, []string{"2024_04_01_0900"}, result.Deleted)
	assert.DirExists(t, recent)
	assert.NoDirExists(t, stale)
}

func TestPrune_IgnoresEntriesWithoutNumericPrefix(t *testing.T) {
	dir := t.TempDir()
	times := fixture(t, dir, map[string]int{"2024_a": 0, "2024_b": 120})
	for _, name := range []string{"abc_2024", "12_short", "grid.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	result, err := NewPrunerWithTimeSource(times, zerolog.Nop()).Prune(dir, time.Minute)
	require.NoError(t, err)

	assert.Equal(t, []string{"2024_b"}, result.Deleted)
	assert.ElementsMatch(t, []string{"2024_a", "abc_2024", "12_short", "grid.log"}, remaining(t, dir))
}

func TestPrune_NoCandidates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0644))

	_, err := NewPruner(zerolog.Nop()).Prune(dir, time.Minute)
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestPrune_MissingDirectory(t *testing.T) {
	_, err := NewPruner(zerolog.Nop()).Prune(filepath.Join(t.TempDir(), "missing"), time.Minute)
	assert.ErrorIs(t, err, fsutil.ErrDirNotFound)
}

func TestPrune_TimeSourceFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024_a"), nil, 0644))
	failing := func(string) (time.Time, error) { return time.Time{}, errors.New("stat failed") }

	_, err := NewPrunerWithTimeSource(failing, zerolog.Nop()).Prune(dir, time.Minute)
	assert.ErrorContains(t, err, "stat failed")
	assert.Len(t, remaining(t, dir), 1)
}

func TestCreationTime_RealFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "2024_real")
	before := time.Now().Add(-time.Minute)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	created, err := CreationTime(path)
	require.NoError(t, err)
	assert.True(t, created.After(before), "creation time %s should be after %s", created, before)

	_, err = CreationTime(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestPrune_RealFilesystemKeepsFreshCluster(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"2024_a", "2024_b", "2024_c"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	result, err := NewPruner(zerolog.Nop()).Prune(dir, time.Hour)
	require.NoError(t, err)
	assert.Empty(t, result.Deleted)
	assert.Len(t, result.Kept, 3)
}
