package testing

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/aristath/gridsweep/internal/records"
	"github.com/rs/zerolog"
)

// NewRecord builds a result record with a single Sharpe ratio metric.
func NewRecord(params map[string]any, sharpe float64) records.Record {
	return records.Record{
		Params:    params,
		PerfStats: map[string]any{"Sharpe ratio": sharpe},
	}
}

// NewSweepFixtures returns a small learning-rate/window grid with deterministic Sharpe ratios.
func NewSweepFixtures() []records.Record {
	return []records.Record{
		NewRecord(map[string]any{"lr": 0.1, "window": 20, "mode": "fast"}, 1.0),
		NewRecord(map[string]any{"lr": 0.1, "window": 40, "mode": "fast"}, 2.0),
		NewRecord(map[string]any{"lr": 0.2, "window": 20, "mode": "fast"}, 5.0),
		NewRecord(map[string]any{"lr": 0.2, "window": 40, "mode": "fast"}, 3.0),
	}
}

// WriteSweep writes recs into dir as run_000.msgpack, run_001.msgpack, ... and returns the
// paths written.
func WriteSweep(t *testing.T, dir string, recs ...records.Record) []string {
	t.Helper()

	store := records.NewStore(zerolog.Nop())
	paths := make([]string, 0, len(recs))
	for i, rec := range recs {
		path := filepath.Join(dir, fmt.Sprintf("run_%03d.msgpack", i))
		if err := store.Write(path, rec); err != nil {
			t.Fatalf("Failed to write record %s: %v", path, err)
		}
		paths = append(paths, path)
	}
	return paths
}

// WriteJunk writes a non-record file into dir, the kind of stray output a sweep leaves behind.
func WriteJunk(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("Traceback (most recent call last):\n"), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}
