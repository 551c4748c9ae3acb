// Package records reads and writes the result records a parameter sweep leaves behind.
//
// Every backtest run of a single parameter configuration persists one record holding the
// parameters it ran with and the performance statistics it produced. Records are stored one
// per file in a flat sweep directory, encoded with msgpack. The directory may also contain
// unrelated or half-written files; readers skip those instead of failing.
package records

import (
	"errors"
	"sort"

	"github.com/aristath/gridsweep/internal/fsutil"
)

var (
	// ErrDirNotFound is returned when a record directory does not exist.
	ErrDirNotFound = fsutil.ErrDirNotFound
	// ErrNotRecord marks an entry that decoded but is not a result record (or is not a file).
	ErrNotRecord = errors.New("not a result record")
	// ErrCorrupt marks an entry whose bytes could not be decoded at all.
	ErrCorrupt = errors.New("corrupt record")
)

// Record is one persisted outcome of a single parameter configuration's backtest run.
type Record struct {
	// Params maps parameter name to value. Values may be numeric, bool, string or []any.
	Params map[string]any `msgpack:"params"`
	// PerfStats maps metric name (e.g. "Sharpe ratio") to its value. Backtests also store
	// non-numeric entries here (start dates, flags) and nil for metrics they could not compute.
	PerfStats map[string]any `msgpack:"perf_stats"`
}

// Param returns the value of a parameter and whether it is present.
func (r Record) Param(name string) (any, bool) {
	v, ok := r.Params[name]
	return v, ok
}

// Metric returns the value of a performance metric. It reports false when the metric is
// absent, nil or not a number.
func (r Record) Metric(name string) (float64, bool) {
	switch v := r.PerfStats[name].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	default:
		return 0, false
	}
}

// ParamNames returns the record's parameter names in sorted order.
func (r Record) ParamNames() []string {
	names := make([]string, 0, len(r.Params))
	for name := range r.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entry is a successfully decoded record together with the file name it was read from.
type Entry struct {
	Name   string
	Record Record
}

// Skip describes a directory entry that was not decoded, and why.
type Skip struct {
	Name string
	Err  error
}

// LoadResult is the outcome of reading a record directory.
// Records and Skipped together account for every entry in the directory.
type LoadResult struct {
	Records []Entry
	Skipped []Skip
}

// Len returns the number of decoded records.
func (r *LoadResult) Len() int {
	return len(r.Records)
}
