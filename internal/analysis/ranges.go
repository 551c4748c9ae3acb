package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aristath/gridsweep/internal/records"
	"github.com/aristath/gridsweep/internal/utils"
)

// Ranges maps a swept parameter to the values it took, one entry per distinct parameter row.
// Values are int64, uint64 or float64 as decoded; cells for records that lack the parameter
// are nil.
type Ranges map[string][]any

// Names returns the parameter names in sorted order.
func (r Ranges) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExtractRanges reports which numeric parameters vary across the records in dir and the
// values they took.
func (a *Analyzer) ExtractRanges(dir string) (Ranges, error) {
	defer utils.OperationTimer("extract_ranges", a.log)()

	loaded, err := a.store.Load(dir)
	if err != nil {
		return nil, err
	}

	ranges := RangesOf(loaded.Records)

	a.log.Debug().
		Int("records", loaded.Len()).
		Strs("params", ranges.Names()).
		Msg("Extracted parameter ranges")

	return ranges, nil
}

// RangesOf is the pure part of ExtractRanges.
//
// The records' params form a sparse table with one row per record. Columns holding any
// non-numeric value (string, bool, list, map) are dropped, as are columns whose cells are all
// equal. The surviving columns are deduplicated row-wise, keeping first occurrences in order.
func RangesOf(entries []records.Entry) Ranges {
	columns := numericColumns(entries)

	table := make(map[string][]any, len(columns))
	var kept []string
	for _, name := range columns {
		cells := make([]any, len(entries))
		for i, entry := range entries {
			if v, ok := entry.Record.Param(name); ok {
				cells[i], _ = normalize(v)
			}
		}
		if varies(cells) {
			table[name] = cells
			kept = append(kept, name)
		}
	}

	ranges := make(Ranges, len(kept))
	if len(kept) == 0 {
		return ranges
	}

	seen := make(map[string]bool, len(entries))
	for i := range entries {
		key := rowKey(table, kept, i)
		if seen[key] {
			continue
		}
		seen[key] = true
		for _, name := range kept {
			ranges[name] = append(ranges[name], table[name][i])
		}
	}

	return ranges
}

// numericColumns returns, in first-seen order, the parameter names whose every present value
// is numeric.
func numericColumns(entries []records.Entry) []string {
	var order []string
	isNumeric := make(map[string]bool)

	for _, entry := range entries {
		for _, name := range entry.Record.ParamNames() {
			ok := numeric(entry.Record.Params[name])
			prev, seen := isNumeric[name]
			if !seen {
				order = append(order, name)
				isNumeric[name] = ok
				continue
			}
			isNumeric[name] = prev && ok
		}
	}

	columns := order[:0]
	for _, name := range order {
		if isNumeric[name] {
			columns = append(columns, name)
		}
	}
	return columns
}

func varies(cells []any) bool {
	first := cellKey(cells[0])
	for _, c := range cells[1:] {
		if cellKey(c) != first {
			return true
		}
	}
	return false
}

func rowKey(table map[string][]any, columns []string, row int) string {
	var b strings.Builder
	for _, name := range columns {
		key := cellKey(table[name][row])
		if f, ok := key.(float64); ok && f == 0 {
			// -0 and +0 are the same value
			key = 0.0
		}
		fmt.Fprintf(&b, "%T:%v|", key, key)
	}
	return b.String()
}
