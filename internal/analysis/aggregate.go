// Package analysis summarizes a sweep directory: metric averages per parameter value and the
// set of numeric parameter dimensions that were actually swept.
package analysis

import (
	"github.com/aristath/gridsweep/internal/records"
	"github.com/aristath/gridsweep/internal/utils"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
)

// DefaultMetric is the performance metric aggregated when none is given.
const DefaultMetric = "Sharpe ratio"

// Row is one aggregation row: a distinct parameter value and the mean of the metric over the
// records that ran with it.
type Row struct {
	Value any     `json:"value"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// Analyzer computes summaries over record directories.
type Analyzer struct {
	store *records.Store
	log   zerolog.Logger
}

// NewAnalyzer creates a new analyzer reading through store.
func NewAnalyzer(store *records.Store, log zerolog.Logger) *Analyzer {
	return &Analyzer{
		store: store,
		log:   log.With().Str("service", "analysis").Logger(),
	}
}

// Aggregate groups the records in dir by the value of param and averages metric per group.
// An empty metric selects DefaultMetric. Rows follow the order in which values were first seen.
func (a *Analyzer) Aggregate(param, dir, metric string) ([]Row, error) {
	defer utils.OperationTimer("aggregate", a.log)()

	loaded, err := a.store.Load(dir)
	if err != nil {
		return nil, err
	}

	rows := AggregateRecords(loaded.Records, param, metric)

	a.log.Debug().
		Str("param", param).
		Str("metric", metricOrDefault(metric)).
		Int("records", loaded.Len()).
		Int("rows", len(rows)).
		Msg("Aggregated sweep results")

	return rows, nil
}

// AggregateRecords is the pure part of Aggregate.
//
// A record contributes only when it carries both param and metric and the parameter value is
// a scalar (number, string or bool); anything else is skipped.
func AggregateRecords(entries []records.Entry, param, metric string) []Row {
	metric = metricOrDefault(metric)

	type group struct {
		value  any
		values []float64
	}

	// NaN keys never match an existing map entry, so every NaN starts its own group;
	// order holds the groups themselves rather than their keys.
	var order []*group
	groups := make(map[any]*group)

	for _, entry := range entries {
		raw, ok := entry.Record.Param(param)
		if !ok {
			continue
		}
		observed, ok := entry.Record.Metric(metric)
		if !ok {
			continue
		}
		key, ok := groupKey(raw)
		if !ok {
			continue
		}

		g, seen := groups[key]
		if !seen {
			value, _ := normalize(raw)
			g = &group{value: value}
			groups[key] = g
			order = append(order, g)
		}
		g.values = append(g.values, observed)
	}

	rows := make([]Row, 0, len(order))
	for _, g := range order {
		rows = append(rows, Row{
			Value: g.value,
			Mean:  stat.Mean(g.values, nil),
			Count: len(g.values),
		})
	}

	return rows
}

func metricOrDefault(metric string) string {
	if metric == "" {
		return DefaultMetric
	}
	return metric
}
