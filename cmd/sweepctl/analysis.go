package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) aggregateCmd() *cobra.Command {
	var metric string

	cmd := &cobra.Command{
		Use:   "aggregate <param>",
		Short: "Average a metric per distinct value of a parameter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := a.wire(cmd)
			if err != nil {
				return err
			}
			if metric == "" {
				metric = a.cfg.Metric
			}

			rows, err := container.Analyzer.Aggregate(args[0], a.cfg.SweepDir, metric)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.jsonOut {
				view := make([]map[string]any, 0, len(rows))
				for _, row := range rows {
					view = append(view, map[string]any{
						"value": jsonValue(row.Value),
						"mean":  jsonValue(row.Mean),
						"count": row.Count,
					})
				}
				return writeJSON(out, view)
			}

			tw := newTable(out)
			fmt.Fprintf(tw, "%s\t%s\tRUNS\n", strings.ToUpper(args[0]), strings.ToUpper(metric))
			for _, row := range rows {
				fmt.Fprintf(tw, "%v\t%s\t%d\n", row.Value, formatValue(row.Mean), row.Count)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&metric, "metric", "", "performance metric to average (default SWEEP_METRIC)")
	return cmd
}

func (a *app) rangesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ranges",
		Short: "List the numeric parameters that vary across the sweep",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := a.wire(cmd)
			if err != nil {
				return err
			}

			ranges, err := container.Analyzer.ExtractRanges(a.cfg.SweepDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.jsonOut {
				view := make(map[string][]any, len(ranges))
				for name, cells := range ranges {
					values := make([]any, len(cells))
					for i, v := range cells {
						values[i] = jsonValue(v)
					}
					view[name] = values
				}
				return writeJSON(out, view)
			}

			for _, name := range ranges.Names() {
				values := make([]string, len(ranges[name]))
				for i, v := range ranges[name] {
					values[i] = formatValue(v)
				}
				fmt.Fprintf(out, "%s: %s\n", name, strings.Join(values, ", "))
			}
			return nil
		},
	}
}

func (a *app) paramsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "params <record-file>",
		Short: "Print the parameter names stored in a result record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := a.wire(cmd)
			if err != nil {
				return err
			}

			names, err := container.Store.ParamNames(args[0])
			if err != nil {
				return err
			}

			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), names)
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
