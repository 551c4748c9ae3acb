package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/aristath/gridsweep/internal/prune"
	"github.com/spf13/cobra"
)

func (a *app) archiveCmd() *cobra.Command {
	var skipOffload bool

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Move the sweep's result records into a timestamped sub-directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := a.wire(cmd)
			if err != nil {
				return err
			}

			res, err := container.Archiver.Archive(a.cfg.SweepDir)
			if err != nil {
				return err
			}

			runID, err := container.LedgerRepo.RecordArchive(res)
			if err != nil {
				a.log.Warn().Err(err).Msg("Failed to record archive run")
			}

			var key string
			if container.Offloader != nil && !skipOffload && len(res.Moved) > 0 {
				key, err = container.Offloader.Offload(cmd.Context(), res.Dir)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if a.jsonOut {
				return writeJSON(out, map[string]any{
					"run_id":  runID,
					"dir":     res.Dir,
					"moved":   res.Moved,
					"skipped": res.Skipped,
					"key":     key,
				})
			}

			fmt.Fprintf(out, "Archived %d records into %s (%d left in place)\n", len(res.Moved), res.Dir, len(res.Skipped))
			if key != "" {
				fmt.Fprintf(out, "Uploaded %s\n", key)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipOffload, "no-offload", false, "do not upload the archive even if offloading is configured")
	return cmd
}

func (a *app) pruneCmd() *cobra.Command {
	var maxGap time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete everything older than the most recent burst of sweep output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := a.wire(cmd)
			if err != nil {
				return err
			}
			if maxGap <= 0 {
				maxGap = a.cfg.PruneMaxGap()
			}

			res, err := container.Pruner.Prune(a.cfg.SweepDir, maxGap)
			if errors.Is(err, prune.ErrNoCandidates) {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to prune")
				return nil
			}
			if err != nil {
				return err
			}

			if len(res.Deleted) > 0 {
				if _, err := container.LedgerRepo.RecordPrune(a.cfg.SweepDir, res); err != nil {
					a.log.Warn().Err(err).Msg("Failed to record prune run")
				}
			}

			out := cmd.OutOrStdout()
			if a.jsonOut {
				return writeJSON(out, res)
			}

			for _, name := range res.Deleted {
				fmt.Fprintf(out, "deleted %s\n", name)
			}
			fmt.Fprintf(out, "Kept %d, deleted %d\n", len(res.Kept), len(res.Deleted))
			return nil
		},
	}

	cmd.Flags().DurationVar(&maxGap, "max-gap", 0, "creation-time gap that ends the recent burst (default PRUNE_MAX_GAP_SECONDS)")
	return cmd
}

func (a *app) historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent archive and prune runs, or the entries of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := a.wire(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				entries, err := container.LedgerRepo.Entries(args[0])
				if err != nil {
					return err
				}
				if a.jsonOut {
					return writeJSON(out, entries)
				}
				tw := newTable(out)
				for _, e := range entries {
					fmt.Fprintf(tw, "%s\t%s\n", e.Action, e.Name)
				}
				return tw.Flush()
			}

			runs, err := container.LedgerRepo.Recent(limit)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(out, runs)
			}

			tw := newTable(out)
			fmt.Fprintln(tw, "ID\tKIND\tWHEN\tAFFECTED\tUNTOUCHED\tPATH")
			for _, run := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
					run.ID, run.Kind, run.CreatedAt.Local().Format(time.DateTime), run.Affected, run.Untouched, run.Path)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	return cmd
}

func (a *app) watchCmd() *cobra.Command {
	var runNow bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run archive and prune on their configured schedules until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := a.wire(cmd)
			if err != nil {
				return err
			}

			if runNow {
				if a.cfg.ArchiveSchedule != "" {
					if err := container.Scheduler.RunNow(a.jobs.Archive); err != nil {
						a.log.Error().Err(err).Msg("Initial archive failed")
					}
				}
				if err := container.Scheduler.RunNow(a.jobs.Prune); err != nil {
					a.log.Error().Err(err).Msg("Initial prune failed")
				}
			}

			container.Scheduler.Start()
			a.log.Info().Str("dir", a.cfg.SweepDir).Msg("Watching sweep directory")

			<-cmd.Context().Done()

			container.Scheduler.Stop()
			return nil
		},
	}

	cmd.Flags().BoolVar(&runNow, "run-now", false, "run the jobs once before waiting for the schedule")
	return cmd
}
