package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/aristath/gridsweep/internal/procs"
	"github.com/spf13/cobra"
)

func (a *app) procsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "procs",
		Short: "List worker processes, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := a.wire(cmd)
			if err != nil {
				return err
			}

			processes, err := procs.Candidates(cmd.Context(), container.Procs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.jsonOut {
				return writeJSON(out, processes)
			}

			tw := newTable(out)
			fmt.Fprintln(tw, "PID\tSTARTED\tNAME")
			for _, p := range processes {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", p.PID, p.Created.Local().Format(time.DateTime), p.Name)
			}
			return tw.Flush()
		},
	}
}

func (a *app) killLatestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kill-latest",
		Short: "Terminate the most recently started worker process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := a.wire(cmd)
			if err != nil {
				return err
			}

			p, err := procs.TerminateLatest(cmd.Context(), container.Procs)
			if errors.Is(err, procs.ErrNoProcess) {
				fmt.Fprintln(cmd.OutOrStdout(), "No worker process running")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Terminated %s (pid %d)\n", p.Name, p.PID)
			return nil
		},
	}
}
