package main

import (
	"fmt"

	"github.com/aristath/gridsweep/internal/fsutil"
	"github.com/spf13/cobra"
)

func (a *app) mkdirsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mkdirs <path>...",
		Short: "Create directories, including parents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return fsutil.MakePaths(args...)
		},
	}
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <path>...",
		Short: "Remove files or directory trees; missing paths are ignored",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := fsutil.RemovePaths(a.log, args...)
			for _, path := range removed {
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", path)
			}
			return err
		},
	}
}

func (a *app) dumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <file> <text>...",
		Short: "Write the given text fragments to a file back to back",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return fsutil.WriteText(args[0], args[1:]...)
		},
	}
}
