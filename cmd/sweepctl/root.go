package main

import (
	"context"
	"io"

	"github.com/aristath/gridsweep/internal/config"
	"github.com/aristath/gridsweep/internal/di"
	"github.com/aristath/gridsweep/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app carries the state shared by all commands of one invocation.
type app struct {
	dir     string
	jsonOut bool

	cfg       *config.Config
	log       zerolog.Logger
	container *di.Container
	jobs      *di.JobInstances
}

// run executes the command line and releases the container whether or not the command
// succeeded.
func run(ctx context.Context, a *app, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if closeErr := a.teardown(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "sweepctl",
		Short: "Inspect and maintain grid-search result directories",
		Long: `sweepctl works on the directory a parameter grid search writes its result records into.

It averages a performance metric per parameter value, lists the parameters that were
actually swept, archives finished sweeps, prunes stale output and stops worker processes.
Configuration comes from the environment (or a .env file); see SWEEP_DIR, SWEEP_DATA_DIR,
PRUNE_MAX_GAP_SECONDS and friends.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.dir, "dir", "", "sweep directory (overrides SWEEP_DIR)")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "print JSON instead of tables")

	root.AddCommand(
		a.aggregateCmd(),
		a.rangesCmd(),
		a.paramsCmd(),
		a.archiveCmd(),
		a.pruneCmd(),
		a.historyCmd(),
		a.watchCmd(),
		a.mkdirsCmd(),
		a.rmCmd(),
		a.dumpCmd(),
		a.procsCmd(),
		a.killLatestCmd(),
	)

	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.dir != "" {
		cfg.SweepDir = a.dir
	}
	a.cfg = cfg

	a.log = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		Out:    cmd.ErrOrStderr(),
	})
	logger.SetGlobalLogger(a.log)

	return nil
}

// wire builds the dependency container on first use. Commands that only touch paths never
// open the ledger database.
func (a *app) wire(cmd *cobra.Command) (*di.Container, error) {
	if a.container != nil {
		return a.container, nil
	}

	container, jobs, err := di.Wire(cmd.Context(), a.cfg, a.log)
	if err != nil {
		return nil, err
	}
	a.container = container
	a.jobs = jobs

	return container, nil
}

func (a *app) teardown() error {
	if a.container == nil {
		return nil
	}
	err := a.container.Close()
	a.container = nil
	return err
}
