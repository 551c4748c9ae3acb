// Package main is the entry point for sweepctl, the maintenance tool for grid-search result
// directories. It summarizes sweeps, archives and prunes their output, manages worker processes
// and, in watch mode, runs archive and prune on a schedule.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, &app{}, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}
