package di

import (
	"fmt"

	"github.com/aristath/gridsweep/internal/config"
	"github.com/aristath/gridsweep/internal/scheduler"
	"github.com/rs/zerolog"
)

// RegisterJobs creates the maintenance jobs and registers those with a schedule
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	// An unset *offload.Offloader must not become a non-nil interface
	var offloader scheduler.Offloader
	if container.Offloader != nil {
		offloader = container.Offloader
	}

	jobs := &JobInstances{
		Prune:   scheduler.NewPruneJob(container.Pruner, container.LedgerRepo, cfg.SweepDir, cfg.PruneMaxGap(), log),
		Archive: scheduler.NewArchiveJob(container.Archiver, container.LedgerRepo, offloader, cfg.SweepDir, log),
	}

	container.Scheduler = scheduler.New(log)

	if cfg.ArchiveSchedule != "" {
		if err := container.Scheduler.AddJob(cfg.ArchiveSchedule, jobs.Archive); err != nil {
			return nil, fmt.Errorf("failed to register archive job: %w", err)
		}
	}

	if cfg.PruneSchedule != "" {
		if err := container.Scheduler.AddJob(cfg.PruneSchedule, jobs.Prune); err != nil {
			return nil, fmt.Errorf("failed to register prune job: %w", err)
		}
	}

	return jobs, nil
}
