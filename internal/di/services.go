package di

import (
	"context"
	"fmt"

	"github.com/aristath/gridsweep/internal/analysis"
	"github.com/aristath/gridsweep/internal/archive"
	"github.com/aristath/gridsweep/internal/config"
	"github.com/aristath/gridsweep/internal/ledger"
	"github.com/aristath/gridsweep/internal/offload"
	"github.com/aristath/gridsweep/internal/procs"
	"github.com/aristath/gridsweep/internal/prune"
	"github.com/aristath/gridsweep/internal/records"
	"github.com/rs/zerolog"
)

// InitializeServices creates repositories and services on top of the opened databases
func InitializeServices(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.LedgerRepo = ledger.NewRepository(container.LedgerDB, log)

	container.Store = records.NewStore(log)
	container.Analyzer = analysis.NewAnalyzer(container.Store, log)
	container.Pruner = prune.NewPruner(log)
	container.Archiver = archive.NewArchiver(container.Store, log)
	container.Procs = procs.NewSystemManager(cfg.WorkerProcessName, log)

	if cfg.Offload.Enabled() {
		uploader, err := offload.NewS3Uploader(ctx, cfg.Offload)
		if err != nil {
			return fmt.Errorf("failed to create offload uploader: %w", err)
		}
		container.Offloader = offload.NewOffloader(uploader, cfg.Offload.Prefix, log)
		log.Info().Str("bucket", cfg.Offload.Bucket).Msg("Archive offloading enabled")
	}

	return nil
}
