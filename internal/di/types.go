// Package di provides dependency injection type definitions.
//
// The Container holds every long-lived component of the maintenance tool. Commands and the
// watch loop take what they need from it instead of constructing components themselves.
package di

import (
	"github.com/aristath/gridsweep/internal/analysis"
	"github.com/aristath/gridsweep/internal/archive"
	"github.com/aristath/gridsweep/internal/database"
	"github.com/aristath/gridsweep/internal/ledger"
	"github.com/aristath/gridsweep/internal/offload"
	"github.com/aristath/gridsweep/internal/procs"
	"github.com/aristath/gridsweep/internal/prune"
	"github.com/aristath/gridsweep/internal/records"
	"github.com/aristath/gridsweep/internal/scheduler"
)

// Container holds all application dependencies
type Container struct {
	// Databases
	LedgerDB *database.DB

	// Repositories
	LedgerRepo *ledger.Repository

	// Services
	Store     *records.Store
	Analyzer  *analysis.Analyzer
	Pruner    *prune.Pruner
	Archiver  *archive.Archiver
	Procs     procs.Manager
	Offloader *offload.Offloader // nil when offloading is disabled

	// Background
	Scheduler *scheduler.Scheduler
}

// JobInstances holds the maintenance jobs so they can be run on demand
type JobInstances struct {
	Prune   *scheduler.PruneJob
	Archive *scheduler.ArchiveJob
}

// Close releases the container's databases
func (c *Container) Close() error {
	if c.LedgerDB == nil {
		return nil
	}
	return c.LedgerDB.Close()
}
