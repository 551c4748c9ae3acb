package di

import (
	"fmt"

	"github.com/aristath/gridsweep/internal/config"
	"github.com/aristath/gridsweep/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens the ledger database and applies its schema
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// ledger.db - History of archive and prune runs
	ledgerDB, err := database.New(database.Config{
		Path:    cfg.LedgerPath(),
		Profile: database.ProfileLedger,
		Name:    "ledger",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ledger database: %w", err)
	}

	if err := ledgerDB.Migrate(); err != nil {
		ledgerDB.Close()
		return nil, fmt.Errorf("failed to migrate ledger database: %w", err)
	}
	container.LedgerDB = ledgerDB

	log.Debug().Str("path", ledgerDB.Path()).Msg("Ledger database ready")

	return container, nil
}
