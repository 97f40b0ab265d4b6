// Package app assembles the stores shared by the server and the operator CLI.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"medtransit/internal/directory"
	"medtransit/internal/platform/config"
	"medtransit/internal/platform/postgres"
	"medtransit/internal/transfer/generator"
	transferservice "medtransit/internal/transfer/service"
	transferstore "medtransit/internal/transfer/store"
)

// TransferStore holds schedules, status records and generation run markers.
type TransferStore interface {
	transferservice.Store
	generator.Store
}

// Stores is the persistence backing one process: Postgres when a database URL
// is configured, otherwise in memory.
type Stores struct {
	Transfer  TransferStore
	Tx        transferservice.StoreTx
	Directory transferservice.Directory

	db *sql.DB
}

// OpenStores connects and migrates Postgres, or builds in-memory stores with
// the directory loaded from the configured seed file.
func OpenStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	if cfg.Database.URL == "" {
		mem := transferstore.NewInMemory()
		dir := directory.NewInMemory()
		if cfg.Directory.SeedFile != "" {
			if err := dir.LoadSeedFile(cfg.Directory.SeedFile); err != nil {
				return nil, err
			}
		}
		logger.InfoContext(ctx, "no database configured, using in-memory stores",
			"directory_seed", cfg.Directory.SeedFile,
		)
		return &Stores{
			Transfer:  mem,
			Tx:        transferservice.NewMemoryTx(mem),
			Directory: dir,
		}, nil
	}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.InfoContext(ctx, "connected to postgres")
	return &Stores{
		Transfer:  transferstore.NewPostgres(db),
		Tx:        newTransferPostgresTx(db),
		Directory: directory.NewPostgres(db),
		db:        db,
	}, nil
}

// DB is the open pool, nil for in-memory stores.
func (s *Stores) DB() *sql.DB {
	return s.db
}

// Close releases the database pool, if any.
func (s *Stores) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
