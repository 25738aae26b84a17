// Package buildio loads the combined water-quality table and the fish
// measurements CSV into PostgreSQL. It follows a two-pass scheme: the first
// pass creates monitoring sites and records their IDs in a key-value store,
// the second pass streams observations and resolves site IDs from it.
package buildio

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oceandata/hydromon/internal/ent/build"
	"github.com/oceandata/hydromon/internal/ent/kv"
	"github.com/oceandata/hydromon/pkg/config"
	"github.com/oceandata/hydromon/pkg/io/modelio"
)

// buildio is a struct that implements build.Builder interface.
type buildio struct {
	db      *pgxpool.Pool
	cfg     config.Config
	kvSites kv.KeyVal
}

// New returns a new instance of Builder
func New(cfg config.Config, kvSites kv.KeyVal) (build.Builder, error) {
	var err error
	var db *pgxpool.Pool
	res := buildio{
		cfg:     cfg,
		kvSites: kvSites,
	}
	db, err = pgxConn(cfg)
	if err != nil {
		slog.Error("Cannot connect to database", "error", err)
		return nil, err
	}
	res.db = db
	err = res.resetDB()
	if err != nil {
		slog.Error("Cannot reset database", "error", err)
		return nil, err
	}
	err = res.migrate()
	if err != nil {
		slog.Error("Cannot migrate database", "error", err)
		return nil, err
	}
	return &res, nil
}

// Build reads the combined CSV files and imports their data to Postgres.
func (b *buildio) Build() error {
	var err error
	defer b.db.Close()

	if err = b.importSites(); err != nil {
		slog.Error("Cannot import monitoring sites", "error", err)
		return err
	}
	if err = b.importObservations(); err != nil {
		slog.Error("Cannot import observations", "error", err)
		return err
	}
	if err = b.importFish(); err != nil {
		slog.Error("Cannot import fish measurements", "error", err)
		return err
	}

	return nil
}

func (b *buildio) migrate() error {
	grm, err := gormConn(b.cfg)
	if err != nil {
		return err
	}
	defer grm.Close()

	slog.Info("Running initial database migrations")
	m := modelio.New(grm)
	err = m.Migrate()
	if err != nil {
		slog.Error("Cannot migrate database", "error", err)
		return err
	}
	slog.Info("Database migrations completed")
	return nil
}
