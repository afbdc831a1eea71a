package persistence

import (
	"context"
	"log/slog"

	"manestream/internal/core"
)

// MigrationUpRunner applies every pending migration and exits.
type MigrationUpRunner struct {
	Logger   *slog.Logger
	Migrator core.Migrator
}

func (m *MigrationUpRunner) Run(ctx context.Context) error {
	m.Logger.Info("Running migrations up")
	return m.Migrator.Up(ctx)
}

// MigrationDownRunner rolls back the most recent migration and exits.
type MigrationDownRunner struct {
	Logger   *slog.Logger
	Migrator core.Migrator
}

func (m *MigrationDownRunner) Run(ctx context.Context) error {
	m.Logger.Info("Rolling back one migration")
	return m.Migrator.Down(ctx)
}
