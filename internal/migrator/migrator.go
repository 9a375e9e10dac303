package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

// Migrator applies the embedded schema migrations for bookings, vehicles and profiles.
type Migrator struct {
	db         *sql.DB
	migrations fs.FS
	logger     *logrus.Logger
}

func NewMigrator(db *sql.DB, migrations fs.FS, logger *logrus.Logger) *Migrator {
	return &Migrator{
		db:         db,
		migrations: migrations,
		logger:     logger,
	}
}

// Up applies all pending migrations and returns the resulting schema version.
func (m *Migrator) Up(ctx context.Context) (int64, error) {
	provider, err := goose.NewProvider(goose.DialectPostgres, m.db, m.migrations)
	if err != nil {
		return 0, fmt.Errorf("failed to load migrations: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to apply migrations: %w", err)
	}

	for _, r := range results {
		m.logger.WithFields(logrus.Fields{
			"version":  r.Source.Version,
			"duration": r.Duration,
		}).Info("Migration applied")
	}

	return provider.GetDBVersion(ctx)
}
