package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipekeeper/backend/internal/model"
	"github.com/pageza/recipekeeper/backend/internal/models"
	"github.com/pageza/recipekeeper/backend/migrations"
)

const rollbackSuffix = "_rollback.sql"

// ErrNoMigrations is returned by Rollback when nothing has been applied.
var ErrNoMigrations = errors.New("no migrations to roll back")

// Migration is one versioned schema change.
type Migration struct {
	Version string
	Name    string
}

// Migrator applies versioned SQL files and records them in
// schema_migrations.
type Migrator struct {
	db   *sql.DB
	fsys fs.FS
	log  *zap.Logger
}

func NewMigrator(db *sql.DB, fsys fs.FS, log *zap.Logger) *Migrator {
	return &Migrator{db: db, fsys: fsys, log: log}
}

// Migrate brings the schema up to date. PostgreSQL runs the embedded SQL
// migrations; SQLite, used for tests and local runs, is auto-migrated.
func Migrate(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	if !IsPostgres(db) {
		log.Info("using auto-migration", zap.String("driver", db.Dialector.Name()))
		return db.WithContext(ctx).AutoMigrate(&models.User{}, &model.Recipe{})
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	_, err = NewMigrator(sqlDB, migrations.FS, log).Up(ctx)
	return err
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(32) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	return nil
}

// files lists migration files in version order, skipping rollbacks.
func (m *Migrator) files() ([]Migration, error) {
	entries, err := fs.ReadDir(m.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	var out []Migration
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") || strings.HasSuffix(name, rollbackSuffix) {
			continue
		}
		version, _, ok := strings.Cut(name, "_")
		if !ok {
			return nil, fmt.Errorf("migration %s is not named <version>_<name>.sql", name)
		}
		out = append(out, Migration{Version: version, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Applied returns the recorded migrations in version order.
func (m *Migrator) Applied(ctx context.Context) ([]Migration, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	rows, err := m.db.QueryContext(ctx, `SELECT version, name FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("failed to list applied migrations: %w", err)
	}
	defer rows.Close()

	var out []Migration
	for rows.Next() {
		var mig Migration
		if err := rows.Scan(&mig.Version, &mig.Name); err != nil {
			return nil, err
		}
		out = append(out, mig)
	}
	return out, rows.Err()
}

// Up applies every migration that has not been recorded yet, each in its
// own transaction, and returns the ones it applied.
func (m *Migrator) Up(ctx context.Context) ([]Migration, error) {
	all, err := m.files()
	if err != nil {
		return nil, err
	}
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(applied))
	for _, mig := range applied {
		done[mig.Version] = true
	}

	var ran []Migration
	for _, mig := range all {
		if done[mig.Version] {
			m.log.Debug("migration already applied", zap.String("migration", mig.Name))
			continue
		}
		content, err := fs.ReadFile(m.fsys, mig.Name)
		if err != nil {
			return ran, fmt.Errorf("failed to read migration %s: %w", mig.Name, err)
		}
		err = m.inTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, string(content)); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return ran, fmt.Errorf("failed to apply migration %s: %w", mig.Name, err)
		}
		m.log.Info("applied migration", zap.String("migration", mig.Name))
		ran = append(ran, mig)
	}
	return ran, nil
}

// Rollback reverts the most recent migration using its _rollback.sql file.
func (m *Migrator) Rollback(ctx context.Context) (*Migration, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	if len(applied) == 0 {
		return nil, ErrNoMigrations
	}
	last := applied[len(applied)-1]

	rollbackFile := strings.TrimSuffix(last.Name, ".sql") + rollbackSuffix
	content, err := fs.ReadFile(m.fsys, rollbackFile)
	if err != nil {
		return nil, fmt.Errorf("rollback file not found: %s: %w", rollbackFile, err)
	}

	err = m.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = $1`, last.Version)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to roll back %s: %w", last.Name, err)
	}
	m.log.Info("rolled back migration", zap.String("migration", last.Name))
	return &last, nil
}

func (m *Migrator) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
