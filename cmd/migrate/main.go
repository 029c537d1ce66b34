package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"os"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/pageza/recipekeeper/backend/config"
	"github.com/pageza/recipekeeper/backend/internal/database"
	"github.com/pageza/recipekeeper/backend/internal/logger"
	"github.com/pageza/recipekeeper/backend/migrations"
)

func main() {
	// Parse command line flags
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	status := flag.Bool("status", false, "List applied migrations and exit")
	flag.Parse()

	zl, err := logger.New(os.Getenv("LOG_LEVEL"), true)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			zl.Fatal("DATABASE_URL is not set and configuration is invalid", zap.Error(err))
		}
		dsn = cfg.PostgresDSN()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		zl.Fatal("database is not reachable", zap.Error(err))
	}

	m := database.NewMigrator(db, migrations.FS, zl)

	switch {
	case *status:
		applied, err := m.Applied(ctx)
		if err != nil {
			zl.Fatal("failed to read applied migrations", zap.Error(err))
		}
		for _, mig := range applied {
			zl.Info("applied", zap.String("version", mig.Version), zap.String("name", mig.Name))
		}
	case *rollback:
		mig, err := m.Rollback(ctx)
		if errors.Is(err, database.ErrNoMigrations) {
			zl.Warn("no migrations to rollback")
			return
		}
		if err != nil {
			zl.Fatal("rollback failed", zap.Error(err))
		}
		zl.Info("successfully rolled back migration", zap.String("name", mig.Name))
	default:
		ran, err := m.Up(ctx)
		if err != nil {
			zl.Fatal("migration failed", zap.Error(err))
		}
		zl.Info("all migrations applied", zap.Int("applied", len(ran)))
	}
}
