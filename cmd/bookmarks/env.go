package main

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/joestump/bookmarks/internal/config"
	"github.com/joestump/bookmarks/internal/db"
	"github.com/joestump/bookmarks/internal/logger"
)

// runtimeEnv is what every command needs before doing its own work.
type runtimeEnv struct {
	cfg *config.Config
	log logger.Logger
	db  *sqlx.DB
}

// openEnv loads config, builds the logger, opens the database and applies
// pending migrations. The caller must call close.
func openEnv() (*runtimeEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(database, cfg.DB.Driver); err != nil {
		_ = database.Close()
		return nil, err
	}
	log.Info("database ready", logger.String("driver", cfg.DB.Driver))
	return &runtimeEnv{cfg: cfg, log: log, db: database}, nil
}

func (e *runtimeEnv) close() {
	_ = e.db.Close()
	_ = e.log.Sync()
}
