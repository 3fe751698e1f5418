package database

import (
	"database/sql"
	"time"

	"docuvault/config"
	"docuvault/pkg/logger"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Connect opens the configured backend and verifies it with a short retry
// loop. An unreachable backend after the retries is not fatal: the service
// starts degraded and operations fail with storage errors until the
// backend comes back.
func Connect(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.Target)
	if err != nil {
		logger.Sugar.Errorf("Failed to open database connection: %v", err)
		return nil, err
	}

	db.SetMaxOpenConns(cfg.PoolSize)
	db.SetMaxIdleConns(cfg.PoolSize)
	db.SetConnMaxIdleTime(5 * time.Minute)

	for i := 0; i < 5; i++ {
		if err = db.Ping(); err == nil {
			logger.Sugar.Info("Successfully connected to the database")
			return db, nil
		}
		logger.Sugar.Infof("Database connection failed, retrying in 2s... (%v)", err)
		time.Sleep(2 * time.Second)
	}
	logger.Sugar.Errorf("Could not connect to database after retries, starting degraded: %v", err)
	return db, nil
}
