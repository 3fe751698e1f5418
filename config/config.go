package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config collapses the deployment variants (local sqlite, local postgres,
// managed cloud postgres) into one parameter set: a connection target, pool
// limits and a TLS policy. The core components only ever see the resulting
// connection handle.
type Config struct {
	Driver       string // "postgres" or "sqlite3"
	Target       string // DSN for postgres, file path for sqlite3
	PoolSize     int
	QueryTimeout time.Duration
	Addr         string
	LogLevel     string
	Production   bool // forces sslmode=require on assembled postgres DSNs
}

// FromEnv assembles a config from the environment. DATABASE_URL wins when
// set; otherwise a postgres DSN is built from the discrete parts.
func FromEnv() *Config {
	cfg := &Config{
		Driver:       envOr("DB_DRIVER", "postgres"),
		Target:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		PoolSize:     10,
		QueryTimeout: 30 * time.Second,
		Addr:         envOr("ADDR", "0.0.0.0:8080"),
		LogLevel:     envOr("LOG_LEVEL", "info"),
		Production:   strings.EqualFold(os.Getenv("PRODUCTION"), "true"),
	}

	if cfg.Target == "" {
		switch cfg.Driver {
		case "sqlite3":
			cfg.Target = envOr("DB_PATH", "docuvault.db")
		default:
			cfg.Target = postgresDSN(cfg.Production)
		}
	}
	return cfg
}

func postgresDSN(production bool) string {
	dbUser := strings.TrimSpace(os.Getenv("user"))
	dbPass := strings.TrimSpace(os.Getenv("password"))
	dbHost := strings.TrimSpace(os.Getenv("host"))
	dbPort := strings.TrimSpace(os.Getenv("port"))
	dbName := strings.TrimSpace(os.Getenv("dbname"))

	sslMode := "disable"
	if production {
		sslMode = "require"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", dbUser, dbPass, dbHost, dbPort, dbName, sslMode)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
