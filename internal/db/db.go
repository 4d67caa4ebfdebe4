package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"surfsup-server/internal/config"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens the climate dataset read-only and validates connectivity.
// With cfg.LogSQL every statement is logged at debug level through logger.
func Open(cfg config.Config, logger *slog.Logger) (*sql.DB, error) {
	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	if cfg.LogSQL {
		db = sql.OpenDB(NewLoggingConnector(dsn, logger))
	} else {
		db, err = sql.Open(cfg.Driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns >= 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return db, nil
}

func Close(db *sql.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}

// readOnlyParams keep the server from ever writing to the dataset file.
var readOnlyParams = []string{
	"mode=ro",
	"_query_only=true",
	"_busy_timeout=5000",
}

func buildDSN(cfg config.Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}

	path := cfg.Path
	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(readOnlyParams, "&"), nil
	}

	// The dataset is provisioned externally; a missing file is a startup error
	// rather than an empty database created on the fly.
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("sqlite database %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("sqlite database %s: is a directory", path)
	}

	return fmt.Sprintf("file:%s?%s", path, strings.Join(readOnlyParams, "&")), nil
}
