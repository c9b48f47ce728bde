// db.go
//
// Database helpers for the blog API.
// Responsibilities:
//   - Opening the database: SQLite (default) or Postgres through pgx's
//     database/sql driver.
//   - Bootstrapping the users and posts tables from the embedded script for
//     the driver (CREATE TABLE IF NOT EXISTS; there is no versioning).

package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/sterry/blog-api/assets"
)

// openDB opens the database for driver ("sqlite3" or "pgx").
//
// SQLite: creates the parent directory of a file DSN, sets a busy timeout and
// enforces foreign keys. A single connection is kept and reused.
// Postgres: a small pool, verified with a ping.
func openDB(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	switch driver {
	case "sqlite3":
		if dir := filepath.Dir(dsn); dir != "." && dir != "" && !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		db, err := sql.Open("sqlite3", dsn+sep+"_busy_timeout=5000&_foreign_keys=on")
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(1)
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping sqlite: %w", err)
		}
		return db, nil

	case "pgx":
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(4)
		db.SetConnMaxLifetime(30 * time.Minute)

		pingCtx, cancel := context.WithTimeout(ctx, 8*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		return db, nil
	}
	return nil, fmt.Errorf("unsupported driver %q", driver)
}

// ensureSchema runs each statement of the embedded bootstrap script.
func ensureSchema(ctx context.Context, db *sql.DB, driver string) error {
	script, err := assets.Schema(driver)
	if err != nil {
		return err
	}
	for _, stmt := range strings.Split(script, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	log.Info().Str("driver", driver).Msg("schema ready")
	return nil
}
