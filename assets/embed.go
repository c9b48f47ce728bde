// Package assets embeds the table bootstrap scripts, one per database driver.
package assets

import (
	"embed"
	"fmt"
)

// FS holds the per-driver scripts under schema/.
//
//go:embed schema/*.sql
var FS embed.FS

// Schema returns the CREATE TABLE IF NOT EXISTS script for driver
// ("sqlite3" or "pgx").
func Schema(driver string) (string, error) {
	var name string
	switch driver {
	case "sqlite3":
		name = "schema/sqlite.sql"
	case "pgx":
		name = "schema/postgres.sql"
	default:
		return "", fmt.Errorf("no schema for driver %q", driver)
	}
	b, err := FS.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
