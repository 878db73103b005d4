// Package migrations embeds the history schema for each supported dialect.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Up applies pending migrations. dir is "postgres" or "sqlite".
func Up(db *sql.DB, dir string) error {
	dialect := dir
	if dir == "sqlite" {
		dialect = "sqlite3"
	}
	goose.SetBaseFS(files)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
