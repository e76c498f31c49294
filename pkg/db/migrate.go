package db

import (
	"context"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// goose keeps its base FS and dialect in package state.
var gooseMu sync.Mutex

// Migrate applies every pending migration for the database's dialect.
// logger may be nil, in which case goose stays quiet.
func Migrate(ctx context.Context, database *Database, logger goose.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	var gooseDialect, dir string
	switch database.Dialect {
	case Postgres:
		gooseDialect, dir = "postgres", "migrations/postgres"
	case SQLite:
		gooseDialect, dir = "sqlite3", "migrations/sqlite"
	default:
		return fmt.Errorf("migrate: unsupported dialect %q", database.Dialect)
	}

	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if logger != nil {
		goose.SetLogger(logger)
	} else {
		goose.SetLogger(goose.NopLogger())
	}

	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("migrate: set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, database.DB, dir); err != nil {
		return fmt.Errorf("migrate: up: %w", err)
	}
	return nil
}
