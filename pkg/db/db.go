package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Database is a connection pool that knows which SQL dialect it speaks.
type Database struct {
	*sql.DB
	Dialect Dialect
}

// Rebind rewrites ? placeholders into $n for postgres. Queries never carry
// a literal question mark, so a plain scan is enough.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// Placeholders returns "?, ?, ?" for an IN clause of n values.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func Connect(databaseURL string) (*Database, error) {

	if databaseURL == "" {
		return nil, fmt.Errorf("database URL cannot be empty")
	}

	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	err = conn.Ping()
	if err != nil {

		_ = conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return &Database{DB: conn, Dialect: Postgres}, nil
}

// OpenSQLite opens (or creates) the single-file store at path.
func OpenSQLite(path string) (*Database, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create dir %q: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// single writer
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("sqlite: ping %q: %w", path, err)
	}

	return &Database{DB: conn, Dialect: SQLite}, nil
}

// Open picks the driver by name.
func Open(driver, databaseURL, sqlitePath string) (*Database, error) {
	switch Dialect(driver) {
	case Postgres:
		return Connect(databaseURL)
	case SQLite:
		return OpenSQLite(sqlitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
