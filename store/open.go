package store

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "modernc.org/sqlite"
)

// EnvDBPath is the environment variable that overrides the default
// database path. ResolvePath consults it; an explicit path argument to
// ResolvePath always takes precedence over it, and Open itself never
// reads it. This is the mechanism by which supervisor-spawned
// worker processes inherit the supervisor's chosen database.
const EnvDBPath = "QUEUECTL_DB_PATH"

// DefaultDBPath is the hard-coded default location of the store, used
// when neither an explicit path nor EnvDBPath is set.
const DefaultDBPath = "./data/queuectl.db"

// ResolvePath determines the effective database path: an explicit,
// non-empty path wins, then EnvDBPath, then DefaultDBPath.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		return v
	}
	return DefaultDBPath
}

// Open opens (creating if necessary) a SQLite-backed *bun.DB at path,
// configured for the single-writer, busy-timeout-bounded access pattern
// the claim protocol relies on. It does not run Init; callers must do
// so before first use.
func Open(path string) (*bun.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create data dir: %w", err)
		}
	}
	// _txlock=immediate makes every sql.Tx acquire SQLite's RESERVED
	// lock at BEGIN rather than on first write, which is what the
	// claim protocol needs to serialize concurrent claimers.
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)&_txlock=immediate",
		url.PathEscape(path),
	)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	// SQLite allows only one writer at a time; funnel every access
	// through a single connection so bun's connection pool never
	// serializes two writers against each other behind its back.
	sqlDB.SetMaxOpenConns(1)
	return bun.NewDB(sqlDB, sqlitedialect.New()), nil
}
