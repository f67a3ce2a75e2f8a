// Package store opens the device-local SQLite database that backs the
// ActionStore, the Ledger, the MetaStore and (optionally) the key vault.
//
// A Store is constructed once per process or session and passed by
// reference to the components that need it; Close releases it.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/actionkeeper/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/actionkeeper/internal/filex"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// Store is the explicit handle to the local persistent store.
type Store struct {
	DB    *sql.DB
	Repos repomanager.RepositoryManager
}

// Open opens (creating if needed) the database at dsn and applies the
// schema migrations. dsn is either a file path or a full "file:" URI.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if !filex.IsMemoryDSN(dsn) && !strings.HasPrefix(dsn, "file:") {
		if _, err := filex.EnsureParentDir(dsn, 0o700); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(driverName, withPragmas(dsn))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer at a time; the ledger relies on serialised appends.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	repos := repomanager.NewSQLiteRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &Store{DB: db, Repos: repos}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

func withPragmas(dsn string) string {
	if dsn == ":memory:" {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}
