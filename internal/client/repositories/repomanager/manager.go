// Package repomanager hands out repositories bound to a database handle or
// to an open transaction, and owns the schema migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/actionkeeper/internal/client/migrations"
	"github.com/dmitrijs2005/actionkeeper/internal/client/repositories/actions"
	"github.com/dmitrijs2005/actionkeeper/internal/client/repositories/ledger"
	"github.com/dmitrijs2005/actionkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/actionkeeper/internal/dbx"
	"github.com/pressly/goose/v3"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Actions(db dbx.DBTX) actions.Repository
	Ledger(db dbx.DBTX) ledger.Repository
	Metadata(db dbx.DBTX) metadata.Repository
}

type SQLiteRepositoryManager struct{}

func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}

func (m *SQLiteRepositoryManager) Actions(db dbx.DBTX) actions.Repository {
	return actions.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Ledger(db dbx.DBTX) ledger.Repository {
	return ledger.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Metadata(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

// RunMigrations applies the embedded goose migrations. It is idempotent.
func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
