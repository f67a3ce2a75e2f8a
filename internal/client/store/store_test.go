package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, db *sql.DB, kind, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type=? AND name=?`, kind, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestOpen_CreatesSchema(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "nested", "actions.db")

	s, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer s.Close()

	for _, tbl := range []string{"goose_db_version", "actions", "ledger", "metadata"} {
		assert.True(t, tableExists(t, s.DB, "table", tbl), tbl)
	}
	assert.True(t, tableExists(t, s.DB, "trigger", "ledger_no_update"))
	assert.True(t, tableExists(t, s.DB, "trigger", "ledger_no_delete"))
}

func TestOpen_IsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "actions.db")

	s1, err := Open(ctx, dsn)
	require.NoError(t, err)
	_, err = s1.DB.ExecContext(ctx, `INSERT INTO metadata(key, value) VALUES ('k', 'v')`)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer s2.Close()

	var v string
	require.NoError(t, s2.DB.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key='k'`).Scan(&v))
	assert.Equal(t, "v", v)
}

func TestOpen_InMemory(t *testing.T) {
	t.Parallel()

	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	defer s.Close()

	assert.True(t, tableExists(t, s.DB, "table", "ledger"))
}

func TestClose_NilSafe(t *testing.T) {
	var s *Store
	require.NoError(t, s.Close())
}

func TestWithPragmas(t *testing.T) {
	assert.Equal(t, ":memory:", withPragmas(":memory:"))
	assert.Equal(t, "file:a.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", withPragmas("a.db"))
	assert.Equal(t, "file:x?mode=memory&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", withPragmas("file:x?mode=memory"))
}
