package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/actionkeeper/internal/client/models"
	"github.com/dmitrijs2005/actionkeeper/internal/cryptox"
	"github.com/dmitrijs2005/actionkeeper/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Append(ctx context.Context, e *models.LedgerEntry) (*models.LedgerEntry, error) {
	if e.Type == "" {
		e.Type = models.EntryTypeActionAdd
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO ledger (type, action_id, action_hash, ts) VALUES (?, ?, ?, ?)`,
		e.Type, e.Payload.ActionID, e.Payload.ActionHash, e.TS)
	if err != nil {
		return nil, fmt.Errorf("failed to append ledger entry for %s: %w", e.Payload.ActionID, err)
	}

	idx, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger index: %w", err)
	}

	stored := *e
	stored.Index = idx
	return &stored, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT idx, type, action_id, action_hash, ts FROM ledger ORDER BY idx ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to select ledger: %w", err)
	}
	defer rows.Close()

	result := []models.LedgerEntry{}
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.Index, &e.Type, &e.Payload.ActionID, &e.Payload.ActionHash, &e.TS); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) ComputeStateHash(ctx context.Context) (string, error) {
	entries, err := r.GetAll(ctx)
	if err != nil {
		return "", err
	}
	return StateHash(entries), nil
}

// StateHash is the ledger state digest over entries, which must already be
// in index order.
func StateHash(entries []models.LedgerEntry) string {
	var b strings.Builder
	b.Grow(len(entries) * 64)
	for _, e := range entries {
		b.WriteString(e.Payload.ActionHash)
	}
	return cryptox.Sha256Hex(b.String())
}
