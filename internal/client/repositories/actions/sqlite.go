package actions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/actionkeeper/internal/client/models"
	"github.com/dmitrijs2005/actionkeeper/internal/common"
	"github.com/dmitrijs2005/actionkeeper/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `id, title, description, timestamp, location, metrics, media,
	action_hash, signature, ledger_state_hash`

func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, rec *models.ActionRecord) error {
	var metrics sql.NullString
	if len(rec.Metrics) > 0 {
		b, err := json.Marshal(rec.Metrics)
		if err != nil {
			return fmt.Errorf("failed to encode metrics of action %s: %w", rec.ID, err)
		}
		metrics = sql.NullString{String: string(b), Valid: true}
	}

	media := rec.Media
	if media == nil {
		media = []models.Media{}
	}
	mediaJSON, err := json.Marshal(media)
	if err != nil {
		return fmt.Errorf("failed to encode media of action %s: %w", rec.ID, err)
	}

	query := `INSERT INTO actions (id, title, description, timestamp, location, metrics, media,
			action_hash, signature, ledger_state_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			timestamp = excluded.timestamp,
			location = excluded.location,
			metrics = excluded.metrics,
			media = excluded.media,
			action_hash = excluded.action_hash,
			signature = excluded.signature,
			ledger_state_hash = excluded.ledger_state_hash`

	_, err = r.db.ExecContext(ctx, query,
		rec.ID, rec.Title, rec.Description, rec.Timestamp, nullString(rec.Location), metrics, string(mediaJSON),
		rec.ActionHash, rec.Signature, nullIfEmpty(rec.LedgerStateHash))
	if err != nil {
		return fmt.Errorf("failed to upsert action %s: %w", rec.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.ActionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM actions ORDER BY timestamp, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select actions: %w", err)
	}
	defer rows.Close()

	result := []models.ActionRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate actions: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.ActionRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM actions WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("action %s: %w", id, common.ErrorNotFound)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM actions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count actions: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*models.ActionRecord, error) {
	var (
		rec                            models.ActionRecord
		location, metrics, ledgerState sql.NullString
		media                          string
	)
	err := s.Scan(&rec.ID, &rec.Title, &rec.Description, &rec.Timestamp, &location, &metrics, &media,
		&rec.ActionHash, &rec.Signature, &ledgerState)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan action: %w", err)
	}

	if location.Valid {
		loc := location.String
		rec.Location = &loc
	}
	if metrics.Valid {
		if err := json.Unmarshal([]byte(metrics.String), &rec.Metrics); err != nil {
			return nil, fmt.Errorf("failed to decode metrics of action %s: %w", rec.ID, err)
		}
	}
	rec.Media = []models.Media{}
	if err := json.Unmarshal([]byte(media), &rec.Media); err != nil {
		return nil, fmt.Errorf("failed to decode media of action %s: %w", rec.ID, err)
	}
	rec.LedgerStateHash = ledgerState.String

	return &rec, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
