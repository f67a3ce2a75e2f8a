package ledger

import (
	"context"

	"github.com/dmitrijs2005/actionkeeper/internal/client/models"
)

type Repository interface {
	// Append assigns the next index to e, persists it and returns the stored entry.
	Append(ctx context.Context, e *models.LedgerEntry) (*models.LedgerEntry, error)

	// GetAll returns all entries in index order, which equals insertion order.
	GetAll(ctx context.Context) ([]models.LedgerEntry, error)

	// ComputeStateHash digests the concatenated action hashes of all entries.
	ComputeStateHash(ctx context.Context) (string, error)
}
