package actions

import (
	"context"

	"github.com/dmitrijs2005/actionkeeper/internal/client/models"
)

type Repository interface {
	// CreateOrUpdate upserts a full record by ID.
	CreateOrUpdate(ctx context.Context, rec *models.ActionRecord) error

	// GetAll returns every stored record, ordered by timestamp then id.
	GetAll(ctx context.Context) ([]models.ActionRecord, error)

	// GetByID returns common.ErrorNotFound when the record is absent.
	GetByID(ctx context.Context, id string) (*models.ActionRecord, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)
}
