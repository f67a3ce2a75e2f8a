package metadata

import (
	"context"
)

// MetaStore exposes the single ledgerStateHash slot of a Repository.
type MetaStore struct {
	repo Repository
}

func NewMetaStore(repo Repository) *MetaStore {
	return &MetaStore{repo: repo}
}

// LedgerStateHash returns the stored checkpoint, or "" if none was written.
func (m *MetaStore) LedgerStateHash(ctx context.Context) (string, error) {
	v, err := m.repo.Get(ctx, LedgerStateHashKey)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// PutLedgerStateHash overwrites the checkpoint.
func (m *MetaStore) PutLedgerStateHash(ctx context.Context, hash string) error {
	return m.repo.Set(ctx, LedgerStateHashKey, []byte(hash))
}
