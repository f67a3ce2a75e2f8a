package keyvault

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/actionkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/actionkeeper/internal/common"
)

// MetadataKeyStore keeps the sealed key under metadata.DeviceKeyKey in the
// local database, next to the actions and the ledger.
type MetadataKeyStore struct {
	repo metadata.Repository
}

func NewMetadataKeyStore(repo metadata.Repository) *MetadataKeyStore {
	return &MetadataKeyStore{repo: repo}
}

func (s *MetadataKeyStore) Load(ctx context.Context) (*SealedKey, error) {
	b, err := s.repo.Get(ctx, metadata.DeviceKeyKey)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, common.ErrKeyNotFound
	}

	var k SealedKey
	if err := json.Unmarshal(b, &k); err != nil {
		return nil, fmt.Errorf("%w: decode stored key: %w", common.ErrInvalidKey, err)
	}
	return &k, nil
}

func (s *MetadataKeyStore) Save(ctx context.Context, k *SealedKey) error {
	b, err := json.Marshal(k)
	if err != nil {
		return fmt.Errorf("encode key: %w", err)
	}
	return s.repo.Set(ctx, metadata.DeviceKeyKey, b)
}
