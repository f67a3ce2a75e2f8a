package keyvault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dmitrijs2005/actionkeeper/internal/common"
	"github.com/dmitrijs2005/actionkeeper/internal/filex"
)

const keyFilePerm = 0o600

// FileKeyStore keeps the sealed key in a JSON file. Writes are atomic and
// serialised across processes by an exclusive lock on "<path>.lock".
type FileKeyStore struct {
	path string
}

func NewFileKeyStore(path string) *FileKeyStore {
	return &FileKeyStore{path: path}
}

func (s *FileKeyStore) Path() string { return s.path }

func (s *FileKeyStore) Load(ctx context.Context) (*SealedKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrKeyNotFound
		}
		return nil, fmt.Errorf("read key file: %w", err)
	}

	var k SealedKey
	if err := json.Unmarshal(b, &k); err != nil {
		return nil, fmt.Errorf("%w: decode key file: %w", common.ErrInvalidKey, err)
	}
	return &k, nil
}

func (s *FileKeyStore) Save(ctx context.Context, k *SealedKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b, err := json.MarshalIndent(k, "", "  ")
	if err != nil {
		return fmt.Errorf("encode key file: %w", err)
	}

	return filex.WithLock(s.path+".lock", func() error {
		return filex.WriteFileAtomic(s.path, b, keyFilePerm)
	})
}
