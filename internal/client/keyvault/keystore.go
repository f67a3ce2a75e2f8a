package keyvault

import (
	"context"
)

const curveP256 = "P-256"

// SealedKey is the at-rest form of a key pair. PublicKey is stored in the
// clear so it can be exported without the passphrase.
type SealedKey struct {
	Curve      string `json:"curve"`
	PublicKey  string `json:"publicKey"`
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
	CreatedAt  string `json:"createdAt"`
}

// KeyStore persists the single active SealedKey. Load returns
// common.ErrKeyNotFound when nothing has been saved yet; Save replaces any
// previous key.
type KeyStore interface {
	Load(ctx context.Context) (*SealedKey, error)
	Save(ctx context.Context, k *SealedKey) error
}
