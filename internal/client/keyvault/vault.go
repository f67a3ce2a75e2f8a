package keyvault

import (
	"context"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/dmitrijs2005/actionkeeper/internal/common"
	"github.com/dmitrijs2005/actionkeeper/internal/cryptox"
)

const (
	scalarSize    = 32
	signatureSize = 2 * scalarSize
)

// KeyVault is the signing capability used by the capture service.
type KeyVault interface {
	// Generate creates a new key pair, replacing any existing one, and
	// returns the base64 public key.
	Generate(ctx context.Context) (string, error)
	// Sign signs digestHex and returns the base64 P1363 signature.
	// It fails with common.ErrKeyNotFound if no key pair exists.
	Sign(ctx context.Context, digestHex string) (string, error)
	// ExportPublicKey returns the base64 public key, or
	// common.ErrKeyNotFound.
	ExportPublicKey(ctx context.Context) (string, error)
}

// Vault implements KeyVault on top of a KeyStore. The unsealed private key
// is cached in memory after the first successful unlock and dropped as soon
// as the stored public key changes, so a keygen run by another process is
// picked up by long-lived sessions.
type Vault struct {
	mu         sync.Mutex
	store      KeyStore
	passphrase []byte
	now        func() time.Time

	priv    *ecdsa.PrivateKey
	privPub string
}

func New(store KeyStore, passphrase []byte) *Vault {
	return &Vault{
		store:      store,
		passphrase: append([]byte(nil), passphrase...),
		now:        time.Now,
	}
}

func (v *Vault) Generate(ctx context.Context) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("%w: generate key: %w", common.ErrHashOrSign, err)
	}

	raw, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		return "", fmt.Errorf("%w: encode key: %w", common.ErrHashOrSign, err)
	}
	defer common.WipeByteArray(raw)

	pub, err := encodePublicKey(&priv.PublicKey)
	if err != nil {
		return "", err
	}

	salt := common.GenerateRandByteArray(cryptox.SaltSize)
	wrap := cryptox.DeriveWrappingKey(v.passphrase, salt)
	defer common.WipeByteArray(wrap)

	ct, nonce, err := cryptox.Seal(raw, wrap)
	if err != nil {
		return "", fmt.Errorf("%w: seal key: %w", common.ErrHashOrSign, err)
	}

	sealed := &SealedKey{
		Curve:      curveP256,
		PublicKey:  pub,
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: ct,
		CreatedAt:  v.now().UTC().Format(time.RFC3339),
	}
	if err := v.store.Save(ctx, sealed); err != nil {
		return "", fmt.Errorf("save key: %w", err)
	}

	v.priv, v.privPub = priv, pub
	return pub, nil
}

func (v *Vault) Sign(ctx context.Context, digestHex string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	priv, err := v.unlock(ctx)
	if err != nil {
		return "", err
	}

	h := sha256.Sum256([]byte(digestHex))
	r, s, err := ecdsa.Sign(rand.Reader, priv, h[:])
	if err != nil {
		return "", fmt.Errorf("%w: sign: %w", common.ErrHashOrSign, err)
	}

	sig := make([]byte, signatureSize)
	r.FillBytes(sig[:scalarSize])
	s.FillBytes(sig[scalarSize:])
	return base64.StdEncoding.EncodeToString(sig), nil
}

func (v *Vault) ExportPublicKey(ctx context.Context) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	sealed, err := v.store.Load(ctx)
	if err != nil {
		return "", err
	}
	if _, err := decodePublicKey(sealed.PublicKey); err != nil {
		return "", err
	}
	return sealed.PublicKey, nil
}

// unlock returns the cached private key while it still matches the stored
// public key, otherwise it loads and unseals the stored one.
// Callers hold v.mu.
func (v *Vault) unlock(ctx context.Context) (*ecdsa.PrivateKey, error) {
	sealed, err := v.store.Load(ctx)
	if err != nil {
		v.priv, v.privPub = nil, ""
		return nil, err
	}
	if v.priv != nil && v.privPub == sealed.PublicKey {
		return v.priv, nil
	}
	v.priv, v.privPub = nil, ""

	if sealed.Curve != curveP256 {
		return nil, fmt.Errorf("%w: unsupported curve %q", common.ErrInvalidKey, sealed.Curve)
	}

	wrap := cryptox.DeriveWrappingKey(v.passphrase, sealed.Salt)
	defer common.WipeByteArray(wrap)

	raw, err := cryptox.Open(sealed.Ciphertext, sealed.Nonce, wrap)
	if err != nil {
		if errors.Is(err, cryptox.ErrOpen) {
			return nil, fmt.Errorf("%w: wrong passphrase or corrupted key", common.ErrInvalidKey)
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidKey, err)
	}
	defer common.WipeByteArray(raw)

	priv, err := x509.ParseECPrivateKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidKey, err)
	}

	pub, err := encodePublicKey(&priv.PublicKey)
	if err != nil {
		return nil, err
	}
	if pub != sealed.PublicKey {
		return nil, fmt.Errorf("%w: public key does not match private key", common.ErrInvalidKey)
	}

	v.priv, v.privPub = priv, pub
	return priv, nil
}

// Verify reports whether sigB64 is a valid signature of digestHex under
// pubB64. Malformed inputs verify as false.
func Verify(pubB64, digestHex, sigB64 string) bool {
	pub, err := decodePublicKey(pubB64)
	if err != nil {
		return false
	}

	sig, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil || len(sig) != signatureSize {
		return false
	}

	r := new(big.Int).SetBytes(sig[:scalarSize])
	s := new(big.Int).SetBytes(sig[scalarSize:])

	h := sha256.Sum256([]byte(digestHex))
	return ecdsa.Verify(pub, h[:], r, s)
}

func encodePublicKey(pub *ecdsa.PublicKey) (string, error) {
	k, err := pub.ECDH()
	if err != nil {
		return "", fmt.Errorf("%w: encode public key: %w", common.ErrInvalidKey, err)
	}
	return base64.StdEncoding.EncodeToString(k.Bytes()), nil
}

func decodePublicKey(pubB64 string) (*ecdsa.PublicKey, error) {
	b, err := base64.StdEncoding.DecodeString(pubB64)
	if err != nil {
		return nil, fmt.Errorf("%w: public key is not base64: %w", common.ErrInvalidKey, err)
	}
	// NewPublicKey rejects anything but a valid uncompressed P-256 point.
	if _, err := ecdh.P256().NewPublicKey(b); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidKey, err)
	}
	x, y := elliptic.Unmarshal(elliptic.P256(), b) //nolint:staticcheck // point already validated above
	return &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}, nil
}
