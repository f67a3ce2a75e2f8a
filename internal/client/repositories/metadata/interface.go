// Package metadata is the device-local key/value store. It holds the
// MetaStore slot with the latest ledger state hash, an O(1) tamper
// checkpoint, and optionally the sealed device key.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	LedgerStateHashKey = "ledgerStateHash"
	DeviceKeyKey       = "deviceKey"
)

// Entry describes a stored slot without its value.
type Entry struct {
	Key       string
	Size      int
	UpdatedAt string
}

// Repository is a last-write-wins key/value store.
type Repository interface {
	// Get returns (nil, nil) for an absent key.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// List describes every slot, ordered by key.
	List(ctx context.Context) ([]Entry, error)
}
