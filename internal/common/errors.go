// Package common defines shared sentinel errors and small helpers used across
// the actionkeeper packages. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrKeyNotFound is returned when a signature is requested before the
	// device key pair has been generated.
	ErrKeyNotFound = errors.New("key not found")

	// ErrStorage marks a failure of the underlying persistent store
	// (capacity, I/O fault, constraint violation).
	ErrStorage = errors.New("storage error")

	// ErrHashOrSign marks a failure of a cryptographic primitive.
	ErrHashOrSign = errors.New("hash or sign error")

	// Validation errors.
	ErrInvalidPayload = errors.New("invalid payload")
	ErrInvalidKey     = errors.New("invalid key material")
)
