// Package keyvault owns the device signing key.
//
// A single ECDSA P-256 key pair is active at a time. Signatures are computed
// over the UTF-8 bytes of a hex digest string with SHA-256 as the message
// hash, and encoded as base64 of the 64-byte IEEE P1363 form (r||s). Public
// keys are exported as base64 of the 65-byte uncompressed SEC1 point. These
// encodings match WebCrypto's ECDSA/SHA-256 with raw export, so a verifier on
// another platform can check signatures without conversion.
//
// The private scalar is only ever persisted sealed: AES-256-GCM under a key
// derived from the device passphrase with argon2id. Persistence goes through
// a KeyStore (a 0600 file, or the metadata table of the local database).
package keyvault
