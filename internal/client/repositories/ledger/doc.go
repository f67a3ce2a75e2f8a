// Package ledger is the append-only, ordered log of action-hash references.
//
// Each Append gets the next index from the store (SQLite AUTOINCREMENT,
// starting at 1); indices are strictly increasing and gap-free because
// rows are never deleted and a rolled-back append does not consume a value.
// UPDATE and DELETE on the table abort through schema triggers.
//
// The state hash is a sequential digest, not a Merkle tree:
//
//	state = Sha256Hex(h1 + h2 + ... + hn)
//
// with plain concatenation in index order. It is recomputed from the full
// history on every call, O(n) per call and O(n^2) over n appends. Existing
// ledgers depend on this exact value, so an incremental chain must not be
// substituted.
package ledger
