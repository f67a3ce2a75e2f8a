package models

// AuditReport is the result of re-checking the local store: every record
// hash and signature, the ledger state hash against the stored checkpoint,
// and the cross-references between records and ledger entries.
type AuditReport struct {
	Records       int `json:"records"`
	LedgerEntries int `json:"ledgerEntries"`

	StoredStateHash   string `json:"storedStateHash"`
	ComputedStateHash string `json:"computedStateHash"`

	// TamperedRecords have an actionHash that no longer matches their fields.
	TamperedRecords []string `json:"tamperedRecords,omitempty"`
	// InvalidSignatures fail verification against the device public key.
	InvalidSignatures []string `json:"invalidSignatures,omitempty"`
	// OrphanRecords are stored but never reached the ledger.
	OrphanRecords []string `json:"orphanRecords,omitempty"`
	// MissingRecords are referenced by the ledger but absent from the store.
	MissingRecords []string `json:"missingRecords,omitempty"`
	// HashMismatches are ledger entries whose actionHash differs from the record's.
	HashMismatches []string `json:"hashMismatches,omitempty"`
	// PendingRecords were stored without their final ledgerStateHash.
	PendingRecords []string `json:"pendingRecords,omitempty"`
	// StaleCheckpoints carry a ledgerStateHash that differs from the ledger
	// digest at their own entry.
	StaleCheckpoints []string `json:"staleCheckpoints,omitempty"`
}

// StateHashMatches reports whether the stored checkpoint equals the digest
// recomputed from the ledger.
func (r *AuditReport) StateHashMatches() bool {
	if r.LedgerEntries == 0 && r.StoredStateHash == "" {
		return true
	}
	return r.StoredStateHash == r.ComputedStateHash
}

// OK is true when nothing suspicious was found.
func (r *AuditReport) OK() bool {
	return r.StateHashMatches() &&
		len(r.TamperedRecords) == 0 &&
		len(r.InvalidSignatures) == 0 &&
		len(r.OrphanRecords) == 0 &&
		len(r.MissingRecords) == 0 &&
		len(r.HashMismatches) == 0 &&
		len(r.PendingRecords) == 0 &&
		len(r.StaleCheckpoints) == 0
}
