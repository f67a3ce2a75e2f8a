package models

// EntryTypeActionAdd is the only ledger entry type written by the kernel.
const EntryTypeActionAdd = "ACTION_ADD"

// LedgerPayload references the action an entry records.
type LedgerPayload struct {
	ActionID   string `json:"actionId"`
	ActionHash string `json:"actionHash"`
}

// LedgerEntry is one immutable row of the append-only ledger. Index is
// assigned by the store at append time.
type LedgerEntry struct {
	Index   int64         `json:"index"`
	Type    string        `json:"type"`
	Payload LedgerPayload `json:"payload"`
	TS      string        `json:"ts"`
}
