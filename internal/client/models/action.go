// Package models defines the device-local data model of the capture kernel:
// action records, their evidence descriptors, ledger entries and audit
// reports.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the fixed UTC capture-time format (ISO-8601, ms).
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Media describes one piece of evidence by name, hex SHA-256 and byte size.
// Raw bytes are never part of a record.
type Media struct {
	Name string `json:"name"`
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// Metrics is the optional structured annex of an action (counts, areas,
// species, ...). Values are strings, numbers, booleans, null, or nested
// objects and arrays of those.
type Metrics map[string]any

// ActionRecord is a claim of real-world action as persisted on the device.
//
// ActionHash covers the canonical fields only (ID through Media). Signature
// is a detached signature over ActionHash. LedgerStateHash is the ledger's
// running digest right after this record's entry was appended; it is empty
// until the save sequence finishes.
type ActionRecord struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Timestamp   string  `json:"timestamp"`
	Location    *string `json:"location,omitempty"`
	Metrics     Metrics `json:"metrics,omitempty"`
	Media       []Media `json:"media"`

	ActionHash      string `json:"actionHash"`
	Signature       string `json:"signature"`
	LedgerStateHash string `json:"ledgerStateHash,omitempty"`
}

// NewActionRecord builds the unsigned record for p. The id and timestamp
// are taken from p when set, otherwise a random UUID and now are used.
// Blank locations and empty metrics are normalised to absent so that
// logically equal payloads produce equal records.
func NewActionRecord(p Payload, now time.Time) ActionRecord {
	rec := ActionRecord{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Timestamp:   p.Timestamp,
		Media:       make([]Media, len(p.Media)),
	}
	copy(rec.Media, p.Media)

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp == "" {
		rec.Timestamp = FormatTimestamp(now)
	}
	if p.Location != nil && strings.TrimSpace(*p.Location) != "" {
		loc := *p.Location
		rec.Location = &loc
	}
	if len(p.Metrics) > 0 {
		rec.Metrics = p.Metrics
	}
	return rec
}

// LocationOrEmpty is a display helper.
func (r ActionRecord) LocationOrEmpty() string {
	if r.Location == nil {
		return ""
	}
	return *r.Location
}
