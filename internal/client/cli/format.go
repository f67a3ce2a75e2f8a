package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/actionkeeper/internal/client/models"
)

func printRecord(w io.Writer, r models.ActionRecord) {
	fmt.Fprintf(w, "%s  %s  %s\n", r.ID, r.Timestamp, r.Title)
	if loc := r.LocationOrEmpty(); loc != "" {
		fmt.Fprintf(w, "    location: %s\n", loc)
	}
	for _, m := range r.Media {
		fmt.Fprintf(w, "    media:    %s (%d bytes) %s\n", m.Name, m.Size, m.Hash)
	}
	fmt.Fprintf(w, "    hash:     %s\n", r.ActionHash)
	if r.LedgerStateHash != "" {
		fmt.Fprintf(w, "    ledger:   %s\n", r.LedgerStateHash)
	}
}

func printReport(w io.Writer, r *models.AuditReport) {
	fmt.Fprintf(w, "Records: %d, ledger entries: %d\n", r.Records, r.LedgerEntries)
	if r.StateHashMatches() {
		fmt.Fprintf(w, "Ledger state hash: ok %s\n", r.ComputedStateHash)
	} else {
		fmt.Fprintf(w, "Ledger state hash: MISMATCH stored=%s computed=%s\n", r.StoredStateHash, r.ComputedStateHash)
	}

	problems := []struct {
		label string
		ids   []string
	}{
		{"tampered records", r.TamperedRecords},
		{"invalid signatures", r.InvalidSignatures},
		{"records missing from ledger", r.OrphanRecords},
		{"ledger entries without record", r.MissingRecords},
		{"ledger hash mismatches", r.HashMismatches},
		{"records without checkpoint", r.PendingRecords},
		{"stale checkpoints", r.StaleCheckpoints},
	}
	for _, p := range problems {
		if len(p.ids) > 0 {
			fmt.Fprintf(w, "%s: %s\n", p.label, strings.Join(p.ids, ", "))
		}
	}

	if r.OK() {
		fmt.Fprintln(w, "OK")
	}
}
