package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/actionkeeper/internal/canonical"
	"github.com/dmitrijs2005/actionkeeper/internal/client/keyvault"
	"github.com/dmitrijs2005/actionkeeper/internal/client/models"
	"github.com/dmitrijs2005/actionkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/actionkeeper/internal/common"
	"github.com/dmitrijs2005/actionkeeper/internal/cryptox"
)

// VerifyLocalLedger re-derives everything that can be re-derived from the
// local store and reports what does not match. It never modifies data.
//
// Signatures are checked against the current device key only; records
// signed before a key regeneration are reported as invalid.
func (s *captureService) VerifyLocalLedger(ctx context.Context) (*models.AuditReport, error) {
	records, err := s.repos.Actions(s.db).GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	entries, err := s.repos.Ledger(s.db).GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	stored, err := metadata.NewMetaStore(s.repos.Metadata(s.db)).LedgerStateHash(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	pub, err := s.vault.ExportPublicKey(ctx)
	if err != nil && !errors.Is(err, common.ErrKeyNotFound) {
		return nil, classifySignError(err)
	}

	report := &models.AuditReport{
		Records:         len(records),
		LedgerEntries:   len(entries),
		StoredStateHash: stored,
	}

	// State hash after each entry, keyed by action id.
	prefix := make(map[string]string, len(entries))
	byID := make(map[string]models.LedgerEntry, len(entries))
	var concat strings.Builder
	for _, e := range entries {
		concat.WriteString(e.Payload.ActionHash)
		prefix[e.Payload.ActionID] = cryptox.Sha256Hex(concat.String())
		byID[e.Payload.ActionID] = e
	}
	report.ComputedStateHash = cryptox.Sha256Hex(concat.String())

	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		seen[rec.ID] = true

		hash, err := canonical.ActionHash(rec)
		if err != nil || hash != rec.ActionHash {
			report.TamperedRecords = append(report.TamperedRecords, rec.ID)
		}

		if pub == "" || !keyvault.Verify(pub, rec.ActionHash, rec.Signature) {
			report.InvalidSignatures = append(report.InvalidSignatures, rec.ID)
		}

		e, ok := byID[rec.ID]
		if !ok {
			report.OrphanRecords = append(report.OrphanRecords, rec.ID)
			continue
		}
		if e.Payload.ActionHash != rec.ActionHash {
			report.HashMismatches = append(report.HashMismatches, rec.ID)
		}

		switch rec.LedgerStateHash {
		case "":
			report.PendingRecords = append(report.PendingRecords, rec.ID)
		case prefix[rec.ID]:
		default:
			report.StaleCheckpoints = append(report.StaleCheckpoints, rec.ID)
		}
	}

	for _, e := range entries {
		if !seen[e.Payload.ActionID] {
			report.MissingRecords = append(report.MissingRecords, e.Payload.ActionID)
		}
	}

	if report.OK() {
		s.log.Info(ctx, "ledger verified", "records", report.Records, "entries", report.LedgerEntries)
	} else {
		s.log.Warn(ctx, "ledger verification found problems",
			"tampered", len(report.TamperedRecords),
			"invalid_signatures", len(report.InvalidSignatures),
			"orphans", len(report.OrphanRecords),
			"missing", len(report.MissingRecords),
			"state_hash_matches", report.StateHashMatches(),
		)
	}
	return report, nil
}
