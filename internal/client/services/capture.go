package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/actionkeeper/internal/canonical"
	"github.com/dmitrijs2005/actionkeeper/internal/client/keyvault"
	"github.com/dmitrijs2005/actionkeeper/internal/client/models"
	"github.com/dmitrijs2005/actionkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/actionkeeper/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/actionkeeper/internal/common"
	"github.com/dmitrijs2005/actionkeeper/internal/dbx"
	"github.com/dmitrijs2005/actionkeeper/internal/logging"
)

// CaptureService records actions on the device.
//
// Contract:
//   - SaveActionLocally: validate, hash, sign, store, append to the ledger
//     and checkpoint the ledger state hash, in that order.
//   - GetAllLocalActions: return every stored record, with no side effects.
//   - GetLocalAction, CountLocalActions: single-record lookup and count.
//   - VerifyLocalLedger: re-check hashes, signatures and the ledger.
//   - LedgerState: stored checkpoint and freshly computed state hash.
//
// All methods honour context cancellation.
type CaptureService interface {
	SaveActionLocally(ctx context.Context, p models.Payload) (*models.ActionRecord, error)
	GetAllLocalActions(ctx context.Context) ([]models.ActionRecord, error)
	GetLocalAction(ctx context.Context, id string) (*models.ActionRecord, error)
	CountLocalActions(ctx context.Context) (int, error)
	VerifyLocalLedger(ctx context.Context) (*models.AuditReport, error)
	LedgerState(ctx context.Context) (stored, computed string, err error)
}

type captureService struct {
	// mu serialises saves on this device so that the ledger append, the
	// state hash computation and the checkpoint write form one critical
	// section.
	mu sync.Mutex

	db    *sql.DB
	repos repomanager.RepositoryManager
	vault keyvault.KeyVault
	log   logging.Logger
	now   func() time.Time
}

// NewCaptureService wires a CaptureService. A nil now defaults to time.Now.
func NewCaptureService(db *sql.DB, repos repomanager.RepositoryManager, vault keyvault.KeyVault, log logging.Logger, now func() time.Time) CaptureService {
	if now == nil {
		now = time.Now
	}
	return &captureService{
		db:    db,
		repos: repos,
		vault: vault,
		log:   log.With("component", "capture"),
		now:   now,
	}
}

func (s *captureService) SaveActionLocally(ctx context.Context, p models.Payload) (*models.ActionRecord, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := models.NewActionRecord(p, s.now())

	hash, err := canonical.ActionHash(rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrHashOrSign, err)
	}
	rec.ActionHash = hash

	// Signing happens before any write, so a missing key leaves every
	// store untouched.
	sig, err := s.vault.Sign(ctx, hash)
	if err != nil {
		return nil, classifySignError(err)
	}
	rec.Signature = sig

	var entry *models.LedgerEntry
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		actionsRepo := s.repos.Actions(tx)
		ledgerRepo := s.repos.Ledger(tx)
		meta := metadata.NewMetaStore(s.repos.Metadata(tx))

		if err := actionsRepo.CreateOrUpdate(ctx, &rec); err != nil {
			return err
		}

		entry, err = ledgerRepo.Append(ctx, &models.LedgerEntry{
			Type:    models.EntryTypeActionAdd,
			Payload: models.LedgerPayload{ActionID: rec.ID, ActionHash: hash},
			TS:      models.FormatTimestamp(s.now()),
		})
		if err != nil {
			return err
		}

		state, err := ledgerRepo.ComputeStateHash(ctx)
		if err != nil {
			return err
		}

		if err := meta.PutLedgerStateHash(ctx, state); err != nil {
			return fmt.Errorf("failed to store ledger state hash: %w", err)
		}

		rec.LedgerStateHash = state
		return actionsRepo.CreateOrUpdate(ctx, &rec)
	})
	if err != nil {
		s.log.Error(ctx, "save action failed", "id", rec.ID, "err", err)
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	s.log.Info(ctx, "action saved",
		"id", rec.ID,
		"ledger_index", entry.Index,
		"action_hash", rec.ActionHash,
		"ledger_state_hash", rec.LedgerStateHash,
	)
	return &rec, nil
}

func (s *captureService) GetAllLocalActions(ctx context.Context) ([]models.ActionRecord, error) {
	items, err := s.repos.Actions(s.db).GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	return items, nil
}

// GetLocalAction returns common.ErrorNotFound when no record has this id.
func (s *captureService) GetLocalAction(ctx context.Context, id string) (*models.ActionRecord, error) {
	rec, err := s.repos.Actions(s.db).GetByID(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	return rec, nil
}

func (s *captureService) CountLocalActions(ctx context.Context) (int, error) {
	n, err := s.repos.Actions(s.db).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	return n, nil
}

func (s *captureService) LedgerState(ctx context.Context) (string, string, error) {
	stored, err := metadata.NewMetaStore(s.repos.Metadata(s.db)).LedgerStateHash(ctx)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	computed, err := s.repos.Ledger(s.db).ComputeStateHash(ctx)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	return stored, computed, nil
}

// classifySignError keeps errors that already carry a kernel sentinel and
// treats anything else (key store I/O) as a storage failure.
func classifySignError(err error) error {
	switch {
	case errors.Is(err, common.ErrKeyNotFound),
		errors.Is(err, common.ErrHashOrSign),
		errors.Is(err, common.ErrInvalidKey),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
}
