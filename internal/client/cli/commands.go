package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/actionkeeper/internal/client/models"
	"github.com/dmitrijs2005/actionkeeper/internal/common"
	"github.com/dmitrijs2005/actionkeeper/internal/cryptox"
)

// ErrLedgerInconsistent is returned by Verify when the audit found problems.
var ErrLedgerInconsistent = errors.New("local ledger is inconsistent")

// Keygen creates (or replaces) the device key pair and prints the public key.
func (a *App) Keygen(ctx context.Context) error {
	pub, err := a.vault.Generate(ctx)
	if err != nil {
		a.log.Error(ctx, "key generation failed", "err", err)
		return err
	}
	fmt.Fprintf(a.out, "Device key generated.\nPublic key: %s\n", pub)
	return nil
}

// PublicKey prints the device public key.
func (a *App) PublicKey(ctx context.Context) error {
	pub, err := a.vault.ExportPublicKey(ctx)
	if err != nil {
		if errors.Is(err, common.ErrKeyNotFound) {
			fmt.Fprintln(a.out, "No device key yet, run keygen first.")
		}
		return err
	}
	fmt.Fprintln(a.out, pub)
	return nil
}

// Add interactively collects an action and saves it.
func (a *App) Add(ctx context.Context) error {
	p, err := a.promptPayload()
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	_, err = a.SaveAction(ctx, p)
	return err
}

// SaveAction stores p and prints the resulting record.
func (a *App) SaveAction(ctx context.Context, p models.Payload) (*models.ActionRecord, error) {
	rec, err := a.capture.SaveActionLocally(ctx, p)
	if err != nil {
		if errors.Is(err, common.ErrKeyNotFound) {
			fmt.Fprintln(a.out, "No device key yet, run keygen first.")
		} else {
			fmt.Fprintln(a.out, err.Error())
		}
		return nil, err
	}
	fmt.Fprintln(a.out, "Action saved.")
	printRecord(a.out, *rec)
	return rec, nil
}

// List prints every stored action.
func (a *App) List(ctx context.Context) error {
	items, err := a.capture.GetAllLocalActions(ctx)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No actions recorded.")
		return nil
	}
	for _, rec := range items {
		printRecord(a.out, rec)
	}
	return nil
}

// Show prints the record with the given id.
func (a *App) Show(ctx context.Context, id string) error {
	rec, err := a.capture.GetLocalAction(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			fmt.Fprintf(a.out, "No action with id %s.\n", id)
		} else {
			fmt.Fprintln(a.out, err.Error())
		}
		return err
	}
	printRecord(a.out, *rec)
	if rec.Description != "" {
		fmt.Fprintf(a.out, "    description: %s\n", rec.Description)
	}
	fmt.Fprintf(a.out, "    signature: %s\n", rec.Signature)
	return nil
}

// ListJSON writes every stored action as a JSON array.
func (a *App) ListJSON(ctx context.Context) error {
	items, err := a.capture.GetAllLocalActions(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// Verify audits the local store and prints the report.
func (a *App) Verify(ctx context.Context) error {
	report, err := a.capture.VerifyLocalLedger(ctx)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	printReport(a.out, report)
	if !report.OK() {
		return ErrLedgerInconsistent
	}
	return nil
}

// Info prints the ledger checkpoint, the key fingerprint and the metadata
// slots of the local store.
func (a *App) Info(ctx context.Context) error {
	stored, computed, err := a.capture.LedgerState(ctx)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	count, err := a.capture.CountLocalActions(ctx)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	fmt.Fprintf(a.out, "Actions: %d\n", count)
	switch {
	case stored == "" && computed == cryptox.Sha256Hex(""):
		fmt.Fprintln(a.out, "Ledger: empty")
	case stored == computed:
		fmt.Fprintf(a.out, "Ledger state hash: %s\n", computed)
	default:
		fmt.Fprintf(a.out, "Ledger state hash: MISMATCH stored=%s computed=%s\n", stored, computed)
	}

	fmt.Fprintf(a.out, "Device key: %s\n", a.getStatus(ctx))

	if a.meta == nil {
		return nil
	}
	entries, err := a.meta.List(ctx)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(a.out, "  %-16s %6d bytes  updated %s\n", e.Key, e.Size, e.UpdatedAt)
	}
	return nil
}

func (a *App) promptPayload() (models.Payload, error) {
	var p models.Payload

	title, err := GetSimpleText(a.reader, "Title:", a.out)
	if err != nil {
		return p, err
	}
	p.Title = title

	if p.Description, err = GetMultiline(a.reader, "Description:", a.out); err != nil {
		return p, err
	}

	location, err := GetSimpleText(a.reader, "Location (optional):", a.out)
	if err != nil {
		return p, err
	}
	if location != "" {
		p.Location = &location
	}

	lines, err := GetMetadata(a.reader, a.out)
	if err != nil {
		return p, err
	}
	if p.Metrics, err = models.MetricsFromStrings(lines); err != nil {
		return p, err
	}

	files, err := GetLines(a.reader, "Evidence files, one path per line (empty line to finish)", a.out)
	if err != nil {
		return p, err
	}
	if p.Media, err = MediaFromFiles(files); err != nil {
		return p, err
	}

	return p, p.Validate()
}

// MediaFromFiles hashes each file and returns its media descriptor, named
// after the file's base name.
func MediaFromFiles(paths []string) ([]models.Media, error) {
	media := make([]models.Media, 0, len(paths))
	for _, path := range paths {
		hash, size, err := cryptox.HashFile(path)
		if err != nil {
			return nil, err
		}
		media = append(media, models.Media{Name: filepath.Base(path), Hash: hash, Size: size})
	}
	return media, nil
}
