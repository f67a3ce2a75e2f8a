package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/actionkeeper/internal/client/models"
	"github.com/dmitrijs2005/actionkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/actionkeeper/internal/common"
	"github.com/dmitrijs2005/actionkeeper/internal/cryptox"
	"github.com/dmitrijs2005/actionkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCapture struct {
	stored, computed string
	stateErr         error

	saved   []models.Payload
	saveErr error

	list    []models.ActionRecord
	listErr error
	count   int

	report    *models.AuditReport
	verifyErr error
}

func (f *fakeCapture) SaveActionLocally(_ context.Context, p models.Payload) (*models.ActionRecord, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.saved = append(f.saved, p)
	rec := models.NewActionRecord(p, time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
	rec.ActionHash = strings.Repeat("a", 64)
	rec.LedgerStateHash = strings.Repeat("b", 64)
	return &rec, nil
}

func (f *fakeCapture) GetAllLocalActions(context.Context) ([]models.ActionRecord, error) {
	return f.list, f.listErr
}

func (f *fakeCapture) GetLocalAction(_ context.Context, id string) (*models.ActionRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	for i := range f.list {
		if f.list[i].ID == id {
			return &f.list[i], nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeCapture) CountLocalActions(context.Context) (int, error) {
	return f.count, f.listErr
}

func (f *fakeCapture) VerifyLocalLedger(context.Context) (*models.AuditReport, error) {
	return f.report, f.verifyErr
}

func (f *fakeCapture) LedgerState(context.Context) (string, string, error) {
	return f.stored, f.computed, f.stateErr
}

type fakeMeta struct {
	entries []metadata.Entry
	err     error
}

func (f *fakeMeta) Get(context.Context, string) ([]byte, error)    { return nil, nil }
func (f *fakeMeta) Set(context.Context, string, []byte) error      { return nil }
func (f *fakeMeta) List(context.Context) ([]metadata.Entry, error) { return f.entries, f.err }

type fakeVault struct {
	pub string
	err error
}

func (f *fakeVault) Generate(context.Context) (string, error) {
	f.pub, f.err = "UFVC", nil
	return f.pub, nil
}
func (f *fakeVault) Sign(context.Context, string) (string, error) { return "", f.err }
func (f *fakeVault) ExportPublicKey(context.Context) (string, error) {
	return f.pub, f.err
}

func newTestApp(fc *fakeCapture, fv *fakeVault, input string) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	return NewApp(fc, fv, nil, logging.Discard(), strings.NewReader(input), &out), &out
}

func TestKeygenAndPublicKey(t *testing.T) {
	ctx := context.Background()
	fv := &fakeVault{err: common.ErrKeyNotFound}
	app, out := newTestApp(&fakeCapture{}, fv, "")

	require.ErrorIs(t, app.PublicKey(ctx), common.ErrKeyNotFound)
	assert.Contains(t, out.String(), "run keygen first")

	out.Reset()
	require.NoError(t, app.Keygen(ctx))
	assert.Contains(t, out.String(), "Public key: UFVC")

	out.Reset()
	require.NoError(t, app.PublicKey(ctx))
	assert.Equal(t, "UFVC\n", out.String())
}

func TestAdd_PromptsAndSaves(t *testing.T) {
	evidence := filepath.Join(t.TempDir(), "before.jpg")
	require.NoError(t, os.WriteFile(evidence, []byte("abc"), 0o600))

	input := strings.Join([]string{
		"Planted trees",
		"Community planting",
		"",
		"Recife",
		"trees=120",
		"area_ha=0.5",
		"",
		evidence,
		"",
	}, "\n")

	fc := &fakeCapture{}
	app, out := newTestApp(fc, &fakeVault{pub: "UFVC"}, input)

	require.NoError(t, app.Add(context.Background()))
	require.Len(t, fc.saved, 1)

	p := fc.saved[0]
	assert.Equal(t, "Planted trees", p.Title)
	assert.Equal(t, "Community planting", p.Description)
	require.NotNil(t, p.Location)
	assert.Equal(t, "Recife", *p.Location)
	assert.Equal(t, models.Metrics{"trees": 120.0, "area_ha": 0.5}, p.Metrics)
	require.Len(t, p.Media, 1)
	assert.Equal(t, models.Media{Name: "before.jpg", Hash: cryptox.Sha256Hex("abc"), Size: 3}, p.Media[0])

	assert.Contains(t, out.String(), "Action saved.")
	assert.Contains(t, out.String(), "location: Recife")
}

func TestAdd_RejectsEmptyTitle(t *testing.T) {
	fc := &fakeCapture{}
	app, _ := newTestApp(fc, &fakeVault{}, "\n\n\n\n\n")

	err := app.Add(context.Background())
	require.ErrorIs(t, err, common.ErrInvalidPayload)
	assert.Empty(t, fc.saved)
}

func TestAdd_MissingEvidenceFile(t *testing.T) {
	fc := &fakeCapture{}
	input := "t\n\n\n\n" + filepath.Join(t.TempDir(), "nope.jpg") + "\n\n"
	app, _ := newTestApp(fc, &fakeVault{}, input)

	require.Error(t, app.Add(context.Background()))
	assert.Empty(t, fc.saved)
}

func TestSaveAction_NoKey(t *testing.T) {
	fc := &fakeCapture{saveErr: common.ErrKeyNotFound}
	app, out := newTestApp(fc, &fakeVault{}, "")

	_, err := app.SaveAction(context.Background(), models.Payload{Title: "x"})
	require.ErrorIs(t, err, common.ErrKeyNotFound)
	assert.Contains(t, out.String(), "run keygen first")
}

func TestList(t *testing.T) {
	ctx := context.Background()
	loc := "Recife"
	fc := &fakeCapture{list: []models.ActionRecord{
		{ID: "id-1", Title: "first", Timestamp: "2026-01-01T00:00:00.000Z", Location: &loc, Media: []models.Media{}},
		{ID: "id-2", Title: "second", Timestamp: "2026-01-02T00:00:00.000Z", Media: []models.Media{}},
	}}
	app, out := newTestApp(fc, &fakeVault{}, "")

	require.NoError(t, app.List(ctx))
	assert.Contains(t, out.String(), "id-1  2026-01-01T00:00:00.000Z  first")
	assert.Contains(t, out.String(), "id-2")

	out.Reset()
	require.NoError(t, app.ListJSON(ctx))
	var decoded []models.ActionRecord
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, fc.list, decoded)

	out.Reset()
	fc.list = nil
	require.NoError(t, app.List(ctx))
	assert.Equal(t, "No actions recorded.\n", out.String())

	fc.listErr = errors.New("boom")
	require.Error(t, app.List(ctx))
	require.Error(t, app.ListJSON(ctx))
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	fc := &fakeCapture{report: &models.AuditReport{Records: 1, LedgerEntries: 1, StoredStateHash: "h", ComputedStateHash: "h"}}
	app, out := newTestApp(fc, &fakeVault{}, "")

	require.NoError(t, app.Verify(ctx))
	assert.Contains(t, out.String(), "OK")

	out.Reset()
	fc.report.TamperedRecords = []string{"id-1"}
	fc.report.StoredStateHash = "x"
	require.ErrorIs(t, app.Verify(ctx), ErrLedgerInconsistent)
	assert.Contains(t, out.String(), "tampered records: id-1")
	assert.Contains(t, out.String(), "MISMATCH")

	fc.verifyErr = common.ErrStorage
	require.ErrorIs(t, app.Verify(ctx), common.ErrStorage)
}

func TestMediaFromFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(a, nil, 0o600))

	media, err := MediaFromFiles([]string{a})
	require.NoError(t, err)
	assert.Equal(t, []models.Media{{Name: "a.txt", Hash: cryptox.Sha256Hex(""), Size: 0}}, media)

	media, err = MediaFromFiles(nil)
	require.NoError(t, err)
	assert.Empty(t, media)
}

func TestInfo(t *testing.T) {
	ctx := context.Background()
	fc := &fakeCapture{computed: cryptox.Sha256Hex("")}
	app, out := newTestApp(fc, &fakeVault{err: common.ErrKeyNotFound}, "")

	require.NoError(t, app.Info(ctx))
	assert.Contains(t, out.String(), "Ledger: empty")
	assert.Contains(t, out.String(), "Actions: 0")
	assert.Contains(t, out.String(), "Device key: (no key)")

	out.Reset()
	fc.stored, fc.computed = "h", "h"
	app.meta = &fakeMeta{entries: []metadata.Entry{{Key: "ledgerStateHash", Size: 64, UpdatedAt: "2026-10-18T10:00:00.000Z"}}}
	require.NoError(t, app.Info(ctx))
	assert.Contains(t, out.String(), "Ledger state hash: h")
	assert.Contains(t, out.String(), "ledgerStateHash")
	assert.Contains(t, out.String(), "64 bytes")

	out.Reset()
	fc.computed = "x"
	fc.count = 3
	require.NoError(t, app.Info(ctx))
	assert.Contains(t, out.String(), "MISMATCH")
	assert.Contains(t, out.String(), "Actions: 3")

	app.meta = &fakeMeta{err: common.ErrStorage}
	require.ErrorIs(t, app.Info(ctx), common.ErrStorage)

	fc.stateErr = common.ErrStorage
	require.ErrorIs(t, app.Info(ctx), common.ErrStorage)
}

func TestShow(t *testing.T) {
	ctx := context.Background()
	rec := models.ActionRecord{
		ID:          "rec-1",
		Title:       "Planted trees",
		Description: "Community planting",
		Timestamp:   "2026-03-14T12:00:00.000Z",
		ActionHash:  strings.Repeat("a", 64),
		Signature:   "c2ln",
	}
	fc := &fakeCapture{list: []models.ActionRecord{rec}}
	app, out := newTestApp(fc, &fakeVault{}, "")

	require.NoError(t, app.Show(ctx, "rec-1"))
	assert.Contains(t, out.String(), "Planted trees")
	assert.Contains(t, out.String(), "description: Community planting")
	assert.Contains(t, out.String(), "signature: c2ln")

	out.Reset()
	require.ErrorIs(t, app.Show(ctx, "nope"), common.ErrorNotFound)
	assert.Contains(t, out.String(), "No action with id nope.")

	fc.listErr = common.ErrStorage
	require.ErrorIs(t, app.Show(ctx, "rec-1"), common.ErrStorage)
}
