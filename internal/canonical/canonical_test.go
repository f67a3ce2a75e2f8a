package canonical

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/dmitrijs2005/actionkeeper/internal/client/models"
	"github.com/dmitrijs2005/actionkeeper/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mediaHash = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

func strPtr(s string) *string { return &s }

func sampleRecord() models.ActionRecord {
	return models.ActionRecord{
		ID:          "4f9c2a1e-7b3d-4c59-9e21-0a8b6f3d2c11",
		Title:       "Planted trees",
		Description: "Community planting",
		Timestamp:   "2026-03-14T12:26:53.589Z",
		Location:    strPtr("Recife"),
		Metrics:     models.Metrics{"trees": 120, "area_ha": 0.5},
		Media:       []models.Media{{Name: "before.jpg", Hash: mediaHash, Size: 2048}},
	}
}

func TestCanonicalize_GoldenString(t *testing.T) {
	got, err := Canonicalize(sampleRecord())
	require.NoError(t, err)

	want := `{"id":"4f9c2a1e-7b3d-4c59-9e21-0a8b6f3d2c11",` +
		`"title":"Planted trees",` +
		`"description":"Community planting",` +
		`"timestamp":"2026-03-14T12:26:53.589Z",` +
		`"location":"Recife",` +
		`"metrics":{"area_ha":0.5,"trees":120},` +
		`"media":[{"name":"before.jpg","hash":"` + mediaHash + `","size":2048}]}`
	assert.Equal(t, want, got)
}

func TestCanonicalize_AbsentOptionalFields(t *testing.T) {
	rec := models.ActionRecord{ID: "id", Title: "t", Description: "d", Timestamp: "ts"}

	got, err := Canonicalize(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"id","title":"t","description":"d","timestamp":"ts","location":null,"metrics":null,"media":[]}`, got)

	rec.Metrics = models.Metrics{}
	rec.Media = []models.Media{}
	again, err := Canonicalize(rec)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestCanonicalize_ExcludesDerivedFields(t *testing.T) {
	rec := sampleRecord()
	base, err := Canonicalize(rec)
	require.NoError(t, err)

	rec.ActionHash = "aa"
	rec.Signature = "bb"
	rec.LedgerStateHash = "cc"
	withDerived, err := Canonicalize(rec)
	require.NoError(t, err)

	assert.Equal(t, base, withDerived)
	assert.NotContains(t, withDerived, "actionHash")
	assert.NotContains(t, withDerived, "signature")
	assert.NotContains(t, withDerived, "ledgerStateHash")
}

func TestCanonicalize_DeterministicAcrossInsertionOrderAndNumberTypes(t *testing.T) {
	a := sampleRecord()
	a.Metrics = models.Metrics{}
	a.Metrics["trees"] = 120
	a.Metrics["area_ha"] = 0.5
	a.Metrics["detail"] = map[string]any{"z": 1, "a": "x"}

	b := sampleRecord()
	b.Metrics = models.Metrics{}
	b.Metrics["detail"] = map[string]any{"a": "x", "z": json.Number("1")}
	b.Metrics["area_ha"] = json.Number("0.50")
	b.Metrics["trees"] = int64(120)

	ca, err := Canonicalize(a)
	require.NoError(t, err)
	cb, err := Canonicalize(b)
	require.NoError(t, err)
	assert.Equal(t, ca, cb)

	ha, err := ActionHash(a)
	require.NoError(t, err)
	hb, err := ActionHash(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
}

func TestCanonicalize_JSONRoundTripIsStable(t *testing.T) {
	rec := sampleRecord()
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var back models.ActionRecord
	require.NoError(t, json.Unmarshal(data, &back))

	c1, err := Canonicalize(rec)
	require.NoError(t, err)
	c2, err := Canonicalize(back)
	require.NoError(t, err)
	assert.Equal(t, c1, c2)
}

func TestCanonicalize_MediaOrderMatters(t *testing.T) {
	rec := sampleRecord()
	rec.Media = []models.Media{
		{Name: "a.jpg", Hash: mediaHash, Size: 1},
		{Name: "b.jpg", Hash: mediaHash, Size: 2},
	}
	first, err := Canonicalize(rec)
	require.NoError(t, err)

	rec.Media[0], rec.Media[1] = rec.Media[1], rec.Media[0]
	swapped, err := Canonicalize(rec)
	require.NoError(t, err)

	assert.NotEqual(t, first, swapped)
}

func TestCanonicalize_NoHTMLEscaping(t *testing.T) {
	rec := models.ActionRecord{ID: "id", Title: "Rios <limpos> & vivos", Timestamp: "ts"}
	got, err := Canonicalize(rec)
	require.NoError(t, err)
	assert.Contains(t, got, `"title":"Rios <limpos> & vivos"`)
}

func TestCanonicalize_RejectsUnsupportedMetrics(t *testing.T) {
	rec := sampleRecord()
	rec.Metrics = models.Metrics{"bad": struct{}{}}
	_, err := Canonicalize(rec)
	require.Error(t, err)

	rec.Metrics = models.Metrics{"nan": math.NaN()}
	_, err = Canonicalize(rec)
	require.Error(t, err)
}

func TestActionHash_AvalancheOnSingleCharacter(t *testing.T) {
	rec := sampleRecord()
	h1, err := ActionHash(rec)
	require.NoError(t, err)
	require.Len(t, h1, 64)

	rec.Title = "Planted treez"
	h2, err := ActionHash(rec)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)

	c, err := Canonicalize(sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, cryptox.Sha256Hex(c), h1)
}

func TestCanonicalize_RejectsInvalidUTF8(t *testing.T) {
	a := sampleRecord()
	a.Title = "tree\xff"
	b := sampleRecord()
	b.Title = "tree\xfe"

	_, err := ActionHash(a)
	require.ErrorIs(t, err, ErrInvalidUTF8)
	_, err = ActionHash(b)
	require.ErrorIs(t, err, ErrInvalidUTF8)

	tests := map[string]func(r *models.ActionRecord){
		"location":      func(r *models.ActionRecord) { r.Location = strPtr("\xc3") },
		"media name":    func(r *models.ActionRecord) { r.Media[0].Name = "x\xff" },
		"metrics key":   func(r *models.ActionRecord) { r.Metrics = models.Metrics{"\xff": 1} },
		"metrics value": func(r *models.ActionRecord) { r.Metrics = models.Metrics{"k": []any{"\xfe"}} },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			r := sampleRecord()
			mutate(&r)
			_, err := Canonicalize(r)
			require.ErrorIs(t, err, ErrInvalidUTF8)
		})
	}
}
