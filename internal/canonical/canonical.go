// Package canonical turns an action record into the single deterministic
// string its actionHash is computed over.
//
// The string is a compact JSON object whose keys are written in this fixed
// order:
//
//	id, title, description, timestamp, location, metrics, media
//
// location and metrics are null when absent, media is [] when empty and each
// media entry is projected to {name, hash, size}. Metrics objects are written
// with keys in lexical order at every depth and all numbers are normalised to
// float64 before encoding, so two logically equal annexes always produce the
// same bytes. actionHash, signature and ledgerStateHash are never included.
// Strings that are not valid UTF-8 are rejected instead of being replaced
// with U+FFFD, which would let distinct records share a hash.
package canonical

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/actionkeeper/internal/client/models"
	"github.com/dmitrijs2005/actionkeeper/internal/cryptox"
)

type mediaView struct {
	Name string `json:"name"`
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// Canonicalize returns the canonical string of a.
func Canonicalize(a models.ActionRecord) (string, error) {
	if err := checkText(a); err != nil {
		return "", err
	}

	metrics, err := normalize(map[string]any(a.Metrics))
	if err != nil {
		return "", fmt.Errorf("canonical metrics: %w", err)
	}
	if len(a.Metrics) == 0 {
		metrics = nil
	}

	var location any
	if a.Location != nil {
		location = *a.Location
	}

	media := make([]mediaView, 0, len(a.Media))
	for _, m := range a.Media {
		media = append(media, mediaView{Name: m.Name, Hash: m.Hash, Size: m.Size})
	}

	fields := []struct {
		key   string
		value any
	}{
		{"id", a.ID},
		{"title", a.Title},
		{"description", a.Description},
		{"timestamp", a.Timestamp},
		{"location", location},
		{"metrics", metrics},
		{"media", media},
	}

	var b strings.Builder
	b.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := encode(f.key)
		if err != nil {
			return "", err
		}
		val, err := encode(f.value)
		if err != nil {
			return "", fmt.Errorf("canonical %s: %w", f.key, err)
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')

	return b.String(), nil
}

// ActionHash is Sha256Hex(Canonicalize(a)).
func ActionHash(a models.ActionRecord) (string, error) {
	s, err := Canonicalize(a)
	if err != nil {
		return "", err
	}
	return cryptox.Sha256Hex(s), nil
}

// ErrInvalidUTF8 is returned for records holding text that is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("invalid UTF-8")

func checkText(a models.ActionRecord) error {
	texts := map[string]string{
		"id":          a.ID,
		"title":       a.Title,
		"description": a.Description,
		"timestamp":   a.Timestamp,
	}
	if a.Location != nil {
		texts["location"] = *a.Location
	}
	for field, v := range texts {
		if !utf8.ValidString(v) {
			return fmt.Errorf("canonical %s: %w", field, ErrInvalidUTF8)
		}
	}
	for i, m := range a.Media {
		if !utf8.ValidString(m.Name) || !utf8.ValidString(m.Hash) {
			return fmt.Errorf("canonical media[%d]: %w", i, ErrInvalidUTF8)
		}
	}
	return nil
}

// encode marshals v without HTML escaping and without the trailing newline
// json.Encoder appends. Map keys come out sorted.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func normalize(v any) (any, error) {
	switch x := v.(type) {
	case string:
		if !utf8.ValidString(x) {
			return nil, ErrInvalidUTF8
		}
		return x, nil
	case nil, bool:
		return x, nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil, err
		}
		return finite(f)
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case int:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	case uint16:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case models.Metrics:
		return normalize(map[string]any(x))
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, inner := range x {
			if !utf8.ValidString(k) {
				return nil, fmt.Errorf("key %q: %w", k, ErrInvalidUTF8)
			}
			n, err := normalize(inner)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, inner := range x {
			n, err := normalize(inner)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %T", v)
	}
}

func finite(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite number %v", f)
	}
	return f, nil
}
