package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/actionkeeper/internal/common"
)

var (
	ErrIncorrectMetric = errors.New("metric item must be name=value")
	ErrIncorrectMedia  = errors.New("media item must be name:hash:size")
)

var sha256HexRe = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Payload is what the collection layer hands to the kernel. ID and
// Timestamp are normally empty and assigned at save time.
type Payload struct {
	ID          string  `json:"id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Timestamp   string  `json:"timestamp,omitempty"`
	Location    *string `json:"location,omitempty"`
	Metrics     Metrics `json:"metrics,omitempty"`
	Media       []Media `json:"media,omitempty"`
}

// ParsePayload decodes a JSON payload. Unknown fields, including extra
// attributes on media entries, are rejected rather than passed through.
func ParsePayload(data []byte) (Payload, error) {
	var p Payload

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	dec.UseNumber()
	if err := dec.Decode(&p); err != nil {
		return Payload{}, fmt.Errorf("%w: %w", common.ErrInvalidPayload, err)
	}
	if dec.More() {
		return Payload{}, fmt.Errorf("%w: trailing data after payload", common.ErrInvalidPayload)
	}

	if err := p.Validate(); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// Validate checks the payload at the kernel boundary.
func (p Payload) Validate() error {
	texts := map[string]string{
		"id":          p.ID,
		"title":       p.Title,
		"description": p.Description,
		"timestamp":   p.Timestamp,
	}
	if p.Location != nil {
		texts["location"] = *p.Location
	}
	for field, v := range texts {
		if !utf8.ValidString(v) {
			return fmt.Errorf("%w: %s is not valid UTF-8", common.ErrInvalidPayload, field)
		}
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title is required", common.ErrInvalidPayload)
	}
	if p.Timestamp != "" {
		if _, err := time.Parse(time.RFC3339Nano, p.Timestamp); err != nil {
			return fmt.Errorf("%w: timestamp %q is not ISO-8601", common.ErrInvalidPayload, p.Timestamp)
		}
	}
	for i, m := range p.Media {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("%w: media[%d]: %w", common.ErrInvalidPayload, i, err)
		}
	}
	for k, v := range p.Metrics {
		if !utf8.ValidString(k) {
			return fmt.Errorf("%w: metrics key %q is not valid UTF-8", common.ErrInvalidPayload, k)
		}
		if err := validateMetric(v); err != nil {
			return fmt.Errorf("%w: metrics[%s]: %w", common.ErrInvalidPayload, k, err)
		}
	}
	return nil
}

// Validate checks a single evidence descriptor.
func (m Media) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return errors.New("name is required")
	}
	if !utf8.ValidString(m.Name) {
		return errors.New("name is not valid UTF-8")
	}
	if !sha256HexRe.MatchString(m.Hash) {
		return fmt.Errorf("hash %q is not a lowercase hex SHA-256", m.Hash)
	}
	if m.Size < 0 {
		return fmt.Errorf("size %d is negative", m.Size)
	}
	return nil
}

func validateMetric(v any) error {
	switch x := v.(type) {
	case string:
		if !utf8.ValidString(x) {
			return errors.New("text is not valid UTF-8")
		}
		return nil
	case nil, bool, json.Number,
		float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return nil
	case map[string]any:
		for k, inner := range x {
			if !utf8.ValidString(k) {
				return fmt.Errorf("key %q is not valid UTF-8", k)
			}
			if err := validateMetric(inner); err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
		}
		return nil
	case Metrics:
		return validateMetric(map[string]any(x))
	case []any:
		for i, inner := range x {
			if err := validateMetric(inner); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported value of type %T", v)
	}
}

// MetricsFromStrings parses "name=value" items. Values that parse as
// numbers or booleans are stored as such, everything else as text.
func MetricsFromStrings(items []string) (Metrics, error) {
	if len(items) == 0 {
		return nil, nil
	}
	m := make(Metrics, len(items))
	for _, item := range items {
		name, value, ok := strings.Cut(item, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, ErrIncorrectMetric
		}
		value = strings.TrimSpace(value)
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			m[name] = f
		} else if value == "true" || value == "false" {
			m[name] = value == "true"
		} else {
			m[name] = value
		}
	}
	return m, nil
}

// MediaFromString parses a "name:hash:size" descriptor.
func MediaFromString(s string) (Media, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Media{}, ErrIncorrectMedia
	}
	size, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Media{}, ErrIncorrectMedia
	}
	m := Media{Name: parts[0], Hash: strings.ToLower(parts[1]), Size: size}
	if err := m.Validate(); err != nil {
		return Media{}, fmt.Errorf("%w: %w", ErrIncorrectMedia, err)
	}
	return m, nil
}
