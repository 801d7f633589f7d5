package engine

import (
	"encoding/json"
	"strings"

	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/domain"
)

// StatusOK is the engine's success marker; anything else is a failure for
// the action that carried it.
const StatusOK = "OK"

// Envelope is the loosely typed inbound event received on the Info channel.
// Data may be an object, a JSON-encoded string requiring a second parse, or
// absent; sequence lists may appear at several positions (see Sequences).
type Envelope struct {
	NS              string           `json:"ns"`
	Type            string           `json:"type"`
	Action          string           `json:"action"`
	Status          string           `json:"status"`
	Data            json.RawMessage  `json:"data"`
	Sequences       []map[string]any `json:"sequences"`
	IsDay           *bool            `json:"isDay"`
	CarID           string           `json:"carId"`
	Hex             string           `json:"hex"`
	Value           any              `json:"value"`
	BackgroundID    string           `json:"backgroundId"`
	BackgroundImage string           `json:"backgroundImage"`
}

// OK reports engine-side success for the carried action.
func (e *Envelope) OK() bool { return e.Status == StatusOK }

// ParseEnvelope decodes the outer event envelope. A failure here means the
// whole message is dropped by the caller.
func ParseEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

// DecodePayload resolves the semantic payload carried in data. A string data
// field gets a second JSON parse pass; parse failure means the message is
// unparseable and must be dropped (ok=false) rather than fabricating a
// payload. Absent data yields (nil, true).
func DecodePayload(data json.RawMessage) (any, bool) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil, true
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, false
		}
		var v any
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil, false
		}
		return v, true
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, false
	}
	return v, true
}

// ScreenshotURL extracts the capture result, which arrives either as the
// data string itself or under data.url.
func ScreenshotURL(data json.RawMessage) (string, bool) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return "", false
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil || s == "" {
			return "", false
		}
		// a JSON-encoded object may itself hide behind the string
		if strings.HasPrefix(strings.TrimSpace(s), "{") {
			var m map[string]any
			if err := json.Unmarshal([]byte(s), &m); err == nil {
				if u := Str(m, "url"); u != "" {
					return u, true
				}
			}
			return "", false
		}
		return s, true
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return "", false
	}
	if u := Str(m, "url"); u != "" {
		return u, true
	}
	return "", false
}

// NormalizeSequences probes the known payload positions in fixed order and
// returns the first match, normalized. The order is a contract:
//  1. payload.sequences
//  2. envelope-level sequences
//  3. payload itself when it is an array
//  4. envelope data.sequences (raw object form, skipping the string re-parse)
//  5. payload as a single sequence object, when it exposes an id-like field
// No match yields an empty list, never an error.
func NormalizeSequences(payload any, env *Envelope) []domain.Sequence {
	if m, ok := payload.(map[string]any); ok {
		if arr, ok := m["sequences"].([]any); ok {
			return normalizeList(arr)
		}
	}
	if len(env.Sequences) > 0 {
		out := make([]domain.Sequence, 0, len(env.Sequences))
		for _, m := range env.Sequences {
			out = append(out, NormalizeSequence(m))
		}
		return out
	}
	if arr, ok := payload.([]any); ok {
		return normalizeList(arr)
	}
	if len(env.Data) > 0 {
		var m map[string]any
		if err := json.Unmarshal(env.Data, &m); err == nil {
			if arr, ok := m["sequences"].([]any); ok {
				return normalizeList(arr)
			}
		}
	}
	if m, ok := payload.(map[string]any); ok && hasSequenceID(m) {
		return []domain.Sequence{NormalizeSequence(m)}
	}
	return []domain.Sequence{}
}

func normalizeList(arr []any) []domain.Sequence {
	out := make([]domain.Sequence, 0, len(arr))
	for _, v := range arr {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, NormalizeSequence(m))
	}
	return out
}

// NormalizeSequence flattens the competing field-name schemas of the
// discovery payload into the single Sequence shape. Fallback priority per
// field is fixed; defaults apply when every candidate is absent.
func NormalizeSequence(m map[string]any) domain.Sequence {
	id := Str(m, "sequenceId", "id", "SequenceId")
	if id == "" {
		id = "unknown"
	}
	name := Str(m, "displayName", "name", "DisplayName")
	if name == "" {
		name = id
	}
	category := domain.CategoryExterior
	if c := Str(m, "category", "Category"); strings.EqualFold(c, string(domain.CategoryInterior)) {
		category = domain.CategoryInterior
	}
	duration := Num(m, "duration", "Duration")
	if duration <= 0 {
		duration = 10
	}
	return domain.Sequence{
		ID:        id,
		Name:      name,
		Category:  category,
		Duration:  duration,
		Thumbnail: Str(m, "thumbnail", "Thumbnail"),
	}
}

func hasSequenceID(m map[string]any) bool {
	return Str(m, "sequenceId", "id", "SequenceId") != ""
}

// Str returns the first non-empty string among the candidate keys.
func Str(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// Num returns the first numeric value among the candidate keys, accepting
// both JSON numbers and numeric strings.
func Num(m map[string]any, keys ...string) float64 {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return v
		case string:
			var f float64
			if err := json.Unmarshal([]byte(v), &f); err == nil {
				return f
			}
		}
	}
	return 0
}
