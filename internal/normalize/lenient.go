// Package normalize maps the engine's and upstream providers' heterogeneous
// JSON shapes onto the dashboard's public contracts. Every function here is
// pure: missing or malformed input degrades to a documented default instead
// of an error.
package normalize

import (
	"bytes"
	"encoding/json"
)

// Present reports whether raw carries a usable value: not absent, not null,
// and not an empty string, list or object, and not zero/false.
func Present(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 {
		return false
	}
	switch string(t) {
	case "null", "false", `""`, "[]", "{}", "0":
		return false
	}
	switch t[0] {
	case '[':
		var l []json.RawMessage
		return json.Unmarshal(t, &l) == nil && len(l) > 0
	case '{':
		var m map[string]json.RawMessage
		return json.Unmarshal(t, &m) == nil && len(m) > 0
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		f, ok := number(t)
		return ok && f != 0
	}
	return true
}

func object(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

func list(raw json.RawMessage) ([]json.RawMessage, bool) {
	var l []json.RawMessage
	if err := json.Unmarshal(raw, &l); err != nil || l == nil {
		return nil, false
	}
	return l, true
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

func number(raw json.RawMessage) (float64, bool) {
	if isNull(raw) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return f, true
}

func str(raw json.RawMessage) (string, bool) {
	if isNull(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// numberField returns m[key] when it is a JSON number. null counts as absent.
func numberField(m map[string]json.RawMessage, key string) *float64 {
	raw, ok := m[key]
	if !ok {
		return nil
	}
	f, ok := number(raw)
	if !ok {
		return nil
	}
	return &f
}

func stringField(m map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := m[key]
	if !ok {
		return "", false
	}
	return str(raw)
}

// firstString returns the first key holding a string value.
func firstString(m map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		if s, ok := stringField(m, k); ok {
			return s
		}
	}
	return ""
}

// firstNumber returns the first key holding a numeric value, else def.
func firstNumber(m map[string]json.RawMessage, def float64, keys ...string) float64 {
	for _, k := range keys {
		if f := numberField(m, k); f != nil {
			return *f
		}
	}
	return def
}
