package gate

import (
	"bytes"
	"encoding/json"
	"math"
)

// Loose-decode helpers. Rules decode payloads into generic JSON so a
// single mistyped field surfaces as one violation instead of aborting
// the whole decode; every check after it still runs.

func decodeObject(payload json.RawMessage) (map[string]any, bool) {
	if isNullPayload(payload) {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, false
	}
	return m, true
}

func isNullPayload(payload json.RawMessage) bool {
	return len(payload) == 0 || bytes.Equal(bytes.TrimSpace(payload), []byte("null"))
}

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asNumber(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asList(v any) ([]any, bool) {
	l, ok := v.([]any)
	return l, ok
}

func isIntegral(f float64) bool {
	return f == math.Trunc(f) && !math.IsInf(f, 0) && !math.IsNaN(f)
}
