package activitylog

import (
	"encoding/json"
	"strings"
)

const redactedPlaceholder = "[REDACTED]"

var sensitiveKeyFragments = []string{"password", "token", "secret"}

func sensitiveKey(key string) bool {
	lowered := strings.ToLower(key)
	for _, fragment := range sensitiveKeyFragments {
		if strings.Contains(lowered, fragment) {
			return true
		}
	}
	return false
}

// RedactPayload masks credential-bearing values in a JSON document. Anything
// that fails to parse is dropped rather than stored raw.
func RedactPayload(raw []byte) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	redacted, err := json.Marshal(redactValue(doc))
	if err != nil {
		return nil
	}
	return redacted
}

func redactValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		for key, inner := range v {
			if sensitiveKey(key) {
				v[key] = redactedPlaceholder
				continue
			}
			v[key] = redactValue(inner)
		}
		return v
	case []any:
		for i := range v {
			v[i] = redactValue(v[i])
		}
		return v
	default:
		return value
	}
}
