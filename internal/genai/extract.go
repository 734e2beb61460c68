package genai

import (
	"encoding/json"
	"strings"
)

// ExtractJSON pulls a JSON value out of free-form model output. Fallback
// order: direct parse of the fence-stripped text, then the outermost
// bracketed/braced substring whose opening delimiter appears first in the
// text. The order matters: an object payload usually contains an array, and
// scanning for brackets first would strip away the enclosing object. It never
// fails hard; ok=false means no parsable JSON was found.
func ExtractJSON(text string) (json.RawMessage, bool) {
	t := stripCodeFences(text)
	if t == "" {
		return nil, false
	}

	if raw, ok := tryParse(t); ok {
		return raw, true
	}
	objFirst := strings.IndexByte(t, '{')
	arrFirst := strings.IndexByte(t, '[')
	if objFirst != -1 && (arrFirst == -1 || objFirst < arrFirst) {
		if raw, ok := tryOutermost(t, '{', '}'); ok {
			return raw, true
		}
		return tryOutermost(t, '[', ']')
	}
	if raw, ok := tryOutermost(t, '[', ']'); ok {
		return raw, true
	}
	return tryOutermost(t, '{', '}')
}

func stripCodeFences(text string) string {
	t := strings.TrimSpace(text)
	if strings.HasPrefix(t, "```") {
		t = strings.ReplaceAll(t, "```json", "")
		t = strings.ReplaceAll(t, "```JSON", "")
		t = strings.ReplaceAll(t, "```", "")
	}
	return strings.TrimSpace(t)
}

func tryParse(s string) (json.RawMessage, bool) {
	var v interface{}
	if json.Unmarshal([]byte(s), &v) != nil {
		return nil, false
	}
	// Only objects and arrays count; a bare string or number is not a payload.
	switch v.(type) {
	case map[string]interface{}, []interface{}:
		return json.RawMessage(s), true
	}
	return nil, false
}

func tryOutermost(s string, open, close byte) (json.RawMessage, bool) {
	i := strings.IndexByte(s, open)
	j := strings.LastIndexByte(s, close)
	if i == -1 || j <= i {
		return nil, false
	}
	return tryParse(s[i : j+1])
}
