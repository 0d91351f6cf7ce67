// Package jsonutil extracts structured objects from LLM replies that may be
// wrapped in prose or markdown code fences.
//
// Extraction is a heuristic, not a validator: the object is assumed to span
// from the first '{' to the last '}' of the reply. Nothing here returns an
// error to the caller; an unusable reply yields an empty object.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Extraction is the outcome of pulling an object out of model text.
// Fallback is true when Object is empty because no usable payload was found.
type Extraction struct {
	Object   map[string]any
	Raw      string
	Fallback bool
	Reason   string
}

// ExtractObject locates the first '{' and the last '}' in text and parses the
// inclusive span as a JSON object.
func ExtractObject(text string) Extraction {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 {
		return fallback("", "no JSON object found")
	}
	if end < start {
		return fallback("", "closing brace precedes opening brace")
	}

	raw := text[start : end+1]
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return fallback(raw, fmt.Sprintf("invalid JSON: %v (text: %s)", err, preview(raw)))
	}
	if obj == nil {
		obj = map[string]any{}
	}
	return Extraction{Object: obj, Raw: raw}
}

// Normalize returns the object embedded in text, or an empty map.
func Normalize(text string) map[string]any {
	return ExtractObject(text).Object
}

// Decode extracts the embedded object and decodes it into T. The boolean is
// false when there was no object or it did not fit T.
func Decode[T any](text string) (T, bool) {
	var result T
	ext := ExtractObject(text)
	if ext.Fallback {
		return result, false
	}
	if err := json.Unmarshal([]byte(ext.Raw), &result); err != nil {
		var zero T
		return zero, false
	}
	return result, true
}

// HasKeys reports whether obj contains every key, matched exactly.
// encoding/json folds case when decoding into structs, so callers that
// require specific field names check them here first.
func HasKeys(obj map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := obj[k]; !ok {
			return false
		}
	}
	return true
}

func fallback(raw, reason string) Extraction {
	return Extraction{Object: map[string]any{}, Raw: raw, Fallback: true, Reason: reason}
}

func preview(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
