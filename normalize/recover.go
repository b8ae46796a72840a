package normalize

import (
	"encoding/json"
	"regexp"
)

// jsonBlockPattern greedily matches from the first '{' to the last '}',
// newlines included, so prose wrapped around a JSON object is stripped.
var jsonBlockPattern = regexp.MustCompile(`(?s)\{.*\}`)

// Recover turns an arbitrary upstream payload into a best-effort
// structured value. Strings are decoded as JSON, falling back to
// extracting an embedded JSON object from surrounding prose. A payload
// wrapped one level inside a "comparison" envelope field is unwrapped
// and decoded again. Recover never fails; irrecoverable input is
// returned unchanged.
func Recover(raw any) any {
	value := decodeText(raw)

	if obj, ok := value.(map[string]any); ok {
		if wrapped, ok := obj["comparison"]; ok {
			// The upstream envelope nests at most one level deep.
			return decodeText(wrapped)
		}
	}

	return value
}

// decodeText decodes a string value as JSON. If the full text is not
// valid JSON, the first brace-bounded substring is tried. Non-string
// values and undecodable strings pass through unchanged.
func decodeText(value any) any {
	text, ok := value.(string)
	if !ok {
		return value
	}

	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err == nil {
		return decoded
	}

	if block := jsonBlockPattern.FindString(text); block != "" {
		if err := json.Unmarshal([]byte(block), &decoded); err == nil {
			return decoded
		}
	}

	return text
}
