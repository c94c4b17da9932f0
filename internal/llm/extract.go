package llm

import "strings"

// ExtractJSON returns the span from the first '{' to the last '}' of raw,
// inclusive. Braces inside JSON strings are not treated specially; the span is
// meant to be handed to a real decoder.
func ExtractJSON(raw string) (string, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < 0 || start > end {
		return "", &ExtractionError{Raw: raw}
	}
	return raw[start : end+1], nil
}
