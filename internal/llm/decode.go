package llm

import (
	"encoding/json"
	"fmt"

	"codeberg.org/snonux/hanzi/internal/phrase"
)

// Decode extracts the JSON object from a raw model response and decodes it
// into a phrase. Extraction failures and decode failures stay distinguishable.
func Decode(raw string) (phrase.Phrase, error) {
	var p phrase.Phrase

	candidate, err := ExtractJSON(raw)
	if err != nil {
		return p, err
	}

	if err := json.Unmarshal([]byte(candidate), &p); err != nil {
		return phrase.Phrase{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	p = p.Trimmed()
	if err := p.Validate(); err != nil {
		return phrase.Phrase{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return p, nil
}
