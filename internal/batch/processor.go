// Package batch reads phrase lists for bulk import.
package batch

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"codeberg.org/snonux/hanzi/internal/phrase"
)

// Entry is one line of a batch file
type Entry struct {
	Line   int
	Phrase phrase.Phrase
	// NeedsQuery is set when only the original text was given and the
	// rest has to come from the model
	NeedsQuery bool
}

// ReadBatchFile reads phrases from a file, one per line.
// Supported formats:
//   - "你好"                  queried through the model
//   - "你好 = hello"          saved as given
//   - "你好 [nǐ hǎo] = hello" saved as given, with pronunciation
//
// Blank lines and lines starting with '#' are skipped, as are lines with an
// empty side of the '='.
func ReadBatchFile(filename string) ([]Entry, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if entry, ok := ParseLine(scanner.Text()); ok {
			entry.Line = lineNo
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	return entries, nil
}

// ParseLine parses a single batch line. The boolean is false for lines that
// carry no phrase.
func ParseLine(line string) (Entry, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Entry{}, false
	}

	left, translation, found := strings.Cut(line, "=")
	if !found {
		return Entry{Phrase: phrase.Phrase{Original: line}, NeedsQuery: true}, true
	}

	left = strings.TrimSpace(left)
	translation = strings.TrimSpace(translation)
	if left == "" || translation == "" {
		return Entry{}, false
	}

	original, pronunciation := splitPronunciation(left)
	if original == "" {
		return Entry{}, false
	}

	return Entry{Phrase: phrase.Phrase{
		Original:      original,
		Pronunciation: pronunciation,
		Translation:   translation,
	}}, true
}

// splitPronunciation separates "你好 [nǐ hǎo]" into its two parts
func splitPronunciation(s string) (original, pronunciation string) {
	open := strings.LastIndexByte(s, '[')
	if open < 0 || !strings.HasSuffix(s, "]") {
		return s, ""
	}
	return strings.TrimSpace(s[:open]), strings.TrimSpace(s[open+1 : len(s)-1])
}
