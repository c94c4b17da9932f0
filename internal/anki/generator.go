// Package anki exports saved phrases as Anki import files.
package anki

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"codeberg.org/snonux/hanzi/internal/phrase"
)

// Card is a single Anki note: the phrase on the front, its reading and
// meaning on the back
type Card struct {
	Front string
	Back  string
	Tags  string
}

// CardFromPhrase builds the card for a saved phrase. The language code is
// used as tag.
func CardFromPhrase(p phrase.Phrase) Card {
	back := p.Translation
	if p.Pronunciation != "" {
		back = p.Pronunciation + "<br>" + p.Translation
	}
	return Card{
		Front: p.Original,
		Back:  back,
		Tags:  p.Language.Code,
	}
}

// GeneratorOptions configures the Anki export
type GeneratorOptions struct {
	OutputPath     string // Output CSV file path
	IncludeHeaders bool   // Include CSV headers
}

// DefaultGeneratorOptions returns sensible defaults
func DefaultGeneratorOptions() *GeneratorOptions {
	return &GeneratorOptions{
		OutputPath:     "hanzi_anki.csv",
		IncludeHeaders: true,
	}
}

// Generator creates Anki-compatible import files
type Generator struct {
	options *GeneratorOptions
	cards   []Card
}

// NewGenerator creates a new Anki generator
func NewGenerator(options *GeneratorOptions) *Generator {
	if options == nil {
		options = DefaultGeneratorOptions()
	}
	return &Generator{
		options: options,
		cards:   make([]Card, 0),
	}
}

// AddCard adds a card to the collection
func (g *Generator) AddCard(card Card) {
	g.cards = append(g.cards, card)
}

// AddPhrases adds one card per phrase
func (g *Generator) AddPhrases(phrases []phrase.Phrase) {
	for _, p := range phrases {
		g.AddCard(CardFromPhrase(p))
	}
}

// Cards returns the collected cards
func (g *Generator) Cards() []Card {
	return g.cards
}

// GenerateCSV writes the cards to the configured output file
func (g *Generator) GenerateCSV() error {
	file, err := os.Create(g.options.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}

	if err := g.WriteCSV(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteCSV writes the cards as CSV to w
func (g *Generator) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)

	if g.options.IncludeHeaders {
		if err := writer.Write([]string{"Front", "Back", "Tags"}); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for _, card := range g.cards {
		if err := writer.Write([]string{card.Front, card.Back, card.Tags}); err != nil {
			return fmt.Errorf("failed to write card: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
