package anki

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"codeberg.org/snonux/hanzi/internal/phrase"
)

func TestDefaultGeneratorOptions(t *testing.T) {
	opts := DefaultGeneratorOptions()

	if opts.OutputPath != "hanzi_anki.csv" {
		t.Errorf("Expected output path 'hanzi_anki.csv', got '%s'", opts.OutputPath)
	}
	if !opts.IncludeHeaders {
		t.Error("Expected IncludeHeaders to be true")
	}
}

func TestNewGenerator(t *testing.T) {
	gen := NewGenerator(nil)
	if gen.options == nil {
		t.Fatal("Generator options should not be nil")
	}

	gen = NewGenerator(&GeneratorOptions{OutputPath: "custom.csv"})
	if gen.options.OutputPath != "custom.csv" {
		t.Errorf("Expected custom output path, got '%s'", gen.options.OutputPath)
	}
}

func TestCardFromPhrase(t *testing.T) {
	tests := []struct {
		name   string
		phrase phrase.Phrase
		want   Card
	}{
		{
			name: "with pronunciation",
			phrase: phrase.Phrase{
				Original:      "你好",
				Pronunciation: "Nǐ hǎo",
				Translation:   "Hello",
				Language:      phrase.Language{Name: "Chinese", Code: "zh"},
			},
			want: Card{Front: "你好", Back: "Nǐ hǎo<br>Hello", Tags: "zh"},
		},
		{
			name:   "without pronunciation",
			phrase: phrase.Phrase{Original: "谢谢", Translation: "Thanks"},
			want:   Card{Front: "谢谢", Back: "Thanks"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CardFromPhrase(tt.phrase); got != tt.want {
				t.Errorf("CardFromPhrase() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGenerateCSV(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "export.csv")
	gen := NewGenerator(&GeneratorOptions{OutputPath: outputPath, IncludeHeaders: true})
	gen.AddPhrases([]phrase.Phrase{
		{Original: "你好", Pronunciation: "Nǐ hǎo", Translation: "Hello, friend", Language: phrase.Language{Code: "zh"}},
		{Original: "谢谢", Translation: `Say "thanks"`},
	})

	if len(gen.Cards()) != 2 {
		t.Fatalf("Expected 2 cards, got %d", len(gen.Cards()))
	}

	if err := gen.GenerateCSV(); err != nil {
		t.Fatalf("GenerateCSV failed: %v", err)
	}

	file, err := os.Open(outputPath)
	if err != nil {
		t.Fatalf("Failed to open CSV: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}

	want := [][]string{
		{"Front", "Back", "Tags"},
		{"你好", "Nǐ hǎo<br>Hello, friend", "zh"},
		{"谢谢", `Say "thanks"`, ""},
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("CSV records = %v, want %v", records, want)
	}
}

func TestWriteCSV_NoHeaders(t *testing.T) {
	gen := NewGenerator(&GeneratorOptions{})
	gen.AddCard(Card{Front: "你好", Back: "Hello"})

	var buf bytes.Buffer
	if err := gen.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	if got, want := buf.String(), "你好,Hello,\n"; got != want {
		t.Errorf("WriteCSV() = %q, want %q", got, want)
	}
}

func TestGenerateCSV_BadPath(t *testing.T) {
	gen := NewGenerator(&GeneratorOptions{OutputPath: filepath.Join(t.TempDir(), "missing", "export.csv")})
	if err := gen.GenerateCSV(); err == nil {
		t.Error("Expected an error for an unwritable path")
	}
}
