package cli

import (
	"time"

	"codeberg.org/snonux/hanzi/internal/models"
	"codeberg.org/snonux/hanzi/internal/query"
)

// Flags holds all command-line flag values
type Flags struct {
	// Global flags
	CfgFile  string
	DBPath   string
	LogLevel string

	// LLM flags
	Provider string
	URL      string
	Model    string
	Timeout  time.Duration

	// query flags
	Save bool

	// save flags
	Original      string
	Pronunciation string
	Translation   string
	LanguageCode  string
	LanguageName  string

	// export flags
	OutputFile string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		LogLevel: "info",
		Provider: ProviderOllama,
		URL:      models.DefaultOllamaURL,
		Timeout:  query.DefaultTimeout,
	}
}
