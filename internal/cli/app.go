package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"codeberg.org/snonux/hanzi/internal/logging"
	"codeberg.org/snonux/hanzi/internal/models"
	"codeberg.org/snonux/hanzi/internal/phrase"
	"codeberg.org/snonux/hanzi/internal/processor"
	"codeberg.org/snonux/hanzi/internal/store"
)

// Config is the resolved configuration of a hanzi run
type Config struct {
	DBPath          string
	LogLevel        string
	LogFile         string
	Provider        string
	URL             string
	Model           string
	Timeout         time.Duration
	GeminiKey       string
	DefaultLanguage phrase.Language
}

// LoadConfig reads the configuration from viper, which merges flags,
// environment and config file
func LoadConfig() Config {
	cfg := Config{
		DBPath:    viper.GetString("database.path"),
		LogLevel:  viper.GetString("log.level"),
		LogFile:   viper.GetString("log.file"),
		Provider:  strings.ToLower(viper.GetString("llm.provider")),
		URL:       viper.GetString("llm.url"),
		Model:     viper.GetString("llm.model"),
		Timeout:   viper.GetDuration("llm.timeout"),
		GeminiKey: GetGeminiKey(),
		DefaultLanguage: phrase.Language{
			Code: viper.GetString("language.default_code"),
			Name: viper.GetString("language.default_name"),
		},
	}

	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(DefaultDataDir(), "data.db")
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(filepath.Dir(cfg.DBPath), "app.log")
	}
	if cfg.Provider == "" {
		cfg.Provider = ProviderOllama
	}
	return cfg
}

// app holds what a single command run needs
type app struct {
	cfg    Config
	logger *slog.Logger
	closer io.Closer
	store  *store.Store
}

func openApp(ctx context.Context, cfg Config) (*app, error) {
	logger, closer, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}

	s, err := store.Open(ctx, store.Config{
		Path:            cfg.DBPath,
		DefaultLanguage: cfg.DefaultLanguage,
		Logger:          logger,
	})
	if err != nil {
		closer.Close()
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, closer: closer, store: s}, nil
}

func (a *app) Close() error {
	return a.closer.Close()
}

// newClient creates the model client of the configured provider
func (a *app) newClient(ctx context.Context) (models.Client, error) {
	switch a.cfg.Provider {
	case ProviderOllama:
		return models.NewOllamaClient(a.cfg.URL, a.logger), nil
	case ProviderGemini:
		return models.NewGeminiClient(ctx, a.cfg.GeminiKey, a.logger)
	default:
		return nil, fmt.Errorf("unknown model provider %q (want %s or %s)", a.cfg.Provider, ProviderOllama, ProviderGemini)
	}
}

// processor builds the processor for a command. Commands that never talk to
// a model pass withClient false.
func (a *app) processor(ctx context.Context, out io.Writer, withClient bool) (*processor.Processor, error) {
	opts := processor.Options{
		Store:   a.store,
		Timeout: a.cfg.Timeout,
		Out:     out,
		Logger:  a.logger,
	}

	if withClient {
		client, err := a.newClient(ctx)
		if err != nil {
			return nil, err
		}
		preferred, err := processor.PreferredModel(ctx, a.store, a.cfg.Model)
		if err != nil {
			return nil, err
		}
		opts.Client = client
		opts.PreferredModel = preferred
	}

	return processor.NewProcessor(opts), nil
}
