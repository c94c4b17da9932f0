package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"codeberg.org/snonux/hanzi/internal/anki"
	"codeberg.org/snonux/hanzi/internal/archive"
	"codeberg.org/snonux/hanzi/internal/batch"
	"codeberg.org/snonux/hanzi/internal/llm"
	"codeberg.org/snonux/hanzi/internal/models"
	"codeberg.org/snonux/hanzi/internal/phrase"
	"codeberg.org/snonux/hanzi/internal/query"
	"codeberg.org/snonux/hanzi/internal/store"
)

// DefaultPollInterval is how often a running query is polled
const DefaultPollInterval = 100 * time.Millisecond

// ErrNoClient is returned by operations that need a model server when the
// processor was created without one
var ErrNoClient = errors.New("no model client configured")

// PhraseStore is the persistence the processor works against
type PhraseStore interface {
	SavePhrase(ctx context.Context, p phrase.Phrase) (int64, error)
	SearchPhrases(ctx context.Context, term string) ([]phrase.Phrase, error)
	LoadSetting(ctx context.Context, name phrase.SettingName) (string, error)
	SaveSetting(ctx context.Context, name phrase.SettingName, value string) error
	Path() string
	Backup(ctx context.Context, dest string) error
}

// Options configures a Processor
type Options struct {
	Store  PhraseStore
	Client models.Client
	// PreferredModel is the model queries use when it is installed
	PreferredModel string
	Timeout        time.Duration
	PollInterval   time.Duration
	// Out receives user facing output, os.Stdout by default
	Out    io.Writer
	Logger *slog.Logger
}

// Processor handles the main phrase processing logic
type Processor struct {
	store        PhraseStore
	client       models.Client
	preferred    string
	orchestrator *query.Orchestrator
	pollInterval time.Duration
	out          io.Writer
	logger       *slog.Logger
}

// NewProcessor creates a new phrase processor
func NewProcessor(opts Options) *Processor {
	p := &Processor{
		store:        opts.Store,
		client:       opts.Client,
		preferred:    opts.PreferredModel,
		pollInterval: opts.PollInterval,
		out:          opts.Out,
		logger:       opts.Logger,
	}
	if p.pollInterval <= 0 {
		p.pollInterval = DefaultPollInterval
	}
	if p.out == nil {
		p.out = os.Stdout
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}

	p.orchestrator = query.New(query.Config{
		Client:         opts.Client,
		PreferredModel: opts.PreferredModel,
		Timeout:        opts.Timeout,
		Logger:         p.logger,
	})
	return p
}

// PreferredModel returns the configured model if set, otherwise the model
// stored in the settings table. A missing setting yields "".
func PreferredModel(ctx context.Context, s PhraseStore, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	value, err := s.LoadSetting(ctx, phrase.SettingModel)
	if errors.Is(err, store.ErrSettingNotFound) {
		return "", nil
	}
	return value, err
}

// ProcessQuery sends text to the model and waits for the outcome, polling the
// orchestrator. Cancelling ctx cancels the query. With save set a successful
// result is stored.
func (p *Processor) ProcessQuery(ctx context.Context, text string, save bool) (query.Outcome, error) {
	if p.client == nil {
		return query.Outcome{Status: query.StatusIdle}, ErrNoClient
	}
	if _, err := p.orchestrator.Submit(text); err != nil {
		return query.Outcome{Status: p.orchestrator.State()}, err
	}

	fmt.Fprintf(p.out, "Translating %s ...\n", strings.TrimSpace(text))

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			out, _ := p.orchestrator.Cancel()
			fmt.Fprintln(p.out, "Query cancelled")
			return out, ctx.Err()
		case <-ticker.C:
			out := p.orchestrator.Poll()
			switch out.Status {
			case query.StatusPending:
				continue
			case query.StatusSucceeded:
				return out, p.reportSuccess(ctx, out, save)
			case query.StatusFailed, query.StatusTimedOut:
				fmt.Fprintf(p.out, "Error: %s\n", llm.Cause(out.Err))
				return out, out.Err
			default:
				return out, fmt.Errorf("unexpected query status %s", out.Status)
			}
		}
	}
}

func (p *Processor) reportSuccess(ctx context.Context, out query.Outcome, save bool) error {
	fmt.Fprintln(p.out, formatPhrase(out.Phrase))
	if !save {
		return nil
	}

	if _, err := p.store.SavePhrase(ctx, out.Phrase); err != nil {
		return fmt.Errorf("failed to save phrase: %w", err)
	}
	fmt.Fprintln(p.out, "Saved")
	return nil
}

// Save stores a phrase entered by hand
func (p *Processor) Save(ctx context.Context, ph phrase.Phrase) error {
	if _, err := p.store.SavePhrase(ctx, ph); err != nil {
		return fmt.Errorf("failed to save phrase: %w", err)
	}
	fmt.Fprintf(p.out, "Saved %s\n", formatPhrase(ph))
	return nil
}

// Search prints every saved phrase containing term
func (p *Processor) Search(ctx context.Context, term string) ([]phrase.Phrase, error) {
	found, err := p.store.SearchPhrases(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("failed to search phrases: %w", err)
	}

	if len(found) == 0 {
		fmt.Fprintln(p.out, "Nothing found")
		return found, nil
	}
	for _, ph := range found {
		fmt.Fprintln(p.out, formatPhrase(ph))
	}
	return found, nil
}

// ListModels prints the models the server offers
func (p *Processor) ListModels(ctx context.Context) error {
	if p.client == nil {
		return ErrNoClient
	}
	return models.NewLister(p.client, p.preferred).ListAvailableModels(ctx, p.out)
}

// UseModel persists name as the preferred model
func (p *Processor) UseModel(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("model name must not be empty")
	}
	if p.client == nil {
		return ErrNoClient
	}

	available, err := p.client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}
	if selected, _ := models.SelectModel(available, name); selected != name {
		fmt.Fprintf(p.out, "Warning: model %q is not installed\n", name)
	}

	if err := p.store.SaveSetting(ctx, phrase.SettingModel, name); err != nil {
		return fmt.Errorf("failed to save model setting: %w", err)
	}
	p.preferred = name
	fmt.Fprintf(p.out, "Preferred model set to %s\n", name)
	return nil
}

// ProcessBatch imports the phrases of a batch file. Complete lines are
// saved as given, bare phrases are queried one at a time and saved on
// success.
func (p *Processor) ProcessBatch(ctx context.Context, filename string) error {
	entries, err := batch.ReadBatchFile(filename)
	if err != nil {
		return err
	}

	savedCount := 0
	queriedCount := 0
	errorCount := 0

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintf(p.out, "\nProcessing %d/%d: %s\n", i+1, len(entries), entry.Phrase.Original)

		if !entry.NeedsQuery {
			if err := p.Save(ctx, entry.Phrase); err != nil {
				fmt.Fprintf(p.out, "Error on line %d: %v\n", entry.Line, err)
				errorCount++
				continue
			}
			savedCount++
			continue
		}

		if _, err := p.ProcessQuery(ctx, entry.Phrase.Original, true); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Warn("Batch query failed", "line", entry.Line, "text", entry.Phrase.Original, "error", err)
			errorCount++
			continue
		}
		queriedCount++
	}

	fmt.Fprintf(p.out, "\n=== Batch Summary ===\n")
	fmt.Fprintf(p.out, "Total phrases: %d\n", len(entries))
	fmt.Fprintf(p.out, "Saved as given: %d\n", savedCount)
	fmt.Fprintf(p.out, "Translated: %d\n", queriedCount)
	if errorCount > 0 {
		fmt.Fprintf(p.out, "Errors: %d\n", errorCount)
		return fmt.Errorf("%d of %d phrases failed", errorCount, len(entries))
	}
	return nil
}

// Export writes all saved phrases to an Anki CSV file and returns how many
// were written
func (p *Processor) Export(ctx context.Context, outputPath string) (int, error) {
	phrases, err := p.store.SearchPhrases(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("failed to load phrases: %w", err)
	}

	opts := anki.DefaultGeneratorOptions()
	if outputPath != "" {
		opts.OutputPath = outputPath
	}

	gen := anki.NewGenerator(opts)
	gen.AddPhrases(phrases)
	if err := gen.GenerateCSV(); err != nil {
		return 0, err
	}

	fmt.Fprintf(p.out, "Exported %d phrases to %s\n", len(phrases), opts.OutputPath)
	return len(phrases), nil
}

// Backup copies the database into its archive directory
func (p *Processor) Backup(ctx context.Context) (string, error) {
	path, err := archive.ArchiveDatabase(ctx, p.store)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(p.out, "Database archived to: %s\n", path)
	return path, nil
}

func formatPhrase(ph phrase.Phrase) string {
	if ph.Language.Name == "" {
		return ph.String()
	}
	return fmt.Sprintf("%s (%s)", ph.String(), ph.Language.Name)
}
