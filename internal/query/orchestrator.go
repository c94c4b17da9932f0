package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"codeberg.org/snonux/hanzi/internal/llm"
	"codeberg.org/snonux/hanzi/internal/models"
	"codeberg.org/snonux/hanzi/internal/phrase"
)

// DefaultTimeout is how long a query may run before Poll abandons it
const DefaultTimeout = 60 * time.Second

var (
	// ErrQueryPending is returned by Submit while another query is in flight
	ErrQueryPending = errors.New("a query is already pending")

	// ErrNoQueryPending is returned by Cancel when nothing is in flight
	ErrNoQueryPending = errors.New("no query pending")

	// ErrEmptyQuery is returned by Submit for blank text
	ErrEmptyQuery = errors.New("query text is empty")
)

// ModelClient is the model server a query is sent to
type ModelClient interface {
	ListModels(ctx context.Context) ([]string, error)
	Chat(ctx context.Context, model, prompt string) (string, error)
}

// Config configures an Orchestrator
type Config struct {
	Client ModelClient
	// PreferredModel is used when the server has it installed
	PreferredModel string
	// Timeout defaults to DefaultTimeout
	Timeout time.Duration
	Logger  *slog.Logger
	// Now defaults to time.Now
	Now func() time.Time
}

type result struct {
	model  string
	phrase phrase.Phrase
	err    error
}

// inflight is the handle of the one outstanding query
type inflight struct {
	id        string
	text      string
	startedAt time.Time
	cancel    context.CancelFunc
	done      <-chan result
}

// Orchestrator owns the lifecycle of translation queries
type Orchestrator struct {
	client    ModelClient
	preferred string
	timeout   time.Duration
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	pending *inflight
}

// New creates an idle orchestrator
func New(cfg Config) *Orchestrator {
	o := &Orchestrator{
		client:    cfg.Client,
		preferred: cfg.PreferredModel,
		timeout:   cfg.Timeout,
		logger:    cfg.Logger,
		now:       cfg.Now,
	}
	if o.timeout <= 0 {
		o.timeout = DefaultTimeout
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// Timeout returns the time budget of a query
func (o *Orchestrator) Timeout() time.Duration {
	return o.timeout
}

// State returns StatusPending while a query is in flight, StatusIdle otherwise
func (o *Orchestrator) State() Status {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.pending != nil {
		return StatusPending
	}
	return StatusIdle
}

// Pending reports whether a query is in flight
func (o *Orchestrator) Pending() bool {
	return o.State() == StatusPending
}

// Submit starts a query for text and returns its id. It only starts from
// Idle: while a query is pending it returns ErrQueryPending and starts
// nothing.
func (o *Orchestrator) Submit(text string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.pending != nil {
		o.logger.Debug("Ignoring query while another one is pending", "query_id", o.pending.id)
		return "", ErrQueryPending
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyQuery
	}

	ctx, cancel := context.WithCancel(context.Background())
	// Buffered so an abandoned query can always deliver and exit
	done := make(chan result, 1)

	q := &inflight{
		id:        uuid.NewString(),
		text:      text,
		startedAt: o.now(),
		cancel:    cancel,
		done:      done,
	}
	o.pending = q

	o.logger.Info("Submitted LLM query", "query_id", q.id, "text", text)
	go o.run(ctx, q.id, llm.BuildPrompt(text), done)

	return q.id, nil
}

// run executes one query in the background and delivers exactly one result
func (o *Orchestrator) run(ctx context.Context, id, prompt string, done chan<- result) {
	logger := o.logger.With("query_id", id)

	available, err := o.client.ListModels(ctx)
	if err != nil {
		done <- result{err: err}
		return
	}

	model, err := models.SelectModel(available, o.preferred)
	if err != nil {
		done <- result{err: err}
		return
	}

	logger.Debug("Querying LLM model", "model", model, "prompt", prompt)

	raw, err := o.client.Chat(ctx, model, prompt)
	if err != nil {
		done <- result{model: model, err: err}
		return
	}

	logger.Debug("LLM response", "model", model, "response", raw)

	p, err := llm.Decode(raw)
	done <- result{model: model, phrase: p, err: err}
}

// Poll checks the pending query without blocking. It reports StatusIdle when
// nothing was submitted, StatusPending while the query runs, and the terminal
// outcome exactly once when it ends. A query running longer than the
// timeout is abandoned and reported as StatusTimedOut.
func (o *Orchestrator) Poll() Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()

	q := o.pending
	if q == nil {
		return Outcome{Status: StatusIdle}
	}

	elapsed := o.now().Sub(q.startedAt)

	select {
	case res := <-q.done:
		o.pending = nil
		q.cancel()
		return o.complete(q, res, elapsed)
	default:
	}

	if elapsed > o.timeout {
		o.pending = nil
		q.cancel()
		o.logger.Error("LLM query timed out", "query_id", q.id, "text", q.text, "elapsed", elapsed, "timeout", o.timeout)
		return Outcome{
			Status:  StatusTimedOut,
			ID:      q.id,
			Err:     fmt.Errorf("%w after %s", llm.ErrTimedOut, o.timeout),
			Elapsed: elapsed,
		}
	}

	return Outcome{Status: StatusPending, ID: q.id, Elapsed: elapsed}
}

func (o *Orchestrator) complete(q *inflight, res result, elapsed time.Duration) Outcome {
	if res.err != nil {
		o.logger.Error("Error occurred when querying LLM",
			"query_id", q.id, "model", res.model, "error", res.err, "cause", llm.Cause(res.err))
		return Outcome{
			Status:  StatusFailed,
			ID:      q.id,
			Model:   res.model,
			Err:     res.err,
			Elapsed: elapsed,
		}
	}

	o.logger.Info("LLM query succeeded",
		"query_id", q.id, "model", res.model, "original", res.phrase.Original, "elapsed", elapsed)
	return Outcome{
		Status:  StatusSucceeded,
		ID:      q.id,
		Model:   res.model,
		Phrase:  res.phrase,
		Elapsed: elapsed,
	}
}

// Cancel abandons the pending query without waiting for it to stop; its
// result, should it still arrive, is discarded.
func (o *Orchestrator) Cancel() (Outcome, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	q := o.pending
	if q == nil {
		return Outcome{Status: StatusIdle}, ErrNoQueryPending
	}

	o.pending = nil
	q.cancel()

	elapsed := o.now().Sub(q.startedAt)
	o.logger.Info("LLM query cancelled", "query_id", q.id, "elapsed", elapsed)
	return Outcome{Status: StatusCancelled, ID: q.id, Elapsed: elapsed}, nil
}
