package query

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/hanzi/internal/llm"
	"codeberg.org/snonux/hanzi/internal/phrase"
)

const exampleReply = "Sure! ```json\n{\"original\":\"你好\",\"pinyin\":\"Nǐ hǎo\",\"translation\":\"Hello\"}\n```"

type fakeClient struct {
	mu        sync.Mutex
	models    []string
	listErr   error
	reply     string
	chatErr   error
	block     chan struct{}
	listCalls int
	chatCalls int
	model     string
	prompt    string
	aborted   chan struct{}
}

func newFakeClient(reply string) *fakeClient {
	return &fakeClient{
		models:  []string{"llama3.2", "qwen2.5:7b"},
		reply:   reply,
		aborted: make(chan struct{}, 1),
	}
}

func (f *fakeClient) ListModels(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.models, f.listErr
}

func (f *fakeClient) Chat(ctx context.Context, model, prompt string) (string, error) {
	f.mu.Lock()
	f.chatCalls++
	f.model = model
	f.prompt = prompt
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			f.aborted <- struct{}{}
			return "", ctx.Err()
		}
	}
	return f.reply, f.chatErr
}

func (f *fakeClient) calls() (list, chat int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, f.chatCalls
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestOrchestrator(client ModelClient, clock *fakeClock) *Orchestrator {
	cfg := Config{
		Client:         client,
		PreferredModel: "qwen2.5:7b",
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if clock != nil {
		cfg.Now = clock.Now
	}
	return New(cfg)
}

// waitTerminal polls until the query leaves StatusPending
func waitTerminal(t *testing.T, o *Orchestrator) Outcome {
	t.Helper()

	var out Outcome
	require.Eventually(t, func() bool {
		out = o.Poll()
		return out.Status != StatusPending
	}, 2*time.Second, time.Millisecond, "query did not finish")
	return out
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusIdle, "Idle"},
		{StatusPending, "Pending"},
		{StatusSucceeded, "Succeeded"},
		{StatusFailed, "Failed"},
		{StatusTimedOut, "TimedOut"},
		{StatusCancelled, "Cancelled"},
		{Status(42), "Unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.status.String())
	}

	assert.False(t, StatusIdle.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.True(t, StatusSucceeded.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestNew_Defaults(t *testing.T) {
	o := New(Config{Client: newFakeClient("")})
	assert.Equal(t, DefaultTimeout, o.Timeout())
	assert.Equal(t, StatusIdle, o.State())
	assert.Equal(t, Outcome{Status: StatusIdle}, o.Poll())
}

func TestSubmit_Succeeds(t *testing.T) {
	client := newFakeClient(exampleReply)
	o := newTestOrchestrator(client, nil)

	id, err := o.Submit("你好")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, StatusPending, o.State())
	assert.True(t, o.Pending())

	out := waitTerminal(t, o)
	require.Equal(t, StatusSucceeded, out.Status, "err: %v", out.Err)
	assert.False(t, o.Pending())
	assert.Equal(t, id, out.ID)
	assert.Equal(t, "qwen2.5:7b", out.Model)
	assert.NoError(t, out.Err)
	assert.Equal(t, phrase.Phrase{Original: "你好", Pronunciation: "Nǐ hǎo", Translation: "Hello"}, out.Phrase)

	assert.Equal(t, StatusIdle, o.State())
	assert.Equal(t, StatusIdle, o.Poll().Status, "the terminal outcome is reported once")

	client.mu.Lock()
	defer client.mu.Unlock()
	assert.Equal(t, llm.BuildPrompt("你好"), client.prompt)
}

func TestSubmit_FallsBackToFirstModel(t *testing.T) {
	client := newFakeClient(exampleReply)
	client.models = []string{"gemma3", "llama3.2"}
	o := newTestOrchestrator(client, nil)

	_, err := o.Submit("你好")
	require.NoError(t, err)

	out := waitTerminal(t, o)
	require.Equal(t, StatusSucceeded, out.Status)
	assert.Equal(t, "gemma3", out.Model)
}

func TestSubmit_WhilePending(t *testing.T) {
	client := newFakeClient(exampleReply)
	client.block = make(chan struct{})
	o := newTestOrchestrator(client, nil)

	first, err := o.Submit("你好")
	require.NoError(t, err)

	second, err := o.Submit("谢谢")
	assert.ErrorIs(t, err, ErrQueryPending)
	assert.Empty(t, second)
	assert.Equal(t, StatusPending, o.Poll().Status)

	close(client.block)
	out := waitTerminal(t, o)
	require.Equal(t, StatusSucceeded, out.Status)
	assert.Equal(t, first, out.ID)

	list, chat := client.calls()
	assert.Equal(t, 1, list, "only one background task may run")
	assert.Equal(t, 1, chat, "only one background task may run")
}

func TestSubmit_EmptyText(t *testing.T) {
	client := newFakeClient(exampleReply)
	o := newTestOrchestrator(client, nil)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := o.Submit(text)
		assert.ErrorIs(t, err, ErrEmptyQuery)
	}
	assert.Equal(t, StatusIdle, o.State())
}

func TestSubmit_AgainAfterCompletion(t *testing.T) {
	client := newFakeClient(exampleReply)
	o := newTestOrchestrator(client, nil)

	first, err := o.Submit("你好")
	require.NoError(t, err)
	waitTerminal(t, o)

	second, err := o.Submit("你好")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, StatusSucceeded, waitTerminal(t, o).Status)
}

func TestPoll_Failures(t *testing.T) {
	transportErr := errors.New("connection refused")

	tests := []struct {
		name    string
		setup   func(f *fakeClient)
		wantErr error
	}{
		{
			name:    "no models installed",
			setup:   func(f *fakeClient) { f.models = nil },
			wantErr: llm.ErrModelNotFound,
		},
		{
			name:    "listing fails",
			setup:   func(f *fakeClient) { f.listErr = transportErr },
			wantErr: transportErr,
		},
		{
			name:    "model error",
			setup:   func(f *fakeClient) { f.chatErr = &llm.ModelError{Message: "out of memory"} },
			wantErr: llm.ErrModelInternal,
		},
		{
			name:    "no json in reply",
			setup:   func(f *fakeClient) { f.reply = "I am not sure what you mean." },
			wantErr: llm.ErrExtraction,
		},
		{
			name:    "json does not match",
			setup:   func(f *fakeClient) { f.reply = `{"original": "你好"}` },
			wantErr: llm.ErrDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newFakeClient(exampleReply)
			tt.setup(client)
			o := newTestOrchestrator(client, nil)

			_, err := o.Submit("你好")
			require.NoError(t, err)

			out := waitTerminal(t, o)
			assert.Equal(t, StatusFailed, out.Status)
			assert.ErrorIs(t, out.Err, tt.wantErr)
			assert.Equal(t, StatusIdle, o.State())
		})
	}
}

func TestPoll_Timeout(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	client := newFakeClient(exampleReply)
	client.block = make(chan struct{})
	defer close(client.block)
	o := newTestOrchestrator(client, clock)

	id, err := o.Submit("你好")
	require.NoError(t, err)

	clock.Advance(DefaultTimeout)
	out := o.Poll()
	assert.Equal(t, StatusPending, out.Status, "exactly the budget is not yet over")
	assert.Equal(t, DefaultTimeout, out.Elapsed)

	clock.Advance(time.Second)
	out = o.Poll()
	assert.Equal(t, StatusTimedOut, out.Status)
	assert.Equal(t, id, out.ID)
	assert.ErrorIs(t, out.Err, llm.ErrTimedOut)
	assert.Equal(t, StatusIdle, o.State())
	assert.Equal(t, StatusIdle, o.Poll().Status)

	select {
	case <-client.aborted:
	case <-time.After(2 * time.Second):
		t.Fatal("background request was not aborted")
	}
}

func TestPoll_CustomTimeout(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	client := newFakeClient(exampleReply)
	client.block = make(chan struct{})
	defer close(client.block)

	o := New(Config{
		Client:  client,
		Timeout: 5 * time.Second,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:     clock.Now,
	})

	_, err := o.Submit("你好")
	require.NoError(t, err)

	clock.Advance(6 * time.Second)
	assert.Equal(t, StatusTimedOut, o.Poll().Status)
}

func TestPoll_CompletionWinsOverTimeout(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	client := newFakeClient(exampleReply)
	o := newTestOrchestrator(client, clock)

	_, err := o.Submit("你好")
	require.NoError(t, err)

	// Let the background task deliver before the clock jumps
	require.Eventually(t, func() bool {
		o.mu.Lock()
		defer o.mu.Unlock()
		return len(o.pending.done) == 1
	}, 2*time.Second, time.Millisecond)

	clock.Advance(2 * DefaultTimeout)
	out := o.Poll()
	assert.Equal(t, StatusSucceeded, out.Status)
}

func TestCancel(t *testing.T) {
	client := newFakeClient(exampleReply)
	client.block = make(chan struct{})
	o := newTestOrchestrator(client, nil)

	id, err := o.Submit("你好")
	require.NoError(t, err)

	out, err := o.Cancel()
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, out.Status)
	assert.Equal(t, id, out.ID)
	assert.NoError(t, out.Err)
	assert.Equal(t, StatusIdle, o.State())

	// A late result is discarded
	close(client.block)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, StatusIdle, o.Poll().Status)

	// and a new query may start
	_, err = o.Submit("谢谢")
	assert.NoError(t, err)
}

func TestCancel_AbortsBackgroundRequest(t *testing.T) {
	client := newFakeClient(exampleReply)
	client.block = make(chan struct{})
	defer close(client.block)
	o := newTestOrchestrator(client, nil)

	_, err := o.Submit("你好")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, chat := client.calls()
		return chat == 1
	}, 2*time.Second, time.Millisecond)

	_, err = o.Cancel()
	require.NoError(t, err)

	select {
	case <-client.aborted:
	case <-time.After(2 * time.Second):
		t.Fatal("background request was not aborted")
	}
}

func TestCancel_WhenIdle(t *testing.T) {
	o := newTestOrchestrator(newFakeClient(exampleReply), nil)

	out, err := o.Cancel()
	assert.ErrorIs(t, err, ErrNoQueryPending)
	assert.Equal(t, StatusIdle, out.Status)
}
