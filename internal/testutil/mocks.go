package testutil

import (
	"context"
	"sync"

	"codeberg.org/snonux/hanzi/internal/llm"
)

// MockModel is a model server answering prompts from a reply table keyed by
// the queried text. Unknown texts get DefaultReply.
type MockModel struct {
	Models       []string
	Replies      map[string]string
	DefaultReply string
	ListErr      error
	ChatErr      error
	// Block, when set, holds every Chat call until it is closed or the
	// request context ends
	Block chan struct{}

	mu    sync.Mutex
	calls []string
}

// ListModels returns the configured models
func (m *MockModel) ListModels(ctx context.Context) ([]string, error) {
	return m.Models, m.ListErr
}

// Chat answers prompt from the reply table
func (m *MockModel) Chat(ctx context.Context, model, prompt string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, model)
	m.mu.Unlock()

	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if m.ChatErr != nil {
		return "", m.ChatErr
	}

	for text, reply := range m.Replies {
		if prompt == llm.BuildPrompt(text) {
			return reply, nil
		}
	}
	return m.DefaultReply, nil
}

// ChatModels returns the model of every Chat call so far
func (m *MockModel) ChatModels() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
