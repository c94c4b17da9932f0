package models

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"google.golang.org/genai"

	"codeberg.org/snonux/hanzi/internal/llm"
)

// DefaultOllamaURL is Ollama's OpenAI-compatible endpoint
const DefaultOllamaURL = "http://localhost:11434/v1"

// OllamaClient queries a local Ollama server
type OllamaClient struct {
	baseURL string
	client  *openai.Client
	breaker *gobreaker.CircuitBreaker
}

// NewOllamaClient creates a client for the Ollama server at baseURL
func NewOllamaClient(baseURL string, logger *slog.Logger) *OllamaClient {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Ollama ignores the key, but the OpenAI client always sends one
	config := openai.DefaultConfig("ollama")
	config.BaseURL = strings.TrimRight(baseURL, "/")

	return &OllamaClient{
		baseURL: config.BaseURL,
		client:  openai.NewClientWithConfig(config),
		breaker: newBreaker("ollama", logger),
	}
}

// newBreaker opens after consecutive transport failures so a stopped model
// server is reported immediately instead of after a connect timeout.
func newBreaker(name string, logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !isTransportFailure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Model server circuit breaker changed state",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// BaseURL returns the endpoint the client talks to
func (c *OllamaClient) BaseURL() string {
	return c.baseURL
}

// ListModels returns the names of the locally installed models
func (c *OllamaClient) ListModels(ctx context.Context) ([]string, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.client.ListModels(ctx)
	})
	if err != nil {
		return nil, classifyError(err)
	}

	list := result.(openai.ModelsList)
	names := make([]string, 0, len(list.Models))
	for _, model := range list.Models {
		names = append(names, model.ID)
	}
	return names, nil
}

// Chat sends prompt as a single user message and returns the reply text
func (c *OllamaClient) Chat(ctx context.Context, model, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.client.CreateChatCompletion(ctx, req)
	})
	if err != nil {
		return "", classifyError(err)
	}

	resp := result.(openai.ChatCompletionResponse)
	if len(resp.Choices) == 0 {
		return "", &llm.ModelError{Message: "no response choices returned"}
	}

	return resp.Choices[0].Message.Content, nil
}

// isTransportFailure reports whether err says the server could not be reached
// or did not speak the protocol. Errors the server itself reported and
// cancellations by the caller do not count.
func isTransportFailure(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return false
	}
	var geminiErr genai.APIError
	if errors.As(err, &geminiErr) {
		return false
	}
	return !errors.Is(err, context.Canceled)
}

// classifyError maps client errors onto the llm error kinds
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &llm.ModelError{Message: apiErr.Message}
	}
	return fmt.Errorf("%w: %w", llm.ErrTransport, err)
}
