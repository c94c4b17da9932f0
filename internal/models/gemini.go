package models

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sony/gobreaker"
	"google.golang.org/genai"

	"codeberg.org/snonux/hanzi/internal/llm"
)

// GeminiClient queries Google's Gemini API for users without a local model
// server
type GeminiClient struct {
	client  *genai.Client
	breaker *gobreaker.CircuitBreaker
}

// NewGeminiClient creates a Gemini client authenticated with apiKey
func NewGeminiClient(ctx context.Context, apiKey string, logger *slog.Logger) (*GeminiClient, error) {
	return newGeminiClient(ctx, apiKey, "", logger)
}

// newGeminiClient talks to baseURL instead of Google's endpoint when set
func newGeminiClient(ctx context.Context, apiKey, baseURL string, logger *slog.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key not found")
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		breaker: newBreaker("gemini", logger),
	}, nil
}

// ListModels returns the Gemini model names available to the key, following
// every result page
func (c *GeminiClient) ListModels(ctx context.Context) ([]string, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		var names []string
		for model, err := range c.client.Models.All(ctx) {
			if err != nil {
				return nil, err
			}
			name := strings.TrimPrefix(model.Name, "models/")
			if strings.HasPrefix(name, "gemini") {
				names = append(names, name)
			}
		}
		return names, nil
	})
	if err != nil {
		return nil, classifyGeminiError(err)
	}

	return result.([]string), nil
}

// Chat sends prompt to model and returns the concatenated text parts
func (c *GeminiClient) Chat(ctx context.Context, model, prompt string) (string, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	})
	if err != nil {
		return "", classifyGeminiError(err)
	}

	resp := result.(*genai.GenerateContentResponse)
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &llm.ModelError{Message: "no response candidates returned"}
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	return text.String(), nil
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &llm.ModelError{Message: apiErr.Message}
	}
	return classifyError(err)
}
