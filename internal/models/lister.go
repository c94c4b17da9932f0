package models

import (
	"context"
	"fmt"
	"io"
	"sort"

	"codeberg.org/snonux/hanzi/internal/llm"
)

// Client is the part of a model server the application uses
type Client interface {
	ListModels(ctx context.Context) ([]string, error)
	Chat(ctx context.Context, model, prompt string) (string, error)
}

// SelectModel picks preferred if it is among available, otherwise the first
// available model. It fails with llm.ErrModelNotFound when nothing is
// installed.
func SelectModel(available []string, preferred string) (string, error) {
	if len(available) == 0 {
		return "", llm.ErrModelNotFound
	}
	if preferred != "" {
		for _, name := range available {
			if name == preferred {
				return name, nil
			}
		}
	}
	return available[0], nil
}

// Lister prints the models a server offers
type Lister struct {
	client    Client
	preferred string
}

// NewLister creates a new model lister
func NewLister(client Client, preferred string) *Lister {
	return &Lister{
		client:    client,
		preferred: preferred,
	}
}

// ListAvailableModels writes the installed models to w, sorted, marking the
// one queries would use
func (l *Lister) ListAvailableModels(ctx context.Context, w io.Writer) error {
	names, err := l.client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	selected, err := SelectModel(names, l.preferred)
	if err != nil {
		return err
	}

	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	fmt.Fprintln(w, "Available models:")
	for _, name := range sorted {
		marker := " "
		if name == selected {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s\n", marker, name)
	}

	if l.preferred != "" && selected != l.preferred {
		fmt.Fprintf(w, "\nPreferred model %q is not installed, using %q\n", l.preferred, selected)
	}

	return nil
}
