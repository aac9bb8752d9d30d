package ai

import (
	"context"
	"errors"
	"strings"
)

// Message is a single chat turn sent to a provider.
type Message struct {
	Role    string
	Content string
}

// Provider is a chat-completion backend.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Completer is the text-in/text-out boundary the query pipeline talks to.
type Completer interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrEmptyCompletion is returned when a provider answers with only whitespace.
var ErrEmptyCompletion = errors.New("ai: empty completion")

// PromptCompleter adapts a Provider to Completer by sending the prompt as one user turn.
type PromptCompleter struct {
	Provider Provider
}

func NewPromptCompleter(p Provider) *PromptCompleter {
	return &PromptCompleter{Provider: p}
}

func (c *PromptCompleter) Generate(ctx context.Context, prompt string) (string, error) {
	if c.Provider == nil {
		return "", errors.New("ai: provider is nil")
	}
	out, err := c.Provider.Chat(ctx, []Message{{Role: "user", Content: prompt}})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", ErrEmptyCompletion
	}
	return out, nil
}
