// Package ner finds PERSON entities in short text snippets.
package ner

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/llm"
	"github.com/jonathan/resume-screener/internal/logging"
)

// Recognizer returns the PERSON entities of text in order of appearance.
type Recognizer interface {
	Persons(ctx context.Context, text string) ([]string, error)
}

// Provider selects a Recognizer implementation.
type Provider string

// Supported providers
const (
	ProviderProse  Provider = "prose"
	ProviderGemini Provider = "gemini"
	ProviderNone   Provider = "none"
)

// Config selects and configures a recogniser.
type Config struct {
	Provider     Provider
	GeminiAPIKey string
	GeminiModel  string
}

// New builds the recogniser named by cfg.Provider. The returned close func is never nil.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (Recognizer, func() error, error) {
	logger = logging.OrNop(logger).Named("ner")
	noop := func() error { return nil }

	switch cfg.Provider {
	case ProviderProse, "":
		return NewProse(logger), noop, nil
	case ProviderGemini:
		client, err := llm.NewClient(ctx, llm.DefaultConfig().WithModel(cfg.GeminiModel), cfg.GeminiAPIKey)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create gemini recognizer: %w", err)
		}
		return NewLLM(client, logger), client.Close, nil
	case ProviderNone:
		return None{}, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown ner provider: %q", cfg.Provider)
	}
}

// None recognises nothing. Names always resolve to the unknown sentinel.
type None struct{}

// Persons implements Recognizer.
func (None) Persons(context.Context, string) ([]string, error) {
	return nil, nil
}
