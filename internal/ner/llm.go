package ner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/llm"
	"github.com/jonathan/resume-screener/internal/logging"
	"github.com/jonathan/resume-screener/internal/prompts"
)

// LLM asks a hosted model to tag PERSON entities.
type LLM struct {
	client llm.Client
	logger *zap.Logger
}

// NewLLM returns a recogniser backed by client.
func NewLLM(client llm.Client, logger *zap.Logger) *LLM {
	return &LLM{client: client, logger: logging.OrNop(logger)}
}

type personsResponse struct {
	Persons []string `json:"persons"`
}

// Persons implements Recognizer.
func (r *LLM) Persons(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	template, err := prompts.Get("ner.json", "extract-persons")
	if err != nil {
		return nil, err
	}
	prompt := prompts.Format(template, map[string]string{"Text": text})

	raw, err := r.client.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to tag persons: %w", err)
	}

	var resp personsResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse persons response: %w", err)
	}

	persons := make([]string, 0, len(resp.Persons))
	for _, p := range resp.Persons {
		// The model occasionally invents names; keep only those present in the input.
		p = strings.TrimSpace(p)
		if p != "" && strings.Contains(text, p) {
			persons = append(persons, p)
		}
	}
	r.logger.Debug("tagged persons", zap.Int("returned", len(resp.Persons)), zap.Int("kept", len(persons)))
	return persons, nil
}
