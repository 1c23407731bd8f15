// Package llm wraps the hosted language models used as an optional entity recogniser.
package llm

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// DefaultModel is a fast, cheap model that is good enough for entity tagging.
const DefaultModel = "gemini-2.5-flash-lite"

// Config holds the model settings for a client.
type Config struct {
	Provider    Provider
	Model       string
	Temperature float32
}

// DefaultConfig returns the Gemini configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Provider:    ProviderGemini,
		Model:       DefaultModel,
		Temperature: 0,
	}
}

// WithModel returns a copy of c using model, or c unchanged when model is empty.
func (c *Config) WithModel(model string) *Config {
	if model == "" {
		return c
	}
	out := *c
	out.Model = model
	return &out
}
