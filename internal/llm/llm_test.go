package llm

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"json fence", "```json\n{\"persons\": [\"Jane\"]}\n```", `{"persons": ["Jane"]}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"plain", `  {"a": 1}  `, `{"a": 1}`},
		{"fence with json on first line", "```{\"a\": 1}\n```", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestConfig_WithModel(t *testing.T) {
	base := DefaultConfig()

	assert.Same(t, base, base.WithModel(""))

	custom := base.WithModel("gemini-2.5-pro")
	assert.Equal(t, "gemini-2.5-pro", custom.Model)
	assert.Equal(t, DefaultModel, base.Model)
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestNewClient_UnknownProvider(t *testing.T) {
	_, err := NewClient(context.Background(), &Config{Provider: "openai"}, "key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported llm provider")
}

func TestExtractTextFromResponse(t *testing.T) {
	_, err := extractTextFromResponse(&genai.GenerateContentResponse{})
	assert.Error(t, err)

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"persons":`), genai.Text(`[]}`)}},
		}},
	}
	text, err := extractTextFromResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, `{"persons":[]}`, text)
}
