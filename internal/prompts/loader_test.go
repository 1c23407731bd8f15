package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("ner.json", "extract-persons")
	require.NoError(t, err)
	assert.Contains(t, prompt, "PERSON")
	assert.Contains(t, prompt, "{{.Text}}")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("ner.json", "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() { MustGet("nonexistent.json", "x") })
	assert.NotPanics(t, func() { assert.NotEmpty(t, MustGet("ner.json", "extract-persons")) })
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "Hello Alice at Acme", Format("Hello {{.Name}} at {{.Company}}", map[string]string{
		"Name":    "Alice",
		"Company": "Acme",
	}))
	assert.Equal(t, "Hello {{.Name}}", Format("Hello {{.Name}}", nil))
}

func TestFormat_ValueContainingPlaceholder(t *testing.T) {
	// Substituted text is not expanded a second time.
	out := Format("{{.Text}}", map[string]string{"Text": "{{.Other}}", "Other": "x"})
	assert.Equal(t, "{{.Other}}", out)
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List("ner.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"extract-persons"}, keys)
}
