package ner

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/jdkato/prose/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubClient struct {
	response string
	err      error
	prompt   string
}

func (s *stubClient) GenerateJSON(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.response, s.err
}

func (s *stubClient) Close() error { return nil }

func TestLLM_Persons(t *testing.T) {
	client := &stubClient{response: `{"persons": ["Jane Doe", "  ", "John Invented"]}`}
	r := NewLLM(client, zap.NewNop())

	persons, err := r.Persons(context.Background(), "Jane Doe\nSenior Engineer")

	require.NoError(t, err)
	assert.Equal(t, []string{"Jane Doe"}, persons)
	assert.Contains(t, client.prompt, "Jane Doe\nSenior Engineer")
	assert.NotContains(t, client.prompt, "{{.Text}}")
}

func TestLLM_Persons_ClientError(t *testing.T) {
	r := NewLLM(&stubClient{err: errors.New("quota")}, zap.NewNop())

	_, err := r.Persons(context.Background(), "Jane Doe")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota")
}

func TestLLM_Persons_BadJSON(t *testing.T) {
	r := NewLLM(&stubClient{response: "not json"}, zap.NewNop())

	_, err := r.Persons(context.Background(), "Jane Doe")

	assert.Error(t, err)
}

func TestLLM_Persons_EmptyTextSkipsCall(t *testing.T) {
	client := &stubClient{err: errors.New("should not be called")}
	r := NewLLM(client, zap.NewNop())

	persons, err := r.Persons(context.Background(), "   ")

	require.NoError(t, err)
	assert.Empty(t, persons)
	assert.Empty(t, client.prompt)
}

func TestNone_Persons(t *testing.T) {
	persons, err := None{}.Persons(context.Background(), "Jane Doe")
	require.NoError(t, err)
	assert.Empty(t, persons)
}

func TestProse_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProse(zap.NewNop()).Persons(ctx, "Jane Doe")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestProse_Persons(t *testing.T) {
	header := "Jane Doe\njane.doe@example.com | +1 555 123 4567\nSenior Backend Engineer"

	persons, err := NewProse(zap.NewNop()).Persons(context.Background(), header)
	require.NoError(t, err)
	assert.Contains(t, persons, "Jane Doe")
}

func TestProse_SpansStayOnOneLine(t *testing.T) {
	header := "Curriculum Vitae\nPriya Sharma\nData Scientist"
	lines := strings.Split(header, "\n")

	persons, err := NewProse(nil).Persons(context.Background(), header)
	require.NoError(t, err)
	for _, p := range persons {
		assert.True(t, slices.ContainsFunc(lines, func(line string) bool {
			return strings.Contains(line, p)
		}), "%q crosses a line break", p)
	}
}

func TestProse_SharesModel(t *testing.T) {
	a, b := NewProse(nil), NewProse(nil)
	require.NotNil(t, a.model)
	assert.Same(t, a.model, b.model)

	for i := 0; i < 3; i++ {
		persons, err := a.Persons(context.Background(), "Jane Doe\njane.doe@example.com")
		require.NoError(t, err)
		assert.Contains(t, persons, "Jane Doe")
	}
	assert.Same(t, b.model, a.model, "tagging does not replace the model")
}

func TestLineSpans_BreakAtNewline(t *testing.T) {
	tokens := []prose.Token{
		{Text: "Curriculum", Tag: "NNP", Label: "B-PERSON"},
		{Text: "Vitae", Tag: "NNP", Label: "I-PERSON"},
		{Text: "Priya", Tag: "NNP", Label: "O"},
		{Text: "Sharma", Tag: "NNP", Label: "O"},
	}

	spans := lineSpans("Curriculum Vitae\nPriya Sharma", tokens)
	require.Len(t, spans, 1)
	assert.Equal(t, "Curriculum Vitae", spanText(spans[0]))
	assert.Equal(t, personLabel, spanLabel(spans[0]))

	spans = lineSpans("Curriculum Vitae Priya Sharma", tokens)
	require.Len(t, spans, 1)
	assert.Equal(t, "Curriculum Vitae Priya Sharma", spanText(spans[0]), "same-tag tokens continue on one line")
}

func TestProse_EmptyText(t *testing.T) {
	persons, err := NewProse(zap.NewNop()).Persons(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, persons)
}

func TestNew_Providers(t *testing.T) {
	ctx := context.Background()

	r, closeFn, err := New(ctx, Config{Provider: ProviderNone}, nil)
	require.NoError(t, err)
	assert.IsType(t, None{}, r)
	assert.NoError(t, closeFn())

	r, _, err = New(ctx, Config{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Prose{}, r)

	_, closeFn, err = New(ctx, Config{Provider: ProviderGemini}, nil)
	require.Error(t, err)
	assert.NotNil(t, closeFn)

	_, _, err = New(ctx, Config{Provider: "spacy"}, nil)
	assert.Error(t, err)
}
