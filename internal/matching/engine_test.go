package matching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-screener/internal/extraction"
	"github.com/jonathan/resume-screener/internal/parsing"
	"github.com/jonathan/resume-screener/internal/skills"
	"github.com/jonathan/resume-screener/internal/vocabulary"
)

func newEngine(t *testing.T, technical ...string) *Engine {
	t.Helper()
	v, err := vocabulary.New(technical, nil)
	require.NoError(t, err)
	return New(skills.NewMatcher(v, skills.ModeSubstring), nil)
}

func TestMatch_BackendScenario(t *testing.T) {
	e := newEngine(t, "python", "go")
	resume := "Experienced in Python and Go, 5+ years of backend development"
	jd := "We need a backend engineer with Python and Go, 3 years experience"

	result := e.Match(resume, jd)

	assert.Equal(t, []string{"go", "python"}, result.MatchedSkills)
	assert.Empty(t, result.MissingSkills)
	assert.Greater(t, result.Score, 0.0)
	assert.Less(t, result.Score, 100.0)
}

func TestMatch_IdenticalTexts(t *testing.T) {
	e := newEngine(t, "python")

	result := e.Match("Python developer", "Python developer")

	assert.Equal(t, 100.0, result.Score)
}

func TestMatch_EmptyResume(t *testing.T) {
	e := newEngine(t, "python", "kubernetes")

	result := e.Match("", "Python and Kubernetes")

	assert.Equal(t, 0.0, result.Score)
	assert.Empty(t, result.MatchedSkills)
	assert.Equal(t, []string{"kubernetes", "python"}, result.MissingSkills)
}

func TestMatch_NilMatcher(t *testing.T) {
	result := New(nil, nil).Match("python", "python")

	assert.Equal(t, 100.0, result.Score)
	assert.NotNil(t, result.MatchedSkills)
	assert.Empty(t, result.MatchedSkills)
}

func TestMatchDocument_EndToEnd(t *testing.T) {
	e := newEngine(t, "python", "kubernetes")
	p := parsing.New(nil, nil)
	doc := p.Parse(context.Background(), []byte("Senior Python engineer\n6 years"), extraction.FormatText)

	result := e.MatchDocument(doc, "Python and Kubernetes")

	assert.Equal(t, []string{"python"}, result.MatchedSkills)
	assert.Equal(t, []string{"kubernetes"}, result.MissingSkills)
	assert.Equal(t, 6.0, doc.ExperienceYears)
}

func TestMatchDocument_Nil(t *testing.T) {
	result := newEngine(t, "python").MatchDocument(nil, "python")

	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, []string{"python"}, result.MissingSkills)
}
