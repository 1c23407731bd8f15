// Package matching combines lexical similarity and skill matching into a single match result.
package matching

import (
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/logging"
	"github.com/jonathan/resume-screener/internal/similarity"
	"github.com/jonathan/resume-screener/internal/skills"
	"github.com/jonathan/resume-screener/internal/types"
)

// Engine scores resumes against job descriptions. It is stateless and safe for concurrent use.
type Engine struct {
	matcher *skills.Matcher
	logger  *zap.Logger
}

// New creates an Engine that reports skills through matcher.
func New(matcher *skills.Matcher, logger *zap.Logger) *Engine {
	if matcher == nil {
		matcher = skills.NewMatcher(nil, skills.ModeSubstring)
	}
	return &Engine{matcher: matcher, logger: logging.OrNop(logger).Named("matching")}
}

// Match scores resumeText against jdText.
func (e *Engine) Match(resumeText, jdText string) *types.MatchResult {
	score := similarity.Score(resumeText, jdText)
	matched, missing := e.matcher.Match(resumeText, jdText)

	e.logger.Debug("matched resume",
		zap.Float64("score", score),
		zap.Int("matched_skills", len(matched)),
		zap.Int("missing_skills", len(missing)))

	return &types.MatchResult{
		Score:         score,
		MatchedSkills: matched,
		MissingSkills: missing,
	}
}

// MatchDocument scores a parsed resume using its normalised text.
func (e *Engine) MatchDocument(doc *types.ParsedDocument, jdText string) *types.MatchResult {
	if doc == nil {
		return e.Match("", jdText)
	}
	return e.Match(doc.RawText, jdText)
}
