package ner

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/logging"
)

const personLabel = "PERSON"

// proseModel decodes the bundled tagger and entity model once per process.
var proseModel = sync.OnceValue(func() *prose.Model {
	seed, err := prose.NewDocument("", prose.WithSegmentation(false))
	if err != nil {
		return nil
	}
	return seed.Model
})

// Prose tags entities with the averaged-perceptron model bundled in jdkato/prose.
type Prose struct {
	model  *prose.Model
	logger *zap.Logger
}

// NewProse returns a local recogniser. It needs no network or model files.
// Every Prose shares one decoded model.
func NewProse(logger *zap.Logger) *Prose {
	return &Prose{model: proseModel(), logger: logging.OrNop(logger)}
}

// Persons implements Recognizer. Entity spans never cross a line break.
func (p *Prose) Persons(ctx context.Context, text string) (persons []string, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("prose tagger panicked: %v", r)
		}
	}()

	opts := []prose.DocOpt{prose.WithSegmentation(false)}
	if p.model != nil {
		opts = append(opts, prose.UsingModel(p.model))
	}
	doc, err := prose.NewDocument(text, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to tag text: %w", err)
	}

	for _, span := range lineSpans(text, doc.Tokens()) {
		if spanLabel(span) == personLabel {
			persons = append(persons, spanText(span))
		}
	}
	p.logger.Debug("tagged persons", zap.Int("count", len(persons)))
	return persons, nil
}

type lineToken struct {
	prose.Token
	line int
}

// locateLines assigns each token the line of text it was read from.
func locateLines(text string, tokens []prose.Token) []lineToken {
	out := make([]lineToken, len(tokens))
	cursor, line := 0, 0
	for i, tok := range tokens {
		if at := strings.Index(text[cursor:], tok.Text); at >= 0 {
			line += strings.Count(text[cursor:cursor+at], "\n")
			cursor += at + len(tok.Text)
		}
		out[i] = lineToken{Token: tok, line: line}
	}
	return out
}

// lineSpans groups IOB-labelled tokens into entity spans the way prose chunks
// them, except that a line break always ends the current span.
func lineSpans(text string, tokens []prose.Token) [][]lineToken {
	var (
		spans [][]lineToken
		parts []lineToken
		end   string
	)
	flush := func() {
		if len(parts) > 0 {
			spans = append(spans, parts)
		}
		parts, end = nil, ""
	}

	for _, tok := range locateLines(text, tokens) {
		if len(parts) > 0 && tok.line != parts[len(parts)-1].line {
			flush()
		}

		idx := len(parts)
		label := tok.Label
		switch {
		case (label != "O" && label != end) ||
			(idx > 0 && tok.Tag == parts[idx-1].Tag) ||
			(idx > 0 && tok.Tag == "CD" && parts[idx-1].Label != "O"):
			end = strings.Replace(label, "B", "I", 1)
			parts = append(parts, tok)
		case (label == "O" && end != "") || label == end:
			if label != "O" {
				parts = append(parts, tok)
			}
			flush()
		}
	}
	flush()
	return spans
}

func spanLabel(span []lineToken) string {
	if len(span) == 2 && (span[0].Label == "B-"+personLabel || span[1].Label == "B-"+personLabel) {
		return personLabel
	}
	_, label, _ := strings.Cut(span[0].Label, "-")
	return label
}

func spanText(span []lineToken) string {
	words := make([]string, len(span))
	for i, tok := range span {
		words[i] = tok.Text
	}
	return strings.Join(words, " ")
}
