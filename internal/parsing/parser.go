// Package parsing turns resume documents into types.ParsedDocument records.
package parsing

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-screener/internal/extraction"
	"github.com/jonathan/resume-screener/internal/fields"
	"github.com/jonathan/resume-screener/internal/logging"
	"github.com/jonathan/resume-screener/internal/ner"
	"github.com/jonathan/resume-screener/internal/types"
)

// Parser runs text extraction and the field extractors. It is safe for concurrent use.
type Parser struct {
	extractor  *extraction.Extractor
	recognizer ner.Recognizer
	logger     *zap.Logger
}

// New creates a Parser. A nil recognizer makes every name resolve to types.UnknownName.
func New(recognizer ner.Recognizer, logger *zap.Logger) *Parser {
	logger = logging.OrNop(logger)
	return &Parser{
		extractor:  extraction.New(logger),
		recognizer: recognizer,
		logger:     logger.Named("parsing"),
	}
}

// Parse extracts the document text and every field. It never fails; an unreadable
// document produces a record with empty RawText and absent fields.
func (p *Parser) Parse(ctx context.Context, data []byte, format extraction.Format) *types.ParsedDocument {
	text := p.extractor.Extract(data, format)
	if text == "" {
		p.logger.Info("document produced no text", zap.String("format", string(format)), zap.Int("bytes", len(data)))
	}
	return p.ParseText(ctx, text)
}

// ParseText runs the field extractors over already-extracted text.
func (p *Parser) ParseText(ctx context.Context, text string) *types.ParsedDocument {
	doc := &types.ParsedDocument{
		RawText: extraction.CollapseWhitespace(text),
		Name:    types.UnknownName,
	}

	// Each extractor owns one field of doc, so no locking is needed.
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		doc.Email, doc.Phone = fields.Contact(text)
		return nil
	})

	g.Go(func() error {
		name, err := fields.Name(gCtx, p.recognizer, text)
		if err != nil {
			p.logger.Warn("name recognition failed", zap.Error(err))
		}
		doc.Name = name
		return nil
	})

	g.Go(func() error {
		doc.ExperienceYears = fields.Experience(text)
		return nil
	})

	g.Go(func() error {
		doc.Education = fields.Education(text)
		return nil
	})

	g.Go(func() error {
		doc.Links = fields.Links(text)
		return nil
	})

	_ = g.Wait()

	p.logger.Debug("parsed document",
		zap.String("name", doc.Name),
		zap.Bool("email", doc.Email != nil),
		zap.Bool("phone", doc.Phone != nil),
		zap.Float64("experience_years", doc.ExperienceYears),
		zap.Int("education", len(doc.Education)),
		zap.Int("portfolio_links", len(doc.Links.Portfolio)))

	return doc
}
