// Package worker screens resumes delivered through a message queue.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/extraction"
	"github.com/jonathan/resume-screener/internal/logging"
	"github.com/jonathan/resume-screener/internal/matching"
	"github.com/jonathan/resume-screener/internal/parsing"
	"github.com/jonathan/resume-screener/internal/source"
	"github.com/jonathan/resume-screener/internal/types"
)

// Status is the lifecycle state published for a request
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Request asks for one stored resume to be screened against a job description
type Request struct {
	RequestID      string `json:"request_id"`
	ObjectKey      string `json:"object_key"`
	Format         string `json:"format,omitempty"`
	JobTitle       string `json:"job_title,omitempty"`
	JobDescription string `json:"job_description"`
}

// Validate checks the fields a request cannot be processed without
func (r *Request) Validate() error {
	switch {
	case r.RequestID == "":
		return errors.New("request_id is required")
	case r.ObjectKey == "":
		return errors.New("object_key is required")
	case r.JobDescription == "":
		return errors.New("job_description is required")
	}
	return nil
}

// Update reports progress for a request
type Update struct {
	RequestID   string             `json:"request_id"`
	Status      Status             `json:"status"`
	CandidateID *uuid.UUID         `json:"candidate_id,omitempty"`
	Result      *types.MatchResult `json:"result,omitempty"`
	Error       string             `json:"error,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
}

// Processor runs the fetch, parse, match and store steps for a request.
type Processor struct {
	source source.Source
	parser *parsing.Parser
	engine *matching.Engine
	store  db.Store
	logger *zap.Logger
}

// NewProcessor wires a Processor. store may be nil, in which case results are not persisted.
func NewProcessor(src source.Source, parser *parsing.Parser, engine *matching.Engine, store db.Store, logger *zap.Logger) *Processor {
	return &Processor{
		source: src,
		parser: parser,
		engine: engine,
		store:  store,
		logger: logging.OrNop(logger).Named("worker"),
	}
}

// Process screens the resume named by req and returns the final update
func (p *Processor) Process(ctx context.Context, req *Request) *Update {
	update := &Update{RequestID: req.RequestID, Status: StatusFailed}

	format, err := requestFormat(req)
	if err != nil {
		update.Error = err.Error()
		return stamp(update)
	}

	data, err := p.source.Fetch(ctx, req.ObjectKey)
	if err != nil {
		update.Error = fmt.Sprintf("file download error: %v", err)
		return stamp(update)
	}

	doc := p.parser.Parse(ctx, data, format)
	result := p.engine.MatchDocument(doc, req.JobDescription)
	update.Result = result

	if p.store != nil {
		id, err := p.store.AddCandidate(ctx, db.NewCandidate(req.ObjectKey, req.JobTitle, doc, result))
		if err != nil {
			update.Error = fmt.Sprintf("failed to save candidate: %v", err)
			return stamp(update)
		}
		update.CandidateID = &id
	}

	update.Status = StatusCompleted
	p.logger.Info("screened resume",
		zap.String("request_id", req.RequestID),
		zap.String("object_key", req.ObjectKey),
		zap.Float64("score", result.Score))
	return stamp(update)
}

func requestFormat(req *Request) (extraction.Format, error) {
	if req.Format != "" {
		return extraction.ParseFormat(req.Format)
	}
	return extraction.FormatFromFilename(req.ObjectKey)
}

func stamp(u *Update) *Update {
	u.Timestamp = time.Now().UTC()
	return u
}
