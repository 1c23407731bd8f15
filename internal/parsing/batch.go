package parsing

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-screener/internal/extraction"
	"github.com/jonathan/resume-screener/internal/types"
)

// Document is one input to ParseBatch.
type Document struct {
	Name   string
	Data   []byte
	Format extraction.Format
}

// Result pairs a batch input name with its parsed record.
type Result struct {
	Name   string
	Parsed *types.ParsedDocument
}

// ParseBatch parses docs on at most workers goroutines (GOMAXPROCS when workers <= 0).
// Results keep the input order. The only error is ctx cancellation.
func (p *Parser) ParseBatch(ctx context.Context, docs []Document, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(docs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, d := range docs {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = Result{Name: d.Name, Parsed: p.Parse(gCtx, d.Data, d.Format)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.logger.Info("parsed batch", zap.Int("documents", len(docs)), zap.Int("workers", workers))
	return results, nil
}
