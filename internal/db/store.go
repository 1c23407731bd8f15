package db

import (
	"context"

	"github.com/google/uuid"
)

// Store persists candidates and jobs. Records are append-only apart from Clear.
type Store interface {
	AddCandidate(ctx context.Context, c *Candidate) (uuid.UUID, error)
	// ListCandidates returns candidates newest first.
	ListCandidates(ctx context.Context) ([]Candidate, error)
	// GetCandidate returns nil, nil when no candidate has the given ID.
	GetCandidate(ctx context.Context, id uuid.UUID) (*Candidate, error)
	AddJob(ctx context.Context, title, description string) (uuid.UUID, error)
	// ListJobs returns jobs newest first.
	ListJobs(ctx context.Context) ([]Job, error)
	Clear(ctx context.Context) error
	Close()
}

var (
	_ Store = (*DB)(nil)
	_ Store = (*FileStore)(nil)
)
