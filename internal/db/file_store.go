package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/logging"
)

// DefaultFilePath is used when no store path is configured
const DefaultFilePath = "data/resume_screener.json"

type fileContents struct {
	Candidates []Candidate `json:"candidates"`
	Jobs       []Job       `json:"jobs"`
}

// FileStore keeps all records in a single JSON document on disk.
// Records are kept oldest first in the file and returned newest first.
type FileStore struct {
	path   string
	logger *zap.Logger
	now    func() time.Time

	mu sync.Mutex
}

// NewFileStore creates a store at path, writing an empty document if none exists.
func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	if path == "" {
		path = DefaultFilePath
	}
	s := &FileStore{path: path, logger: logging.OrNop(logger).Named("store"), now: time.Now}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := s.write(&fileContents{}); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat store file: %w", err)
	}
	return s, nil
}

// Path returns the backing file path
func (s *FileStore) Path() string { return s.path }

// read loads the document. A missing or corrupt file reads as empty.
func (s *FileStore) read() *fileContents {
	contents := &fileContents{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("failed to read store file", zap.String("path", s.path), zap.Error(err))
		}
		return contents
	}
	if err := json.Unmarshal(data, contents); err != nil {
		s.logger.Warn("store file is corrupt, treating as empty", zap.String("path", s.path), zap.Error(err))
		return &fileContents{}
	}
	return contents
}

func (s *FileStore) write(contents *fileContents) error {
	if contents.Candidates == nil {
		contents.Candidates = []Candidate{}
	}
	if contents.Jobs == nil {
		contents.Jobs = []Job{}
	}
	data, err := json.MarshalIndent(contents, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}

// AddCandidate appends c, assigning its ID and CreatedAt
func (s *FileStore) AddCandidate(ctx context.Context, c *Candidate) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}
	if c == nil {
		return uuid.Nil, errors.New("candidate is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	contents := s.read()
	c.ID = uuid.New()
	c.CreatedAt = s.now().UTC()
	contents.Candidates = append(contents.Candidates, *c)
	if err := s.write(contents); err != nil {
		return uuid.Nil, err
	}
	return c.ID, nil
}

// ListCandidates returns all candidates, newest first
func (s *FileStore) ListCandidates(ctx context.Context) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	contents := s.read()
	s.mu.Unlock()

	out := make([]Candidate, 0, len(contents.Candidates))
	for i := len(contents.Candidates) - 1; i >= 0; i-- {
		out = append(out, contents.Candidates[i])
	}
	return out, nil
}

// GetCandidate returns the candidate with id, or nil if absent
func (s *FileStore) GetCandidate(ctx context.Context, id uuid.UUID) (*Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	contents := s.read()
	s.mu.Unlock()

	for i := range contents.Candidates {
		if contents.Candidates[i].ID == id {
			c := contents.Candidates[i]
			return &c, nil
		}
	}
	return nil, nil
}

// AddJob appends a job description
func (s *FileStore) AddJob(ctx context.Context, title, description string) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	contents := s.read()
	job := Job{ID: uuid.New(), Title: title, Description: description, CreatedAt: s.now().UTC()}
	contents.Jobs = append(contents.Jobs, job)
	if err := s.write(contents); err != nil {
		return uuid.Nil, err
	}
	return job.ID, nil
}

// ListJobs returns all jobs, newest first
func (s *FileStore) ListJobs(ctx context.Context) ([]Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	contents := s.read()
	s.mu.Unlock()

	out := make([]Job, 0, len(contents.Jobs))
	for i := len(contents.Jobs) - 1; i >= 0; i-- {
		out = append(out, contents.Jobs[i])
	}
	return out, nil
}

// Clear removes every record
func (s *FileStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(&fileContents{})
}

// Close is a no-op; the file is not held open between calls.
func (s *FileStore) Close() {}
