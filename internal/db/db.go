// Package db stores screened candidates and job descriptions.
package db

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/resume-screener/internal/types"
)

//go:embed schema.sql
var schemaSQL string

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the tables if they do not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

const candidateColumns = `id, created_at, source_file, job_title, name, email, phone,
	experience_years, education, links, result`

// AddCandidate inserts c and returns its new ID
func (db *DB) AddCandidate(ctx context.Context, c *Candidate) (uuid.UUID, error) {
	if c == nil {
		return uuid.Nil, errors.New("candidate is required")
	}
	education, err := json.Marshal(nonNil(c.Education))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal education: %w", err)
	}
	links, err := json.Marshal(c.Links)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal links: %w", err)
	}
	var result []byte
	if c.Result != nil {
		if result, err = json.Marshal(c.Result); err != nil {
			return uuid.Nil, fmt.Errorf("failed to marshal match result: %w", err)
		}
	}

	c.ID = uuid.New()
	err = db.pool.QueryRow(ctx,
		`INSERT INTO candidates (id, source_file, job_title, name, email, phone,
		     experience_years, education, links, result)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING created_at`,
		c.ID, c.SourceFile, c.JobTitle, c.Name, c.Email, c.Phone,
		c.ExperienceYears, education, links, result,
	).Scan(&c.CreatedAt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to add candidate: %w", err)
	}
	return c.ID, nil
}

// ListCandidates retrieves all candidates, newest first
func (db *DB) ListCandidates(ctx context.Context) ([]Candidate, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+candidateColumns+` FROM candidates ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	candidates := []Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return candidates, nil
}

// GetCandidate retrieves a candidate by ID
func (db *DB) GetCandidate(ctx context.Context, id uuid.UUID) (*Candidate, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id)
	c, err := scanCandidate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// AddJob inserts a job description and returns its ID
func (db *DB) AddJob(ctx context.Context, title, description string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := db.pool.Exec(ctx,
		`INSERT INTO jobs (id, title, description) VALUES ($1, $2, $3)`,
		id, title, description,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to add job: %w", err)
	}
	return id, nil
}

// ListJobs retrieves all jobs, newest first
func (db *DB) ListJobs(ctx context.Context) ([]Job, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, title, description, created_at FROM jobs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []Job{}
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.Title, &j.Description, &j.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// Clear deletes every candidate and job
func (db *DB) Clear(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, `TRUNCATE candidates, jobs`); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}
	return nil
}

func scanCandidate(row pgx.Row) (*Candidate, error) {
	var c Candidate
	var education, links, result []byte
	err := row.Scan(&c.ID, &c.CreatedAt, &c.SourceFile, &c.JobTitle, &c.Name, &c.Email, &c.Phone,
		&c.ExperienceYears, &education, &links, &result)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan candidate: %w", err)
	}

	c.Education = []string{}
	if len(education) > 0 {
		if err := json.Unmarshal(education, &c.Education); err != nil {
			return nil, fmt.Errorf("failed to decode education for %s: %w", c.ID, err)
		}
	}
	if len(links) > 0 {
		if err := json.Unmarshal(links, &c.Links); err != nil {
			return nil, fmt.Errorf("failed to decode links for %s: %w", c.ID, err)
		}
	}
	if c.Links.Portfolio == nil {
		c.Links.Portfolio = []string{}
	}
	if len(result) > 0 {
		c.Result = &types.MatchResult{}
		if err := json.Unmarshal(result, c.Result); err != nil {
			return nil, fmt.Errorf("failed to decode match result for %s: %w", c.ID, err)
		}
	}
	return &c, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
