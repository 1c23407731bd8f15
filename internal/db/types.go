package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-screener/internal/types"
)

// Candidate is a screened resume together with its match outcome
type Candidate struct {
	ID              uuid.UUID          `json:"id"`
	CreatedAt       time.Time          `json:"created_at"`
	SourceFile      string             `json:"source_file"`
	JobTitle        string             `json:"job_title"`
	Name            string             `json:"name"`
	Email           *string            `json:"email"`
	Phone           *string            `json:"phone"`
	ExperienceYears float64            `json:"experience_years"`
	Education       []string           `json:"education"`
	Links           types.Links        `json:"links"`
	Result          *types.MatchResult `json:"result,omitempty"`
}

// NewCandidate builds a Candidate from a parsed resume and its match result.
// ID and CreatedAt are assigned by the store.
func NewCandidate(sourceFile, jobTitle string, doc *types.ParsedDocument, result *types.MatchResult) *Candidate {
	c := &Candidate{
		SourceFile: sourceFile,
		JobTitle:   jobTitle,
		Name:       types.UnknownName,
		Education:  []string{},
		Links:      types.Links{Portfolio: []string{}},
		Result:     result,
	}
	if doc != nil {
		c.Name = doc.Name
		c.Email = doc.Email
		c.Phone = doc.Phone
		c.ExperienceYears = doc.ExperienceYears
		if doc.Education != nil {
			c.Education = doc.Education
		}
		c.Links = doc.Links
		if c.Links.Portfolio == nil {
			c.Links.Portfolio = []string{}
		}
	}
	return c
}

// Document returns the parsed fields of c. RawText is not stored and is empty.
func (c *Candidate) Document() *types.ParsedDocument {
	return &types.ParsedDocument{
		Name:            c.Name,
		Email:           c.Email,
		Phone:           c.Phone,
		ExperienceYears: c.ExperienceYears,
		Education:       c.Education,
		Links:           c.Links,
	}
}

// Job is a stored job description
type Job struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
