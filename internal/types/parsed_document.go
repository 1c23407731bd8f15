// Package types provides type definitions for structured data used throughout the resume-screener system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// UnknownName is the sentinel used when no person name could be recognised.
const UnknownName = "Unknown"

// ParsedDocument is the structured record extracted from one resume document.
// Absent values are explicit: nil pointers and empty slices, never errors.
type ParsedDocument struct {
	RawText         string   `json:"raw_text"`
	Name            string   `json:"name"`
	Email           *string  `json:"email"`
	Phone           *string  `json:"phone"`
	ExperienceYears float64  `json:"experience_years"` // 0 means not found
	Education       []string `json:"education"`        // set semantics, sorted
	Links           Links    `json:"links"`
}

// Links holds the URLs found in a resume, classified by host.
type Links struct {
	LinkedIn  *string  `json:"linkedin"`
	GitHub    *string  `json:"github"`
	Portfolio []string `json:"portfolio"` // encounter order
}

// IsEmpty reports whether the document had no readable text.
func (d *ParsedDocument) IsEmpty() bool {
	return d == nil || d.RawText == ""
}

// StringOr returns *s, or fallback when s is nil.
func StringOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
