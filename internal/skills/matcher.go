// Package skills compares the skills a job description asks for with those a resume mentions.
package skills

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/resume-screener/internal/vocabulary"
)

// Mode controls how a skill is found inside text.
type Mode string

const (
	// ModeSubstring matches a skill anywhere, so "go" is found inside "good".
	ModeSubstring Mode = "substring"
	// ModeWordBoundary matches a skill only when not flanked by a letter or digit.
	ModeWordBoundary Mode = "word"
)

// ParseMode maps a config value to a Mode. Empty selects ModeSubstring.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeSubstring:
		return ModeSubstring, nil
	case ModeWordBoundary, "word_boundary", "word-boundary":
		return ModeWordBoundary, nil
	default:
		return "", fmt.Errorf("unknown skill match mode %q (want %q or %q)", s, ModeSubstring, ModeWordBoundary)
	}
}

// Matcher finds vocabulary skills in text. It is immutable and safe for concurrent use.
type Matcher struct {
	vocab    *vocabulary.Vocabulary
	contains func(text, skill string) bool
}

// NewMatcher creates a Matcher over vocab. A nil vocab matches nothing.
func NewMatcher(vocab *vocabulary.Vocabulary, mode Mode) *Matcher {
	if vocab == nil {
		vocab = vocabulary.Empty()
	}
	m := &Matcher{vocab: vocab, contains: strings.Contains}
	if mode == ModeWordBoundary {
		m.contains = containsWord
	}
	return m
}

// Match returns the vocabulary skills required by jdText that resumeText does and does not
// mention. Both results are sorted, disjoint and never nil.
func (m *Matcher) Match(resumeText, jdText string) (matched, missing []string) {
	resume := strings.ToLower(resumeText)
	jd := strings.ToLower(jdText)

	matched = []string{}
	missing = []string{}
	for _, skill := range m.vocab.All() {
		if !m.contains(jd, skill) {
			continue
		}
		if m.contains(resume, skill) {
			matched = append(matched, skill)
		} else {
			missing = append(missing, skill)
		}
	}
	return matched, missing
}

// Find returns the vocabulary skills mentioned in text, sorted.
func (m *Matcher) Find(text string) []string {
	lower := strings.ToLower(text)
	found := []string{}
	for _, skill := range m.vocab.All() {
		if m.contains(lower, skill) {
			found = append(found, skill)
		}
	}
	return found
}

// containsWord reports whether skill occurs in text with no letter or digit directly
// before or after it.
func containsWord(text, skill string) bool {
	if skill == "" {
		return false
	}
	for start := 0; start <= len(text)-len(skill); {
		i := strings.Index(text[start:], skill)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(skill)
		if !wordRuneBefore(text, i) && !wordRuneAfter(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		start = i + size
	}
	return false
}

func wordRuneBefore(text string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return isWordRune(r)
}

func wordRuneAfter(text string, i int) bool {
	if i >= len(text) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
