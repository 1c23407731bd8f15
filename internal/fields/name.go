package fields

import (
	"context"
	"strings"

	"github.com/jonathan/resume-screener/internal/ner"
	"github.com/jonathan/resume-screener/internal/types"
)

// NameWindow is how many leading characters of a resume are searched for the candidate name.
const NameWindow = 200

// Name returns the first PERSON entity in the opening NameWindow characters of text.
// A nil or failing recogniser yields types.UnknownName.
func Name(ctx context.Context, recognizer ner.Recognizer, text string) (string, error) {
	if recognizer == nil {
		return types.UnknownName, nil
	}

	persons, err := recognizer.Persons(ctx, Head(text, NameWindow))
	if err != nil {
		return types.UnknownName, err
	}
	for _, p := range persons {
		if p = strings.TrimSpace(p); p != "" {
			return p, nil
		}
	}
	return types.UnknownName, nil
}

// Head returns the first n runes of s.
func Head(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
