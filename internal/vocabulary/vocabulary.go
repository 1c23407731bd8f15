// Package vocabulary holds the controlled list of skills used for job matching.
package vocabulary

import (
	_ "embed"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/logging"
	"github.com/jonathan/resume-screener/internal/schemas"
	embedded "github.com/jonathan/resume-screener/schemas"
)

//go:embed default_skills.json
var defaultSkills []byte

const defaultPath = "(embedded default)"

// Vocabulary is an immutable pair of disjoint lowercase skill sets. Safe for concurrent use.
type Vocabulary struct {
	technical []string
	soft      []string
	all       []string
	index     map[string]struct{}
}

type file struct {
	TechnicalSkills []string `json:"technical_skills"`
	SoftSkills      []string `json:"soft_skills"`
}

// New builds a vocabulary. Every entry must be non-empty, trimmed and lowercase, and no
// skill may appear in both sets. Duplicates within a set are collapsed.
func New(technical, soft []string) (*Vocabulary, error) {
	tech, err := normalizeSet("technical_skills", technical)
	if err != nil {
		return nil, err
	}
	softSet, err := normalizeSet("soft_skills", soft)
	if err != nil {
		return nil, err
	}

	techIndex := make(map[string]struct{}, len(tech))
	for _, s := range tech {
		techIndex[s] = struct{}{}
	}
	for i, s := range softSet {
		if _, dup := techIndex[s]; dup {
			return nil, &EntryError{Set: "soft_skills", Index: i, Value: s, Reason: "also listed in technical_skills"}
		}
	}

	all := make([]string, 0, len(tech)+len(softSet))
	all = append(all, tech...)
	all = append(all, softSet...)
	sort.Strings(all)

	index := make(map[string]struct{}, len(all))
	for _, s := range all {
		index[s] = struct{}{}
	}

	return &Vocabulary{technical: tech, soft: softSet, all: all, index: index}, nil
}

// normalizeSet checks entries and returns them deduplicated and sorted.
func normalizeSet(name string, entries []string) ([]string, error) {
	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0, len(entries))
	for i, s := range entries {
		switch {
		case s == "":
			return nil, &EntryError{Set: name, Index: i, Value: s, Reason: "empty skill"}
		case strings.TrimSpace(s) != s:
			return nil, &EntryError{Set: name, Index: i, Value: s, Reason: "leading or trailing whitespace"}
		case strings.ToLower(s) != s:
			return nil, &EntryError{Set: name, Index: i, Value: s, Reason: "not lowercase"}
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

// Empty returns a vocabulary with no skills.
func Empty() *Vocabulary {
	v, _ := New(nil, nil)
	return v
}

// Default returns the vocabulary embedded in the binary.
func Default() (*Vocabulary, error) {
	return parse(defaultPath, defaultSkills)
}

// Parse decodes and validates a vocabulary JSON document.
func Parse(data []byte) (*Vocabulary, error) {
	return parse("(inline)", data)
}

func parse(path string, data []byte) (*Vocabulary, error) {
	if err := schemas.ValidateEmbedded(embedded.VocabularySchema, string(data)); err != nil {
		return nil, &LoadError{Path: path, Message: "does not match schema", Cause: err}
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, &LoadError{Path: path, Message: "invalid JSON", Cause: err}
	}

	v, err := New(f.TechnicalSkills, f.SoftSkills)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "invalid entry", Cause: err}
	}
	return v, nil
}

// Load reads the vocabulary at path. An empty path selects the embedded default.
// A missing file logs a warning and yields an empty vocabulary; a malformed one is an error.
func Load(path string, logger *zap.Logger) (*Vocabulary, error) {
	logger = logging.OrNop(logger).Named("vocabulary")

	if path == "" {
		v, err := Default()
		if err != nil {
			return nil, err
		}
		logger.Debug("using embedded vocabulary", zap.Int("skills", v.Len()))
		return v, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("vocabulary file not found, skill matching disabled", zap.String("path", path))
		return Empty(), nil
	}
	if err != nil {
		return nil, &LoadError{Path: path, Message: "cannot read file", Cause: err}
	}

	v, err := parse(path, data)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded vocabulary",
		zap.String("path", path),
		zap.Int("technical", len(v.technical)),
		zap.Int("soft", len(v.soft)))
	return v, nil
}

// Technical returns the technical skills, sorted. The slice must not be modified.
func (v *Vocabulary) Technical() []string { return v.technical }

// Soft returns the soft skills, sorted. The slice must not be modified.
func (v *Vocabulary) Soft() []string { return v.soft }

// All returns technical and soft skills together, sorted. The slice must not be modified.
func (v *Vocabulary) All() []string { return v.all }

// Contains reports whether skill is in either set.
func (v *Vocabulary) Contains(skill string) bool {
	_, ok := v.index[skill]
	return ok
}

// Len returns the number of distinct skills.
func (v *Vocabulary) Len() int { return len(v.all) }

// MarshalJSON writes the vocabulary in its file format.
func (v *Vocabulary) MarshalJSON() ([]byte, error) {
	return json.Marshal(file{TechnicalSkills: v.technical, SoftSkills: v.soft})
}
