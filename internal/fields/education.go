package fields

import (
	"regexp"
	"sort"
	"strings"
)

// degreeTokens are matched case-insensitively with optional periods.
var degreeTokens = []string{
	`B\.?Tech`, `M\.?Tech`, `B\.?Sc`, `M\.?Sc`, `B\.?E`, `M\.?E`,
	`Ph\.?D`, `Bachelor`, `Master`, `Diploma`, `MBA`, `BCA`, `MCA`,
}

// One pattern per degree so a line naming two degrees yields two entries.
var degreePatterns = compileDegreePatterns()

func compileDegreePatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(degreeTokens))
	for i, tok := range degreeTokens {
		patterns[i] = regexp.MustCompile(`(?i)\b` + tok + `\b.*`)
	}
	return patterns
}

// Education returns every degree mention in text, from the degree token to the end of its line.
// Entries are trimmed, deduplicated and sorted.
func Education(text string) []string {
	seen := make(map[string]struct{})
	for _, re := range degreePatterns {
		for _, m := range re.FindAllString(text, -1) {
			m = strings.TrimSpace(m)
			if m != "" {
				seen[m] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
