package fields

import (
	"regexp"
	"strings"

	"github.com/jonathan/resume-screener/internal/types"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"'` + "`" + `()\[\]{}|\\^]+`)

// Links finds http(s) URLs and classifies them. The last LinkedIn and GitHub URLs win;
// every other URL is a portfolio link, kept in encounter order. Classification
// is case-sensitive on the URL as written.
func Links(text string) types.Links {
	links := types.Links{Portfolio: []string{}}

	for _, raw := range urlPattern.FindAllString(text, -1) {
		u := strings.TrimRight(raw, ".,;:!?")
		if hostOf(u) == "" {
			continue
		}
		switch {
		case strings.Contains(u, "linkedin.com"):
			links.LinkedIn = &u
		case strings.Contains(u, "github.com"):
			links.GitHub = &u
		default:
			links.Portfolio = append(links.Portfolio, u)
		}
	}
	return links
}

// hostOf returns the authority part of an http(s) URL.
func hostOf(u string) string {
	i := strings.Index(u, "://")
	if i < 0 {
		return ""
	}
	rest := u[i+3:]
	if j := strings.IndexAny(rest, "/?#"); j >= 0 {
		rest = rest[:j]
	}
	return rest
}
