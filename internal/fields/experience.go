package fields

import (
	"regexp"
	"strconv"
	"strings"
)

var experiencePattern = regexp.MustCompile(`(\d+(\.\d+)?)\+?\s*(years?|yrs?)`)

// Experience estimates years of experience as the largest "N years" mention in text.
// It returns 0 when there is none, which is indistinguishable from a stated zero.
func Experience(text string) float64 {
	best := 0.0
	for _, m := range experiencePattern.FindAllStringSubmatch(strings.ToLower(text), -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if v > best {
			best = v
		}
	}
	return best
}
