package types

// MatchResult is the outcome of comparing one resume against one job description.
type MatchResult struct {
	Score         float64  `json:"score"` // 0-100, two decimals
	MatchedSkills []string `json:"matched_skills"`
	MissingSkills []string `json:"missing_skills"`
}

// ScoreBand buckets a match score for display.
type ScoreBand string

const (
	// BandStrong is a score of 70 or more
	BandStrong ScoreBand = "strong"
	// BandModerate is a score of 40 up to 70
	BandModerate ScoreBand = "moderate"
	// BandWeak is anything below 40
	BandWeak ScoreBand = "weak"
)

// Band returns the display band for the result's score.
func (r *MatchResult) Band() ScoreBand {
	switch {
	case r.Score >= 70:
		return BandStrong
	case r.Score >= 40:
		return BandModerate
	default:
		return BandWeak
	}
}
