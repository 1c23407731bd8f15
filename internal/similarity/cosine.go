// Package similarity scores two texts by bag-of-words cosine similarity.
package similarity

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// tokenPattern matches runs of two or more letters, digits or underscores.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenize lowercases text and splits it into word tokens. Single-character words are dropped.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// TermFrequencies counts each token of text.
func TermFrequencies(text string) map[string]int {
	counts := make(map[string]int)
	for _, tok := range Tokenize(text) {
		counts[tok]++
	}
	return counts
}

// Score returns the cosine similarity of a and b as a percentage in [0,100], rounded
// to two decimals. It is 0 when either text has no tokens. Score(a,b) == Score(b,a).
func Score(a, b string) float64 {
	tfA := TermFrequencies(a)
	tfB := TermFrequencies(b)
	if len(tfA) == 0 || len(tfB) == 0 {
		return 0
	}

	// Iterate the joint vocabulary in sorted order so the float sums do not depend on
	// argument order or map iteration order.
	vocab := make([]string, 0, len(tfA)+len(tfB))
	for tok := range tfA {
		vocab = append(vocab, tok)
	}
	for tok := range tfB {
		if _, ok := tfA[tok]; !ok {
			vocab = append(vocab, tok)
		}
	}
	sort.Strings(vocab)

	var dot, normA, normB float64
	for _, tok := range vocab {
		x := float64(tfA[tok])
		y := float64(tfB[tok])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	cosine := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return clamp(round2(cosine * 100))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func clamp(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 100:
		return 100
	default:
		return x
	}
}
