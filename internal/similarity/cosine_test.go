package similarity

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"go", "and", "python", "5th", "c_sharp", "résumé"},
		Tokenize("Go and Python: a 5th C_Sharp Résumé!"))
	assert.Empty(t, Tokenize("a b c !"))
}

func TestScore_Identical(t *testing.T) {
	jd := "We need a backend engineer with Python and Go, 3 years experience"

	assert.Equal(t, 100.0, Score(jd, jd))
}

func TestScore_IdenticalIgnoresCaseAndPunctuation(t *testing.T) {
	assert.Equal(t, 100.0, Score("Python, Go!", "python go"))
}

func TestScore_Disjoint(t *testing.T) {
	assert.Equal(t, 0.0, Score("python django", "accounting payroll"))
}

func TestScore_Empty(t *testing.T) {
	assert.Equal(t, 0.0, Score("", "python"))
	assert.Equal(t, 0.0, Score("python", ""))
	assert.Equal(t, 0.0, Score("", ""))
	assert.Equal(t, 0.0, Score("a b c", "python"))
}

func TestScore_KnownValue(t *testing.T) {
	// a=[go:1, python:1], b=[go:1, rust:1] -> 1/2
	assert.Equal(t, 50.0, Score("go python", "go rust"))

	// a=[go:2, java:1], b=[go:1] -> 2/sqrt(5) = 0.894427...
	assert.Equal(t, 89.44, Score("go go java", "go"))
}

func TestScore_Symmetric(t *testing.T) {
	words := []string{"python", "go", "kubernetes", "docker", "backend", "api", "sql", "team", "lead", "years"}
	rng := rand.New(rand.NewSource(7))
	randomText := func() string {
		n := rng.Intn(30)
		parts := make([]string, n)
		for i := range parts {
			parts[i] = words[rng.Intn(len(words))]
		}
		return strings.Join(parts, " ")
	}

	for i := 0; i < 200; i++ {
		a, b := randomText(), randomText()
		s := Score(a, b)
		assert.Equal(t, s, Score(b, a), "a=%q b=%q", a, b)
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 100.0)
	}
}

func TestScore_TwoDecimals(t *testing.T) {
	s := Score("alpha beta gamma", "alpha delta")
	assert.Equal(t, s, float64(int64(s*100+0.5))/100)
}
