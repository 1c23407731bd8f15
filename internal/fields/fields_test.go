package fields

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-screener/internal/types"
)

func TestEmail_FirstMatch(t *testing.T) {
	text := "Contact: jane.doe+jobs@mail.example.com or backup@example.org"

	email := Email(text)

	require.NotNil(t, email)
	assert.Equal(t, "jane.doe+jobs@mail.example.com", *email)
}

func TestPhone_Formats(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"call 123-456-7890 now", "123-456-7890"},
		{"mobile +91-9876543210", "+91-9876543210"},
		{"(555) 123-4567", "(555) 123-4567"},
		{"tel 9876543210", "9876543210"},
	}
	for _, tt := range tests {
		phone := Phone(tt.text)
		require.NotNil(t, phone, tt.text)
		assert.Equal(t, tt.want, *phone, tt.text)
	}
}

func TestContact_NoContactInfo(t *testing.T) {
	email, phone := Contact("Jane Doe\nSoftware engineer with Go experience")

	assert.Nil(t, email)
	assert.Nil(t, phone)
}

func TestExperience_MaxOfMentions(t *testing.T) {
	text := "Experienced in Python and Go, 5+ years of backend development. Led a team for 2 yrs. 3.5 Years with Kubernetes."

	assert.Equal(t, 5.0, Experience(text))
}

func TestExperience_Decimal(t *testing.T) {
	assert.Equal(t, 7.5, Experience("7.5 YEARS in data engineering"))
}

func TestExperience_NoneFound(t *testing.T) {
	assert.Equal(t, 0.0, Experience("Fresh graduate"))
	assert.Equal(t, 0.0, Experience(""))
}

func TestEducation_LinesAndDedup(t *testing.T) {
	text := "Ph.D in Computer Science\nB.Tech in Electronics, 2015\nPh.D in Computer Science\n"

	edu := Education(text)

	assert.Equal(t, []string{"B.Tech in Electronics, 2015", "Ph.D in Computer Science"}, edu)
}

func TestEducation_CaseInsensitiveAndOptionalPeriods(t *testing.T) {
	edu := Education("mba, Wharton\nBSc Mathematics")

	assert.ElementsMatch(t, []string{"mba, Wharton", "BSc Mathematics"}, edu)
}

func TestEducation_TwoDegreesOnOneLine(t *testing.T) {
	edu := Education("Bachelor of Arts and Master of Science")

	assert.ElementsMatch(t, []string{"Bachelor of Arts and Master of Science", "Master of Science"}, edu)
}

func TestEducation_WordBoundary(t *testing.T) {
	assert.Empty(t, Education("Mastering Kubernetes\nBecause reasons"))
}

func TestEducation_None(t *testing.T) {
	edu := Education("No formal schooling listed")

	assert.NotNil(t, edu)
	assert.Empty(t, edu)
}

func TestLinks_Classification(t *testing.T) {
	text := "Find me at https://github.com/janedoe and https://www.linkedin.com/in/jane-doe."

	links := Links(text)

	require.NotNil(t, links.GitHub)
	require.NotNil(t, links.LinkedIn)
	assert.Equal(t, "https://github.com/janedoe", *links.GitHub)
	assert.Equal(t, "https://www.linkedin.com/in/jane-doe", *links.LinkedIn)
	assert.Empty(t, links.Portfolio)
}

func TestLinks_LastWinsAndPortfolioOrder(t *testing.T) {
	text := "https://github.com/old https://janedoe.dev http://blog.example.com/posts https://github.com/new"

	links := Links(text)

	require.NotNil(t, links.GitHub)
	assert.Equal(t, "https://github.com/new", *links.GitHub)
	assert.Nil(t, links.LinkedIn)
	assert.Equal(t, []string{"https://janedoe.dev", "http://blog.example.com/posts"}, links.Portfolio)
}

func TestLinks_ClassificationIsCaseSensitive(t *testing.T) {
	links := Links("https://GitHub.com/janedoe https://LinkedIn.com/in/jane")

	assert.Nil(t, links.GitHub)
	assert.Nil(t, links.LinkedIn)
	assert.Equal(t, []string{"https://GitHub.com/janedoe", "https://LinkedIn.com/in/jane"}, links.Portfolio)
}

func TestLinks_NoURLs(t *testing.T) {
	links := Links("no links, just www.example.com without a scheme")

	assert.Nil(t, links.GitHub)
	assert.Nil(t, links.LinkedIn)
	assert.NotNil(t, links.Portfolio)
	assert.Empty(t, links.Portfolio)
}

type stubRecognizer struct {
	persons []string
	err     error
	got     string
}

func (s *stubRecognizer) Persons(_ context.Context, text string) ([]string, error) {
	s.got = text
	return s.persons, s.err
}

func TestName_FirstPerson(t *testing.T) {
	r := &stubRecognizer{persons: []string{"Jane Doe", "John Smith"}}

	name, err := Name(context.Background(), r, "Jane Doe\nReferences: John Smith")

	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", name)
}

func TestName_OnlyLooksAtWindow(t *testing.T) {
	r := &stubRecognizer{}
	text := strings.Repeat("é", 300)

	name, err := Name(context.Background(), r, text)

	require.NoError(t, err)
	assert.Equal(t, types.UnknownName, name)
	assert.Equal(t, NameWindow, len([]rune(r.got)))
}

func TestName_NilRecognizer(t *testing.T) {
	name, err := Name(context.Background(), nil, "Jane Doe")

	require.NoError(t, err)
	assert.Equal(t, types.UnknownName, name)
}

func TestName_RecognizerError(t *testing.T) {
	r := &stubRecognizer{err: errors.New("model unavailable")}

	name, err := Name(context.Background(), r, "Jane Doe")

	assert.Error(t, err)
	assert.Equal(t, types.UnknownName, name)
}

func TestHead(t *testing.T) {
	assert.Equal(t, "ab", Head("abc", 2))
	assert.Equal(t, "abc", Head("abc", 10))
	assert.Equal(t, "", Head("abc", 0))
	assert.Equal(t, "жё", Head("жёлтый", 2))
}
