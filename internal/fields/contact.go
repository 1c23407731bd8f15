// Package fields holds the independent heuristics that pull candidate fields out of resume text.
// None of them fail: a field that cannot be found comes back as its absent value.
package fields

import "regexp"

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(\+?\d{1,4}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
)

// Contact returns the first email address and the first phone number in text.
func Contact(text string) (email, phone *string) {
	return Email(text), Phone(text)
}

// Email returns the first email address in text, or nil.
func Email(text string) *string {
	return firstMatch(emailPattern, text)
}

// Phone returns the first phone-number-shaped digit run in text, or nil.
func Phone(text string) *string {
	return firstMatch(phonePattern, text)
}

func firstMatch(re *regexp.Regexp, text string) *string {
	m := re.FindString(text)
	if m == "" {
		return nil
	}
	return &m
}
