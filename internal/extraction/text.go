package extraction

import (
	"strings"
)

func extractPlainText(data []byte) string {
	text := strings.ToValidUTF8(string(data), "\uFFFD")
	text = strings.TrimPrefix(text, "\uFEFF")
	return normalizeLineEndings(text)
}

// normalizeLineEndings converts CRLF and lone CR to LF.
func normalizeLineEndings(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.ReplaceAll(content, "\r", "\n")
}

// CollapseWhitespace replaces every whitespace run with one space and trims the ends.
func CollapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
