// Package extraction turns resume document bytes into plain text.
package extraction

import (
	"path/filepath"
	"strings"
)

// Format identifies a supported document encoding.
type Format string

// Supported formats
const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatHTML Format = "html"
	FormatText Format = "txt"
)

// Formats lists every supported format in display order.
var Formats = []Format{FormatPDF, FormatDOCX, FormatHTML, FormatText}

var formatAliases = map[string]Format{
	"pdf":  FormatPDF,
	"docx": FormatDOCX,
	"html": FormatHTML,
	"htm":  FormatHTML,
	"txt":  FormatText,
	"text": FormatText,
	"md":   FormatText,

	"application/pdf": FormatPDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": FormatDOCX,
	"text/html":  FormatHTML,
	"text/plain": FormatText,
}

// ParseFormat maps a format name, extension or MIME type to a Format.
func ParseFormat(s string) (Format, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.TrimPrefix(key, ".")
	if i := strings.Index(key, ";"); i >= 0 {
		key = strings.TrimSpace(key[:i])
	}
	if f, ok := formatAliases[key]; ok {
		return f, nil
	}
	return "", &UnsupportedFormatError{Value: s}
}

// FormatFromFilename derives the format from a file's extension.
func FormatFromFilename(name string) (Format, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		return "", &UnsupportedFormatError{Value: name}
	}
	f, err := ParseFormat(ext)
	if err != nil {
		return "", &UnsupportedFormatError{Value: name}
	}
	return f, nil
}

// Valid reports whether f is a supported format.
func (f Format) Valid() bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}
