package extraction

import "fmt"

// UnsupportedFormatError is returned when a file name or format string does not map to a known Format.
type UnsupportedFormatError struct {
	Value string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported document format: %q (supported: pdf, docx, html, txt)", e.Value)
}
