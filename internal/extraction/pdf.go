package extraction

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

func (e *Extractor) extractPDF(data []byte) string {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		e.logger.Warn("failed to open pdf", zap.Error(err))
		return ""
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		text, err := e.pdfPageText(reader, i)
		if err != nil {
			e.logger.Debug("skipping unreadable pdf page", zap.Int("page", i), zap.Error(err))
			continue
		}
		if text != "" {
			pages = append(pages, text)
		}
	}

	return strings.Join(pages, "\n")
}

// pdfPageText reads one page, converting decoder panics into errors.
func (e *Extractor) pdfPageText(reader *pdf.Reader, index int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page decoder panicked: %v", r)
		}
	}()

	page := reader.Page(index)
	if page.V.IsNull() {
		return "", fmt.Errorf("page object is null")
	}

	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(text, " \n"), nil
}
