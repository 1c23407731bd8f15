package extraction

import (
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/logging"
)

// Extractor reads text out of documents. It never fails: unreadable input yields "".
type Extractor struct {
	logger *zap.Logger
}

// New creates an Extractor that logs swallowed decode failures to logger.
func New(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logging.OrNop(logger).Named("extraction")}
}

var defaultExtractor = New(nil)

// Extract returns the text of data using a silent default Extractor.
func Extract(data []byte, format Format) string {
	return defaultExtractor.Extract(data, format)
}

// Extract returns the document text. Pages and paragraphs are newline-separated.
// Empty, corrupt or unknown-format input returns "".
func (e *Extractor) Extract(data []byte, format Format) (text string) {
	if len(data) == 0 {
		return ""
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("document decoder panicked",
				zap.String("format", string(format)),
				zap.Any("panic", r))
			text = ""
		}
	}()

	switch format {
	case FormatPDF:
		return e.extractPDF(data)
	case FormatDOCX:
		return e.extractDOCX(data)
	case FormatHTML:
		return e.extractHTML(data)
	case FormatText:
		return extractPlainText(data)
	default:
		e.logger.Warn("unknown document format", zap.String("format", string(format)))
		return ""
	}
}
