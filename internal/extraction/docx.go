package extraction

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
	"go.uber.org/zap"
)

func (e *Extractor) extractDOCX(data []byte) string {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		e.logger.Warn("failed to open docx", zap.Error(err))
		return ""
	}
	defer doc.Close()

	paragraphs, err := docxParagraphs(doc.Editable().GetContent())
	if err != nil {
		e.logger.Debug("docx body truncated", zap.Error(err), zap.Int("paragraphs_read", len(paragraphs)))
	}

	return strings.Join(paragraphs, "\n")
}

// docxParagraphs walks WordprocessingML and returns one string per w:p element.
// Paragraphs nested inside another (text boxes) are returned when they close,
// before the paragraph that anchors them. The mc:Fallback copy of alternate
// content is skipped. On a malformed body it returns the paragraphs read so
// far, open ones included, along with the error.
func docxParagraphs(documentXML string) ([]string, error) {
	decoder := xml.NewDecoder(strings.NewReader(documentXML))
	decoder.Strict = false

	var (
		paragraphs []string
		open       []*strings.Builder
		inText     bool
		fallback   int
	)
	current := func() *strings.Builder {
		if len(open) == 0 {
			return nil
		}
		return open[len(open)-1]
	}

	for {
		tok, err := decoder.Token()
		if err == io.EOF && len(open) > 0 {
			err = io.ErrUnexpectedEOF
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			for i := len(open) - 1; i >= 0; i-- {
				paragraphs = append(paragraphs, open[i].String())
			}
			return paragraphs, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "Fallback" {
				fallback++
			}
			if fallback > 0 {
				continue
			}
			switch t.Name.Local {
			case "p":
				open = append(open, &strings.Builder{})
			case "t":
				inText = true
			case "tab":
				if b := current(); b != nil {
					b.WriteByte('\t')
				}
			case "br", "cr":
				if b := current(); b != nil {
					b.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Local == "Fallback" && fallback > 0 {
				fallback--
				continue
			}
			if fallback > 0 {
				continue
			}
			switch t.Name.Local {
			case "p":
				if b := current(); b != nil {
					paragraphs = append(paragraphs, b.String())
					open = open[:len(open)-1]
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if b := current(); inText && fallback == 0 && b != nil {
				b.Write(t)
			}
		}
	}

	return paragraphs, nil
}
