package extraction

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// blockSelector lists elements that end a line of text.
const blockSelector = "p, div, li, tr, h1, h2, h3, h4, h5, h6, dt, dd, pre, blockquote, address, section, article, header, footer"

func (e *Extractor) extractHTML(data []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		e.logger.Warn("failed to parse html", zap.Error(err))
		return ""
	}

	doc.Find("script, style, noscript, template").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("td, th").AppendHtml(" ")
	doc.Find(blockSelector).AppendHtml("\n")

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	// Keep hrefs so link extraction sees URLs hidden behind anchor text.
	var links []string
	root.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
			if !strings.Contains(s.Text(), href) {
				links = append(links, href)
			}
		}
	})

	lines := nonEmptyLines(root.Text())
	lines = append(lines, links...)
	return strings.Join(lines, "\n")
}

func nonEmptyLines(s string) []string {
	raw := strings.Split(normalizeLineEndings(s), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
