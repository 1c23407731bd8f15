// Package fetch downloads job postings and reduces them to their description text.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/logging"
)

// Defaults
const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (compatible; ResumeScreener/1.0)"
	DefaultMaxBytes  = 5 << 20
)

// Page is a downloaded posting.
type Page struct {
	URL         string
	Body        []byte
	ContentType string
	StatusCode  int
}

// Error represents an error during URL fetching.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	MaxBytes  int64
	Client    *http.Client // overrides Timeout when set
}

// Fetcher downloads job postings over HTTP.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	logger    *zap.Logger
}

// New creates a Fetcher. Zero option fields take the package defaults.
func New(opts Options, logger *zap.Logger) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Fetcher{
		client:    client,
		userAgent: opts.UserAgent,
		maxBytes:  opts.MaxBytes,
		logger:    logging.OrNop(logger).Named("fetch"),
	}
}

// Get downloads rawURL. Only http and https URLs are accepted. A non-200 status
// is an error; the Page is still returned for inspection.
func (f *Fetcher) Get(ctx context.Context, rawURL string) (*Page, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, &Error{URL: rawURL, Message: "invalid URL", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,text/plain;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to read response body", Cause: err}
	}
	if int64(len(body)) > f.maxBytes {
		return nil, &Error{URL: rawURL, Message: fmt.Sprintf("response exceeds %d bytes", f.maxBytes)}
	}

	page := &Page{
		URL:         rawURL,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}
	if resp.StatusCode != http.StatusOK {
		return page, &Error{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	f.logger.Debug("fetched page",
		zap.String("url", rawURL),
		zap.String("content_type", page.ContentType),
		zap.Int("bytes", len(body)))
	return page, nil
}

// JobDescription downloads a posting and returns its description text. Plain
// text responses are returned as is; HTML is narrowed to the job board's
// description element with application forms and legal boilerplate removed.
func (f *Fetcher) JobDescription(ctx context.Context, rawURL string) (string, error) {
	page, err := f.Get(ctx, rawURL)
	if err != nil {
		return "", err
	}

	var text string
	if mediaType, _, _ := mime.ParseMediaType(page.ContentType); mediaType == "text/plain" {
		text = cleanLines(string(page.Body))
	} else {
		platform := DetectPlatform(rawURL)
		text, err = MainText(string(page.Body), PlatformContentSelectors(platform), PlatformNoiseSelectors(platform)...)
		if err != nil {
			return "", &Error{URL: rawURL, Message: "failed to parse HTML", Cause: err}
		}
		f.logger.Debug("extracted posting", zap.String("platform", string(platform)), zap.Int("chars", len(text)))
	}

	if text == "" {
		return "", &Error{URL: rawURL, Message: "page has no readable text", Cause: ErrEmptyPosting}
	}
	return text, nil
}

// ErrEmptyPosting is wrapped when a page yields no description text.
var ErrEmptyPosting = errors.New("empty job posting")

// MainText parses HTML and returns the text of the first element matching
// contentSelectors, or of the body when none match. Page chrome and elements
// matching noiseSelectors are removed first.
func MainText(html string, contentSelectors []string, noiseSelectors ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("nav, footer, header, script, style, noscript, .ad, .advertisement, .ads, .sidebar, .cookie-banner, .popup").Remove()
	if len(noiseSelectors) > 0 {
		doc.Find(strings.Join(noiseSelectors, ", ")).Remove()
	}

	var content *goquery.Selection
	for _, selector := range contentSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			content = selection.First()
			break
		}
	}
	if content == nil {
		content = doc.Find("body")
	}

	return cleanLines(content.Text()), nil
}

// cleanLines trims every line and drops blank ones.
func cleanLines(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
