// Package evidence provides the default FactFetcher: a plain, SSRF-guarded
// HTTP client that turns one fetched URL into a RequiredFact backed by a
// single Evidence snippet. The FactFetcher contract it implements treats any
// smarter fetcher (search APIs, browsing tools) as a drop-in replacement;
// this is the runnable baseline the rest of the pipeline is exercised
// against.
package evidence

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tuffdb/tuff/domain"
	"github.com/tuffdb/tuff/identity"
)

// SnippetMaxRunes bounds an Evidence snippet's length, per the data model's
// truncation invariant.
const SnippetMaxRunes = 1200

// Config configures a Fetcher.
type Config struct {
	Timeout   time.Duration
	MaxBytes  int64
	UserAgent string
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 10 * 1024 * 1024
	}
	if c.UserAgent == "" {
		c.UserAgent = "tuffd/1.0"
	}
}

// URLResolver maps a fragment to the URL that should be fetched for it. The
// simplest implementation ignores the fragment and always returns a fixed
// configured target, matching the minimal reference fetcher; richer
// resolvers (e.g. a search step) are drop-in replacements.
type URLResolver func(fragment string) string

// Fetcher is the default FactFetcher: SSRF-validated, size-bounded GET,
// content-type-aware extraction (PDF via pdfcpu, HTML via
// bluemonday+html-to-markdown with an x/net/html fallback), SHA-256 content
// hashing, and 1200-rune snippet truncation.
type Fetcher struct {
	client   *http.Client
	config   Config
	resolver URLResolver
}

// New creates a Fetcher. resolver decides which URL to hit for a given
// fragment.
func New(cfg Config, resolver URLResolver) *Fetcher {
	cfg.defaults()
	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("evidence: too many redirects (%d)", len(via))
				}
				if err := ValidateURL(req.URL.String()); err != nil {
					return fmt.Errorf("evidence: redirect blocked: %w", err)
				}
				return nil
			},
		},
		config:   cfg,
		resolver: resolver,
	}
}

// Fetch implements pipeline.FactFetcher.
func (f *Fetcher) Fetch(ctx context.Context, fragment string) ([]domain.RequiredFact, error) {
	target := f.resolver(fragment)

	if err := ValidateURL(target); err != nil {
		return nil, fmt.Errorf("evidence: url blocked: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("evidence: new request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("evidence: fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, fmt.Errorf("evidence: fetch %s: http %d", target, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBytes))
	if err != nil {
		return nil, fmt.Errorf("evidence: read body: %w", err)
	}

	sum := sha256.Sum256(body)
	hash := hex.EncodeToString(sum[:])

	contentType := resp.Header.Get("Content-Type")
	text, err := extractText(contentType, body, target)
	if err != nil {
		return nil, fmt.Errorf("evidence: extract %s: %w", target, err)
	}

	snippet := truncateRunes(text, SnippetMaxRunes)

	ev := domain.Evidence{
		EvidenceId: identity.New(),
		Source: domain.SourceMeta{
			URL:                target,
			RetrievedAtRFC3339: time.Now().UTC().Format(time.RFC3339),
			SHA256Hex:          hash,
		},
		Snippet: snippet,
	}

	return []domain.RequiredFact{{
		Key:      "target_url",
		Value:    target,
		Evidence: []domain.Evidence{ev},
	}}, nil
}

func extractText(contentType string, body []byte, sourceURL string) (string, error) {
	if isPDF(contentType) {
		return pdfToText(body)
	}
	return htmlToText(string(body), sourceURL), nil
}

func isPDF(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/pdf")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
