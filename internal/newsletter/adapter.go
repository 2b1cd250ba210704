// Package newsletter holds the per-brand content adapters layered on top of
// generic cleaning, the registry that dispatches to them, and the presets
// binding route tags to feeds and voices.
package newsletter

import (
	"net/http"
	"strings"
	"time"
)

// SourceAdapter customizes title formatting, body cleaning and source-URL
// extraction for one newsletter brand. Adapters receive the raw message so
// they can reach headers and alternate MIME parts the generic pipeline
// ignores. Implementations hold no mutable state and are safe for concurrent
// use.
type SourceAdapter interface {
	// FormatTitle builds the episode title from naming metadata.
	FormatTitle(date, subjectRaw, subjectSlug string) string
	// CleanBody produces the final speakable text. generic is the shared
	// cleaner's output; adapters refine it or rebuild from raw, they never
	// skip the generic pass.
	CleanBody(raw []byte, generic string) string
	// ExtractSourceURL returns the canonical web URL of this issue, or ""
	// when none can be determined.
	ExtractSourceURL(raw []byte, date, subjectRaw string) string
}

// DefaultAdapter serves every route without a brand adapter: generic
// cleaning untouched, plain title, no source URL.
type DefaultAdapter struct{}

func (DefaultAdapter) FormatTitle(date, subjectRaw, subjectSlug string) string {
	subject := strings.TrimSpace(subjectRaw)
	if subject == "" {
		subject = strings.ReplaceAll(subjectSlug, "-", " ")
	}
	return date + " - " + subject
}

func (DefaultAdapter) CleanBody(raw []byte, generic string) string { return generic }

func (DefaultAdapter) ExtractSourceURL(raw []byte, date, subjectRaw string) string { return "" }

// Resolver follows a single redirect hop and returns the target URL, or ""
// when the link does not redirect. Brand adapters use it to unwrap tracking
// links; tests substitute a stub.
type Resolver func(url string) string

// NewHTTPResolver returns a Resolver doing one GET without following the
// redirect chain, reporting the Location header target. Relative Locations
// resolve against the request URL.
func NewHTTPResolver(timeout time.Duration) Resolver {
	client := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return func(rawURL string) string {
		resp, err := client.Get(rawURL)
		if err != nil {
			return ""
		}
		defer resp.Body.Close()
		if resp.StatusCode < 300 || resp.StatusCode >= 400 {
			return ""
		}
		loc := resp.Header.Get("Location")
		if loc == "" {
			return ""
		}
		target, err := resp.Request.URL.Parse(loc)
		if err != nil {
			return ""
		}
		return target.String()
	}
}

// stripBrandPrefix removes a leading "Brand:" from a subject
// case-insensitively. The second return reports whether the prefix was
// present; the remainder is trimmed either way.
func stripBrandPrefix(subject, brand string) (string, bool) {
	trimmed := strings.TrimSpace(subject)
	prefix := brand + ":"
	if len(trimmed) >= len(prefix) && strings.EqualFold(trimmed[:len(prefix)], prefix) {
		return strings.TrimSpace(trimmed[len(prefix):]), true
	}
	return trimmed, false
}
