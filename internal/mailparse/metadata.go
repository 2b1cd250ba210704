package mailparse

import (
	"fmt"
	"io"
	"mime"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// FallbackSubject replaces a missing or empty Subject header. Filenames and
// titles downstream depend on it being stable.
const FallbackSubject = "No Subject"

// Meta is the naming metadata pulled from a message's headers.
type Meta struct {
	Date    string // YYYY-MM-DD
	Subject string
	Slug    string
}

// ExtractMeta reads Date and Subject with total fallbacks: an unparsable or
// missing Date becomes now in UTC, a missing Subject becomes the fixed
// placeholder. It never fails.
func ExtractMeta(raw []byte, now time.Time) Meta {
	var date, subject string
	if hdr, err := Headers(raw); err == nil {
		date = hdr.Get("Date")
		subject = hdr.Get("Subject")
	}
	subject = cleanSubject(subject)
	return Meta{
		Date:    parseDate(date, now),
		Subject: subject,
		Slug:    Slugify(subject),
	}
}

// parseDate canonicalizes a Date header to YYYY-MM-DD. RFC 5322 parsing is
// tried first, then a lenient pass for the nonstandard formats some senders
// emit.
func parseDate(header string, now time.Time) string {
	header = strings.TrimSpace(header)
	if header != "" {
		if t, err := mail.ParseDate(header); err == nil {
			return t.Format("2006-01-02")
		}
		if t, err := dateparse.ParseAny(header); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return now.UTC().Format("2006-01-02")
}

// subjectDecoder handles RFC 2047 encoded words in non-UTF-8 charsets.
var subjectDecoder = mime.WordDecoder{
	CharsetReader: func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := ianaindex.MIME.Encoding(charset)
		if err != nil || enc == nil {
			return nil, fmt.Errorf("unsupported charset %q", charset)
		}
		return transform.NewReader(input, enc.NewDecoder()), nil
	},
}

func cleanSubject(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return FallbackSubject
	}
	if decoded, err := subjectDecoder.DecodeHeader(s); err == nil {
		s = strings.TrimSpace(decoded)
	}
	if s == "" {
		return FallbackSubject
	}
	return s
}

var (
	slugStrip   = regexp.MustCompile(`[^\p{L}\p{N}\s_-]`)
	slugHyphens = regexp.MustCompile(`[-\s_]+`)
)

// Slugify lowercases s, drops punctuation and collapses whitespace and
// hyphen runs into single hyphens, for use in storage keys and filenames.
func Slugify(s string) string {
	s = slugStrip.ReplaceAllString(s, "")
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugHyphens.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "untitled"
	}
	return s
}
