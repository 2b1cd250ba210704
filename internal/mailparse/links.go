package mailparse

import (
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://[^\s"'<>()\[\]]+`)

// trailing punctuation that commonly rides along when a URL is scraped out
// of prose or markup
const urlTrailerCutset = ".,;:!?'\""

// CandidateLinks returns every http(s) URL found in the message's extracted
// body, in document order, deduplicated, with trailing punctuation trimmed.
func CandidateLinks(raw []byte) []string {
	body, err := ExtractBody(raw)
	if err != nil {
		return nil
	}
	return LinksInText(body)
}

// LinksInText scans arbitrary text or markup for http(s) URLs.
func LinksInText(text string) []string {
	// Entity-encoded ampersands appear constantly in newsletter HTML hrefs.
	text = strings.ReplaceAll(text, "&amp;", "&")
	seen := make(map[string]struct{})
	var links []string
	for _, match := range urlPattern.FindAllString(text, -1) {
		u := strings.TrimRight(match, urlTrailerCutset)
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		links = append(links, u)
	}
	return links
}

// CanonicalURL strips the query and fragment from a URL, leaving the stable
// scheme://host/path form used for episode source links.
func CanonicalURL(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	return strings.TrimRight(u, "/")
}
