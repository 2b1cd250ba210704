package newsletter

import (
	"regexp"
	"strings"

	"github.com/jmohr/mailcast/internal/mailparse"
	"github.com/jmohr/mailcast/internal/textclean"
)

// Substack boilerplate that must not reach the spoken output.
var (
	substackWebLink   = regexp.MustCompile(`View this post on the web at\s+<[^>]+>`)
	substackLinkNote  = regexp.MustCompile(`\[\s*https?://[^\]]*\]`)
	substackTail      = regexp.MustCompile(`(?ms)^Unsubscribe\b.*\z`)
	substackPromoLine = regexp.MustCompile(`(?m)^(READ IN APP|Subscribed)\s*$`)
)

// Soft hyphens and combining grapheme joiners that Substack sprinkles
// through article text.
var substackInvisible = strings.NewReplacer("­", "", "͏", "")

// SubstackAdapter handles newsletters published on Substack. One
// implementation serves every Substack-hosted brand; each instance is fully
// determined at construction by the publication's name and canonical domain.
type SubstackAdapter struct {
	brand    string
	domain   string
	post     *regexp.Regexp
	redirect *regexp.Regexp
	resolve  Resolver
}

// NewSubstackAdapter builds the adapter instance for one publication.
// domain is the reader-facing host ("slowboring.com"); post links and
// action links are matched against it and never against other domains.
func NewSubstackAdapter(brand, domain string, resolve Resolver) *SubstackAdapter {
	quoted := regexp.QuoteMeta(domain)
	return &SubstackAdapter{
		brand:    brand,
		domain:   domain,
		post:     regexp.MustCompile(`https://(?:www\.)?` + quoted + `/p/[^\s"'<>?#]+`),
		redirect: regexp.MustCompile(`https://(?:substack\.com/redirect/|(?:www\.)?` + quoted + `/action/)[^\s"'<>]+`),
		resolve:  resolve,
	}
}

// FormatTitle always carries the brand: a redundant "Brand:" subject prefix
// is stripped case-insensitively, the rest is kept verbatim.
func (a *SubstackAdapter) FormatTitle(date, subjectRaw, subjectSlug string) string {
	rest, _ := stripBrandPrefix(subjectRaw, a.brand)
	if rest == "" {
		rest = strings.ReplaceAll(subjectSlug, "-", " ")
	}
	return date + " - " + a.brand + " - " + rest
}

// CleanBody prefers Substack's plain-text MIME part, whose prose is cleaner
// than what the HTML part renders to; the generic output is the fallback.
// Platform boilerplate is stripped either way.
func (a *SubstackAdapter) CleanBody(raw []byte, generic string) string {
	text := mailparse.PlainText(raw)
	if strings.TrimSpace(text) == "" {
		text = generic
	}
	text = substackWebLink.ReplaceAllString(text, "")
	text = substackLinkNote.ReplaceAllString(text, "")
	text = substackTail.ReplaceAllString(text, "")
	text = substackPromoLine.ReplaceAllString(text, "")
	text = substackInvisible.Replace(text)
	return textclean.Normalize(text)
}

// ExtractSourceURL finds the publication permalink. Chain, first
// document-order match wins at each step: the List-Post header, then a
// direct post link in either body part, then a redirect link unwrapped one
// hop and checked against the post pattern.
func (a *SubstackAdapter) ExtractSourceURL(raw []byte, date, subjectRaw string) string {
	if hdr, err := mailparse.Headers(raw); err == nil {
		if m := a.post.FindString(hdr.Get("List-Post")); m != "" {
			return m
		}
	}

	plain := mailparse.PlainText(raw)
	html, err := mailparse.ExtractBody(raw)
	if err != nil {
		html = ""
	}
	corpus := plain + "\n" + html

	if m := a.post.FindString(corpus); m != "" {
		return m
	}
	if a.resolve != nil {
		for _, link := range a.redirect.FindAllString(corpus, -1) {
			target := a.resolve(strings.TrimRight(link, `.,;:!?'"`))
			if target == "" {
				continue
			}
			if m := a.post.FindString(target); m != "" {
				return m
			}
		}
	}
	return ""
}
