package newsletter

import (
	"regexp"
	"strings"

	"github.com/jmohr/mailcast/internal/mailparse"
)

const (
	moneyStuffBrand   = "Money Stuff"
	bloombergPostBase = "https://www.bloomberg.com/opinion/newsletters/"
)

var (
	bloombergPostURL  = regexp.MustCompile(`https://www\.bloomberg\.com/opinion/newsletters/\d{4}-\d{2}-\d{2}/[^\s"'<>?#]+`)
	bloombergShortURL = regexp.MustCompile(`https://(?:bloom\.bg|links\.message\.bloomberg\.com)/[^\s"'<>]+`)
)

// MoneyStuffAdapter handles Bloomberg's Money Stuff newsletter: a fixed
// brand with one known permalink scheme.
type MoneyStuffAdapter struct {
	resolve Resolver
}

func NewMoneyStuffAdapter(resolve Resolver) *MoneyStuffAdapter {
	return &MoneyStuffAdapter{resolve: resolve}
}

func (a *MoneyStuffAdapter) FormatTitle(date, subjectRaw, subjectSlug string) string {
	if rest, ok := stripBrandPrefix(subjectRaw, moneyStuffBrand); ok && rest != "" {
		return date + " - " + moneyStuffBrand + " - " + rest
	}
	return DefaultAdapter{}.FormatTitle(date, subjectRaw, subjectSlug)
}

func (a *MoneyStuffAdapter) CleanBody(raw []byte, generic string) string { return generic }

// ExtractSourceURL finds the bloomberg.com permalink for this issue. Chain,
// first document-order match wins at each step: a direct post link in the
// body, then a shortlink unwrapped one redirect hop, then a URL inferred
// from the subject line.
func (a *MoneyStuffAdapter) ExtractSourceURL(raw []byte, date, subjectRaw string) string {
	body, err := mailparse.ExtractBody(raw)
	if err != nil {
		body = ""
	}
	if m := bloombergPostURL.FindString(body); m != "" {
		return mailparse.CanonicalURL(m)
	}
	if a.resolve != nil {
		for _, link := range bloombergShortURL.FindAllString(body, -1) {
			target := a.resolve(strings.TrimRight(link, `.,;:!?'"`))
			if target == "" {
				continue
			}
			if m := bloombergPostURL.FindString(target); m != "" {
				return mailparse.CanonicalURL(m)
			}
		}
	}
	if rest, ok := stripBrandPrefix(subjectRaw, moneyStuffBrand); ok && rest != "" {
		return bloombergPostBase + date + "/" + mailparse.Slugify(rest)
	}
	return ""
}
