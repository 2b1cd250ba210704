// Package textclean turns newsletter markup into prose a TTS voice can read
// aloud: no tags, no hidden text, paragraph structure preserved, quoted
// material framed with spoken markers.
package textclean

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Spoken markers framing quoted material.
const (
	QuoteBegin = "Block quote begins."
	QuoteEnd   = "Block quote ends."
)

// skipTags never contribute text.
var skipTags = map[string]struct{}{
	"script": {}, "style": {}, "head": {}, "title": {}, "meta": {},
	"link": {}, "noscript": {}, "template": {}, "iframe": {}, "svg": {},
}

// blockTags contribute a paragraph break on both sides; runs of breaks
// collapse to a single blank line afterwards.
var blockTags = map[string]struct{}{
	"p": {}, "div": {}, "li": {}, "ul": {}, "ol": {}, "table": {}, "tr": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"pre": {}, "section": {}, "article": {}, "header": {}, "footer": {},
	"figure": {}, "figcaption": {}, "center": {},
}

// lineTags end with a single newline so table cells do not run together.
var lineTags = map[string]struct{}{"td": {}, "th": {}}

// hiddenStyle matches inline styling that removes an element from visual
// rendering. Newsletter HTML hides preview snippets and tracking content
// this way; none of it may reach the spoken output.
var hiddenStyle = regexp.MustCompile(`(?i)display\s*:\s*none|visibility\s*:\s*hidden|max-height\s*:\s*0(px|pt|em|rem|%)?\s*(;|!|$)|font-size\s*:\s*0(px|pt|em|rem|%)?\s*(;|!|$)`)

// Clean renders markup into speakable plain text. Already-clean text passes
// through with only whitespace normalization, so applying Clean to its own
// output adds no new blank lines or markers.
func Clean(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return collapse(markup)
	}
	var b strings.Builder
	render(doc.Selection, &b, 0)
	return collapse(b.String())
}

// Normalize applies only the whitespace rules to text that never was
// markup. Plain-text MIME parts go through here so their angle-bracketed
// links are not mistaken for tags.
func Normalize(text string) string {
	return collapse(text)
}

// render walks the node tree in document order, writing text nodes and the
// newline structure implied by the markup. quoteDepth tracks blockquote
// nesting; markers are emitted only at the outermost level, flattening
// nested quotes to a single spoken frame.
func render(sel *goquery.Selection, b *strings.Builder, quoteDepth int) {
	sel.Contents().Each(func(_ int, child *goquery.Selection) {
		name := goquery.NodeName(child)
		if name == "#text" {
			b.WriteString(child.Text())
			return
		}
		if strings.HasPrefix(name, "#") {
			// comments, doctype
			return
		}
		if _, skip := skipTags[name]; skip {
			return
		}
		if isHidden(child) {
			return
		}
		switch name {
		case "br":
			b.WriteString("\n")
		case "hr":
			b.WriteString("\n\n")
		case "blockquote":
			if quoteDepth == 0 {
				b.WriteString("\n\n" + QuoteBegin + "\n\n")
			}
			render(child, b, quoteDepth+1)
			if quoteDepth == 0 {
				b.WriteString("\n\n" + QuoteEnd + "\n\n")
			}
		default:
			_, block := blockTags[name]
			if block {
				b.WriteString("\n\n")
			}
			render(child, b, quoteDepth)
			if block {
				b.WriteString("\n\n")
			} else if _, line := lineTags[name]; line {
				b.WriteString("\n")
			}
		}
	})
}

func isHidden(sel *goquery.Selection) bool {
	if _, ok := sel.Attr("hidden"); ok {
		return true
	}
	style, ok := sel.Attr("style")
	return ok && hiddenStyle.MatchString(style)
}

var (
	// quoted-printable soft line breaks that leaked through upstream decoding
	softBreaks = regexp.MustCompile(`=\n`)
	spaceRuns  = regexp.MustCompile(`[ \t]+`)
	blankRuns  = regexp.MustCompile(`\n{3,}`)
)

var invisibleRunes = strings.NewReplacer(
	" ", " ", // no-break space
	"​", "", // zero-width space
	"‌", "",
	"‍", "",
	"\uFEFF", "",
)

// collapse normalizes whitespace: spaces and tabs collapse within lines,
// lines are trimmed, and runs of blank lines fold into one.
func collapse(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = softBreaks.ReplaceAllString(text, "")
	text = invisibleRunes.Replace(text)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRuns.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
