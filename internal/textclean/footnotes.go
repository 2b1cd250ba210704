package textclean

import (
	"regexp"
	"strings"
)

// Spoken markers framing an inlined footnote.
const (
	FootnoteBegin = "Footnote begins."
	FootnoteEnd   = "Footnote ends."
)

// footnoteDef matches a line that is wholly a numbered footnote definition.
var footnoteDef = regexp.MustCompile(`^\[(\d+)\]\s+(.+)$`)

// InlineFootnotes relocates numbered footnote definitions ("[3] Like this.")
// next to their in-text "[3]" pointers, framed as spoken asides, so the
// listener hears the note where it belongs instead of at the end. Pointers
// with no definition are left alone; definitions whose pointer never appears
// are kept at the bottom so their text is not lost.
func InlineFootnotes(text string) string {
	lines := strings.Split(text, "\n")
	defs := make(map[string]string)
	var order []string
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		m := footnoteDef.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			kept = append(kept, line)
			continue
		}
		if _, dup := defs[m[1]]; dup {
			kept = append(kept, line)
			continue
		}
		defs[m[1]] = strings.TrimSpace(m[2])
		order = append(order, m[1])
	}
	if len(order) == 0 {
		return text
	}

	out := strings.Join(kept, "\n")
	var leftovers []string
	for _, num := range order {
		pointer := "[" + num + "]"
		aside := " " + FootnoteBegin + " " + defs[num] + " " + FootnoteEnd + " "
		if strings.Contains(out, pointer) {
			out = strings.Replace(out, pointer, aside, 1)
		} else {
			leftovers = append(leftovers, pointer+" "+defs[num])
		}
	}
	if len(leftovers) > 0 {
		out += "\n\n" + strings.Join(leftovers, "\n")
	}
	return collapse(out)
}
