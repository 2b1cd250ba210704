package textclean

import (
	"strings"
	"testing"
)

func TestCleanStripsTags(t *testing.T) {
	got := Clean(`<table><tr><td>Cell A</td><td>Cell B</td></tr></table>`)
	want := "Cell A\nCell B"
	if got != want {
		t.Errorf("Clean() = %q, want %q", got, want)
	}
	if strings.ContainsAny(got, "<>") {
		t.Errorf("Clean() output contains tag syntax: %q", got)
	}
}

func TestCleanHiddenElements(t *testing.T) {
	tests := []struct {
		name   string
		markup string
	}{
		{"display none", `<p>Visible.</p><span style="display:none">SECRET</span>`},
		{"display none spaced", `<p>Visible.</p><span style="display : none">SECRET</span>`},
		{"display none important", `<p>Visible.</p><div style="display:none !important">SECRET</div>`},
		{"visibility hidden", `<p>Visible.</p><span style="visibility:hidden">SECRET</span>`},
		{"max-height zero", `<p>Visible.</p><div style="max-height:0;overflow:hidden">SECRET</div>`},
		{"font-size zero", `<p>Visible.</p><span style="font-size:0px">SECRET</span>`},
		{"hidden attribute", `<p>Visible.</p><span hidden>SECRET</span>`},
		{"nested under hidden", `<p>Visible.</p><div style="display:none"><p>SECRET</p><ul><li>SECRET</li></ul></div>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean(tt.markup)
			if strings.Contains(got, "SECRET") {
				t.Errorf("Clean() = %q, hidden text leaked", got)
			}
			if !strings.Contains(got, "Visible.") {
				t.Errorf("Clean() = %q, visible text lost", got)
			}
		})
	}
}

func TestCleanKeepsSmallButVisibleText(t *testing.T) {
	got := Clean(`<span style="font-size:0.8em">tiny but real</span>`)
	if !strings.Contains(got, "tiny but real") {
		t.Errorf("Clean() = %q, want fractional font size kept", got)
	}
}

func TestCleanParagraphStructure(t *testing.T) {
	got := Clean(`<div><div><p>First.</p></div></div><p>Second.</p><h2>Heading</h2><ul><li>One</li><li>Two</li></ul>`)
	want := "First.\n\nSecond.\n\nHeading\n\nOne\n\nTwo"
	if got != want {
		t.Errorf("Clean() = %q, want %q", got, want)
	}
}

func TestCleanLineBreaks(t *testing.T) {
	got := Clean(`<p>line one<br>line two<br/>line three</p>`)
	want := "line one\nline two\nline three"
	if got != want {
		t.Errorf("Clean() = %q, want %q", got, want)
	}
}

func TestCleanWhitespaceCollapse(t *testing.T) {
	got := Clean("<p>a&nbsp;&nbsp;b   c\t d</p>")
	want := "a b c d"
	if got != want {
		t.Errorf("Clean() = %q, want %q", got, want)
	}
}

func TestCleanSoftLineBreaks(t *testing.T) {
	got := Clean("<p>unbro=\nken words</p>")
	want := "unbroken words"
	if got != want {
		t.Errorf("Clean() = %q, want %q", got, want)
	}
}

func TestCleanBlockquoteMarkers(t *testing.T) {
	got := Clean(`<p>Intro.</p><blockquote><p>Quoted words.</p></blockquote><p>After.</p>`)
	want := "Intro.\n\nBlock quote begins.\n\nQuoted words.\n\nBlock quote ends.\n\nAfter."
	if got != want {
		t.Errorf("Clean() = %q, want %q", got, want)
	}
}

func TestCleanNestedBlockquotesFlatten(t *testing.T) {
	got := Clean(`<blockquote><p>Outer.</p><blockquote><p>Inner.</p></blockquote></blockquote>`)
	if n := strings.Count(got, QuoteBegin); n != 1 {
		t.Errorf("Clean() emitted %d begin markers, want 1: %q", n, got)
	}
	if n := strings.Count(got, QuoteEnd); n != 1 {
		t.Errorf("Clean() emitted %d end markers, want 1: %q", n, got)
	}
	for _, text := range []string{"Outer.", "Inner."} {
		if !strings.Contains(got, text) {
			t.Errorf("Clean() = %q, lost quoted text %q", got, text)
		}
	}
}

func TestCleanDropsScriptAndStyle(t *testing.T) {
	got := Clean(`<style>.x{color:red}</style><p>Text</p><script>alert(1)</script>`)
	want := "Text"
	if got != want {
		t.Errorf("Clean() = %q, want %q", got, want)
	}
}

func TestCleanNoBlankLineRuns(t *testing.T) {
	got := Clean(`<div></div><div></div><p>A</p><div></div><div></div><p>B</p><div></div>`)
	if strings.Contains(got, "\n\n\n") {
		t.Errorf("Clean() = %q, contains a run of more than one blank line", got)
	}
	want := "A\n\nB"
	if got != want {
		t.Errorf("Clean() = %q, want %q", got, want)
	}
}

func TestCleanIdempotentOnOwnOutput(t *testing.T) {
	markup := `<p>Intro with a &lt; b.</p><blockquote><p>Quote.</p></blockquote><p>line<br>break</p><ul><li>x</li></ul>`
	once := Clean(markup)
	twice := Clean(once)
	if twice != once {
		t.Errorf("Clean() not stable on its own output:\nonce  = %q\ntwice = %q", once, twice)
	}
}

func TestCleanPlainTextPassthrough(t *testing.T) {
	text := "Just prose.\n\nSecond paragraph."
	if got := Clean(text); got != text {
		t.Errorf("Clean() = %q, want %q unchanged", got, text)
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize("a  b c\n\n\n\nnext <https://example.com/p/x>  line")
	want := "a b c\n\nnext <https://example.com/p/x> line"
	if got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
}
