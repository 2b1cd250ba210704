package textclean

import (
	"strings"
	"testing"
)

func TestInlineFootnotesBasic(t *testing.T) {
	text := "Body with a pointer[1] here.\n\n[1] The note."
	got := InlineFootnotes(text)
	want := "Body with a pointer Footnote begins. The note. Footnote ends. here."
	if got != want {
		t.Errorf("InlineFootnotes() = %q, want %q", got, want)
	}
}

func TestInlineFootnotesMultiple(t *testing.T) {
	text := "First[1] and second[2].\n\n[1] One.\n[2] Two."
	got := InlineFootnotes(text)
	if !strings.Contains(got, "First Footnote begins. One. Footnote ends.") {
		t.Errorf("InlineFootnotes() = %q, first note not inlined", got)
	}
	if !strings.Contains(got, "second Footnote begins. Two. Footnote ends.") {
		t.Errorf("InlineFootnotes() = %q, second note not inlined", got)
	}
	if strings.Contains(got, "[1]") || strings.Contains(got, "[2]") {
		t.Errorf("InlineFootnotes() = %q, definition lines left behind", got)
	}
}

func TestInlineFootnotesUnmatchedPointerKept(t *testing.T) {
	text := "See [2] for details.\n\n[1] Only note."
	got := InlineFootnotes(text)
	if !strings.Contains(got, "See [2] for details.") {
		t.Errorf("InlineFootnotes() = %q, unmatched pointer should stay", got)
	}
	if !strings.Contains(got, "[1] Only note.") {
		t.Errorf("InlineFootnotes() = %q, orphan definition text lost", got)
	}
}

func TestInlineFootnotesNoDefinitions(t *testing.T) {
	text := "Nothing to do here [not a footnote]."
	if got := InlineFootnotes(text); got != text {
		t.Errorf("InlineFootnotes() = %q, want unchanged input", got)
	}
}

func TestInlineFootnotesReplacesFirstPointerOnly(t *testing.T) {
	text := "A[1] and again [1].\n\n[1] Once."
	got := InlineFootnotes(text)
	if n := strings.Count(got, FootnoteBegin); n != 1 {
		t.Errorf("InlineFootnotes() inlined %d times, want 1: %q", n, got)
	}
	if !strings.Contains(got, "again [1]") {
		t.Errorf("InlineFootnotes() = %q, second pointer should survive", got)
	}
}
