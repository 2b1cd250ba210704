package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"
)

func TestSplitForSpeechShortTextSingleChunk(t *testing.T) {
	ts := NewTextSplitter(zap.NewNop())
	got := ts.SplitForSpeech("Short enough.", 4096)
	if len(got) != 1 || got[0] != "Short enough." {
		t.Fatalf("SplitForSpeech() = %q, want the text unchanged", got)
	}
}

func TestSplitForSpeechEmpty(t *testing.T) {
	ts := NewTextSplitter(zap.NewNop())
	if got := ts.SplitForSpeech("   \n\n  ", 4096); got != nil {
		t.Fatalf("SplitForSpeech() = %q, want nil for blank input", got)
	}
}

func TestSplitForSpeechPacksParagraphs(t *testing.T) {
	ts := NewTextSplitter(zap.NewNop())
	text := "Para one.\n\nPara two.\n\nPara three."
	got := ts.SplitForSpeech(text, 22)
	want := []string{"Para one.\n\nPara two.", "Para three."}
	if len(got) != len(want) {
		t.Fatalf("SplitForSpeech() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitForSpeechSentenceBoundaries(t *testing.T) {
	ts := NewTextSplitter(zap.NewNop())
	para := "First sentence here. Second sentence here. Third sentence here."
	got := ts.SplitForSpeech(para, 45)
	if len(got) != 2 {
		t.Fatalf("SplitForSpeech() produced %d chunks: %q", len(got), got)
	}
	if got[0] != "First sentence here. Second sentence here." {
		t.Errorf("chunk[0] = %q", got[0])
	}
	if got[1] != "Third sentence here." {
		t.Errorf("chunk[1] = %q", got[1])
	}
}

func TestSplitForSpeechRespectsLimit(t *testing.T) {
	ts := NewTextSplitter(zap.NewNop())
	text := strings.Repeat("All work and no play makes a dull newsletter. ", 300)
	const max = 500
	chunks := ts.SplitForSpeech(text, max)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > max {
			t.Errorf("chunk[%d] is %d bytes, exceeds %d", i, len(c), max)
		}
	}
	// Only boundary whitespace may be lost between input and output.
	wordsIn := len(strings.Fields(text))
	wordsOut := 0
	for _, c := range chunks {
		wordsOut += len(strings.Fields(c))
	}
	if wordsOut != wordsIn {
		t.Errorf("words across chunks = %d, want %d", wordsOut, wordsIn)
	}
}

func TestSplitForSpeechHardCutStaysValidUTF8(t *testing.T) {
	ts := NewTextSplitter(zap.NewNop())
	text := strings.Repeat("日本語テキスト", 50)
	chunks := ts.SplitForSpeech(text, 100)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 100 {
			t.Errorf("chunk[%d] is %d bytes", i, len(c))
		}
		if !utf8.ValidString(c) {
			t.Errorf("chunk[%d] %q is not valid UTF-8", i, c)
		}
	}
}

func TestSanitizeUTF8(t *testing.T) {
	ts := NewTextSplitter(zap.NewNop())
	if got := ts.SanitizeUTF8("clean text"); got != "clean text" {
		t.Errorf("SanitizeUTF8() = %q, want unchanged", got)
	}
	broken := "ok" + string([]byte{0xff, 0xfe}) + "tail"
	if got := ts.SanitizeUTF8(broken); got != "oktail" {
		t.Errorf("SanitizeUTF8() = %q, want invalid bytes dropped", got)
	}
}

func TestPrepareChunks(t *testing.T) {
	ts := NewTextSplitter(zap.NewNop())
	broken := "one" + string([]byte{0xff}) + " two"
	got := ts.PrepareChunks(broken, 4096)
	if len(got) != 1 || got[0] != "one two" {
		t.Fatalf("PrepareChunks() = %q", got)
	}
}
