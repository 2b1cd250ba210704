package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// sentenceEnders mark preferred cut points inside an oversized paragraph.
var sentenceEnders = []string{". ", "! ", "? ", "; ", "\n"}

// TextSplitter prepares cleaned article text for speech synthesis, whose
// API caps the input size per request.
type TextSplitter struct {
	logger *zap.Logger
}

// NewTextSplitter creates a new TextSplitter
func NewTextSplitter(logger *zap.Logger) *TextSplitter {
	return &TextSplitter{
		logger: logger,
	}
}

// SplitForSpeech breaks text into chunks of at most maxChars bytes, cutting
// at paragraph boundaries where possible and at sentence boundaries inside
// oversized paragraphs. Lengths are measured in bytes, which bounds the
// character count from above, and a cut never lands inside a UTF-8
// sequence.
func (ts *TextSplitter) SplitForSpeech(text string, maxChars int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxChars <= 0 || len(text) <= maxChars {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		joined := current.Len() + len(para)
		if current.Len() > 0 {
			joined += len("\n\n")
		}
		if joined <= maxChars {
			if current.Len() > 0 {
				current.WriteString("\n\n")
			}
			current.WriteString(para)
			continue
		}

		flush()
		if len(para) <= maxChars {
			current.WriteString(para)
			continue
		}
		pieces := splitParagraph(para, maxChars)
		if len(pieces) == 0 {
			continue
		}
		chunks = append(chunks, pieces[:len(pieces)-1]...)
		current.WriteString(pieces[len(pieces)-1])
	}
	flush()

	ts.logger.Debug("Split text for synthesis",
		zap.Int("total_size", len(text)),
		zap.Int("max_size", maxChars),
		zap.Int("chunks", len(chunks)))

	return chunks
}

// PrepareChunks sanitizes and splits text in one operation
func (ts *TextSplitter) PrepareChunks(text string, maxChars int) []string {
	return ts.SplitForSpeech(ts.SanitizeUTF8(text), maxChars)
}

// SanitizeUTF8 ensures the string contains only valid UTF-8 characters
func (ts *TextSplitter) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	result := make([]rune, 0, len(text))
	for i, r := range text {
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(text[i:])
			if size == 1 {
				// Skip invalid UTF-8 sequences
				continue
			}
		}
		result = append(result, r)
	}

	ts.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(string(result))))

	return string(result)
}

func splitParagraph(para string, maxChars int) []string {
	var pieces []string
	for len(para) > maxChars {
		cut := sentenceCut(para, maxChars)
		if piece := strings.TrimSpace(para[:cut]); piece != "" {
			pieces = append(pieces, piece)
		}
		para = strings.TrimSpace(para[cut:])
	}
	if para != "" {
		pieces = append(pieces, para)
	}
	return pieces
}

// sentenceCut finds the rightmost sentence boundary at or before maxChars,
// falling back to a rune-aligned hard cut.
func sentenceCut(para string, maxChars int) int {
	window := para[:maxChars]
	best := -1
	for _, end := range sentenceEnders {
		if i := strings.LastIndex(window, end); i >= 0 && i+len(end) > best {
			best = i + len(end)
		}
	}
	if best > 0 {
		return best
	}

	cut := maxChars
	for cut > 0 && !utf8.RuneStart(para[cut]) {
		cut--
	}
	if cut == 0 {
		cut = maxChars
	}
	return cut
}
