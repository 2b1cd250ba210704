package tts

import (
	"context"

	"go.uber.org/zap"

	"github.com/jmohr/mailcast/internal/core"
)

// NoopSynthesizer satisfies the synthesizer port without calling any
// provider. Useful for dry runs where episodes should flow through the
// pipeline without spending TTS credits.
type NoopSynthesizer struct {
	logger *zap.Logger
}

func NewNoopSynthesizer(logger *zap.Logger) *NoopSynthesizer {
	return &NoopSynthesizer{logger: logger}
}

func (s *NoopSynthesizer) Synthesize(_ context.Context, text, model, voice string) (*core.SpeechResult, error) {
	s.logger.Warn("Speech synthesis disabled, producing empty audio",
		zap.Int("text_length", len(text)),
		zap.String("model", model),
		zap.String("voice", voice))
	return &core.SpeechResult{
		Audio:    []byte{},
		MIMEType: mp3MIMEType,
	}, nil
}
