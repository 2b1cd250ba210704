// Package tts renders episode text to MP3 audio.
package tts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/jmohr/mailcast/internal/core"
	"github.com/jmohr/mailcast/internal/utils"
)

const mp3MIMEType = "audio/mpeg"

// Synthesizer is an OpenAI implementation of the SpeechSynthesizer
// interface. Texts beyond the API's per-request input limit are split into
// chunks and the MP3 streams concatenated, which players accept as one
// continuous file.
type Synthesizer struct {
	client   *openai.Client
	splitter *utils.TextSplitter
	maxChars int
	logger   *zap.Logger
}

// NewSynthesizer creates a new OpenAI synthesizer
func NewSynthesizer(apiKey string, maxChars int, splitter *utils.TextSplitter, logger *zap.Logger) *Synthesizer {
	return newSynthesizer(openai.NewClient(apiKey), maxChars, splitter, logger)
}

func newSynthesizer(client *openai.Client, maxChars int, splitter *utils.TextSplitter, logger *zap.Logger) *Synthesizer {
	return &Synthesizer{
		client:   client,
		splitter: splitter,
		maxChars: maxChars,
		logger:   logger,
	}
}

// Synthesize renders text to speech
func (s *Synthesizer) Synthesize(ctx context.Context, text, model, voice string) (*core.SpeechResult, error) {
	chunks := s.splitter.PrepareChunks(text, s.maxChars)
	if len(chunks) == 0 {
		return nil, errors.New("no text to synthesize")
	}

	var audio bytes.Buffer
	for i, chunk := range chunks {
		resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
			Model:          openai.SpeechModel(model),
			Input:          chunk,
			Voice:          openai.SpeechVoice(voice),
			ResponseFormat: openai.SpeechResponseFormatMp3,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create speech for chunk %d of %d: %w", i+1, len(chunks), err)
		}
		_, err = io.Copy(&audio, resp)
		resp.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read speech audio: %w", err)
		}
		s.logger.Debug("Synthesized chunk",
			zap.Int("chunk", i+1),
			zap.Int("chunks", len(chunks)),
			zap.Int("chars", len(chunk)))
	}

	return &core.SpeechResult{
		Audio:           audio.Bytes(),
		MIMEType:        mp3MIMEType,
		DurationSeconds: MP3Duration(audio.Bytes()),
	}, nil
}
