package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jmohr/mailcast/internal/adapters/tts"
	"github.com/jmohr/mailcast/internal/config"
	"github.com/jmohr/mailcast/internal/core"
	"github.com/jmohr/mailcast/internal/utils"
)

// SynthFactory creates speech synthesizers based on configuration
type SynthFactory struct {
	cfg      *config.Config
	logger   *zap.Logger
	splitter *utils.TextSplitter
}

// NewSynthFactory creates a new synthesizer factory
func NewSynthFactory(cfg *config.Config, logger *zap.Logger, splitter *utils.TextSplitter) *SynthFactory {
	return &SynthFactory{
		cfg:      cfg,
		logger:   logger,
		splitter: splitter,
	}
}

// CreateSynthesizer creates a speech synthesizer based on the configuration
func (f *SynthFactory) CreateSynthesizer() (core.SpeechSynthesizer, error) {
	ttsCfg := f.cfg.GetTTS()

	switch ttsCfg.Provider {
	case "openai":
		if ttsCfg.APIKey == "" {
			return nil, fmt.Errorf("tts.api_key is required for the openai provider")
		}
		return tts.NewSynthesizer(ttsCfg.APIKey, ttsCfg.MaxChunkChars, f.splitter, f.logger), nil
	case "none":
		return tts.NewNoopSynthesizer(f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported TTS provider: %s", ttsCfg.Provider)
	}
}

// Overrides returns the configured model and voice overrides
func (f *SynthFactory) Overrides() core.TTSOverrides {
	ttsCfg := f.cfg.GetTTS()
	return core.TTSOverrides{
		Model: ttsCfg.Model,
		Voice: ttsCfg.Voice,
	}
}
