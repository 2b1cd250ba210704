package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jmohr/mailcast/internal/mailparse"
	"github.com/jmohr/mailcast/internal/routing"
)

// TTSOverrides force a model or voice for every episode regardless of
// preset. Empty fields defer to the preset.
type TTSOverrides struct {
	Model string
	Voice string
}

// PipelineService drives a message end to end: assembly, speech synthesis,
// audio upload, episode bookkeeping and feed publication.
type PipelineService struct {
	assembler *Assembler
	objects   ObjectStore
	episodes  EpisodeStore
	synth     SpeechSynthesizer
	feeds     FeedPublisher
	overrides TTSOverrides
	logger    *zap.Logger
}

// NewPipelineService creates the pipeline service.
func NewPipelineService(
	assembler *Assembler,
	objects ObjectStore,
	episodes EpisodeStore,
	synth SpeechSynthesizer,
	feeds FeedPublisher,
	overrides TTSOverrides,
	logger *zap.Logger,
) *PipelineService {
	return &PipelineService{
		assembler: assembler,
		objects:   objects,
		episodes:  episodes,
		synth:     synth,
		feeds:     feeds,
		overrides: overrides,
		logger:    logger,
	}
}

// ProcessKey fetches a stored raw message and processes it. The key doubles
// as the dedupe identity: a key that was already handled is skipped, which
// makes queue redeliveries safe to ack.
func (s *PipelineService) ProcessKey(ctx context.Context, key, routeTag string) (*ProcessResult, error) {
	if skip, err := s.alreadyProcessed(ctx, key); err != nil {
		return nil, err
	} else if skip != nil {
		return skip, nil
	}

	raw, err := s.objects.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetch raw message %q: %w", key, err)
	}

	parsed, err := s.assembler.AssembleTagged(raw, routeTag, time.Now())
	if err != nil {
		return nil, fmt.Errorf("assemble %q: %w", key, err)
	}
	return s.publish(ctx, parsed, key)
}

// ProcessRaw handles a message body the caller already holds, with an
// optional externally supplied route tag. An empty key skips dedupe
// bookkeeping; an empty tag resolves the route from the message headers.
func (s *PipelineService) ProcessRaw(ctx context.Context, raw []byte, routeTag, key string) (*ProcessResult, error) {
	if key != "" {
		if skip, err := s.alreadyProcessed(ctx, key); err != nil {
			return nil, err
		} else if skip != nil {
			return skip, nil
		}
	}
	parsed, err := s.assembler.AssembleTagged(raw, routeTag, time.Now())
	if err != nil {
		return nil, fmt.Errorf("assemble message: %w", err)
	}
	return s.publish(ctx, parsed, key)
}

// ProcessMessage handles a message delivered together with its envelope, as
// the SMTP ingest path does. An empty key skips dedupe bookkeeping.
func (s *PipelineService) ProcessMessage(ctx context.Context, raw []byte, env routing.Envelope, key string) (*ProcessResult, error) {
	if key != "" {
		if skip, err := s.alreadyProcessed(ctx, key); err != nil {
			return nil, err
		} else if skip != nil {
			return skip, nil
		}
	}
	parsed, err := s.assembler.Assemble(raw, env, time.Now())
	if err != nil {
		return nil, fmt.Errorf("assemble message: %w", err)
	}
	return s.publish(ctx, parsed, key)
}

// ParseOnly runs assembly without touching any collaborator, for dry runs
// and the standalone parser CLI.
func (s *PipelineService) ParseOnly(raw []byte, env routing.Envelope) (*ParsedEpisode, error) {
	return s.assembler.Assemble(raw, env, time.Now())
}

func (s *PipelineService) alreadyProcessed(ctx context.Context, key string) (*ProcessResult, error) {
	done, err := s.episodes.IsProcessed(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("check processed state: %w", err)
	}
	if !done {
		return nil, nil
	}
	s.logger.Info("Skipping already processed message", zap.String("key", key))
	return &ProcessResult{Skipped: true, SkipReason: "already processed"}, nil
}

// publish synthesizes the episode, uploads the audio, records the episode
// and republishes the feeds.
func (s *PipelineService) publish(ctx context.Context, parsed *ParsedEpisode, key string) (*ProcessResult, error) {
	if strings.TrimSpace(parsed.Body) == "" {
		// Content was extractable but cleaned down to nothing. Not an
		// error; there is just nothing to say.
		s.logger.Warn("Cleaned body is empty, skipping synthesis",
			zap.String("subject", parsed.Subject),
			zap.String("route_tag", parsed.RouteTag))
		if err := s.markProcessed(ctx, key); err != nil {
			return nil, err
		}
		return &ProcessResult{Skipped: true, SkipReason: "empty body"}, nil
	}

	model, voice := s.voiceFor(parsed)
	s.logger.Info("Synthesizing episode",
		zap.String("title", parsed.Title),
		zap.String("preset", parsed.Preset.Name),
		zap.String("route_source", string(parsed.RouteSource)),
		zap.String("model", model),
		zap.String("voice", voice),
		zap.Int("body_chars", len(parsed.Body)))

	speech, err := s.synth.Synthesize(ctx, parsed.Body, model, voice)
	if err != nil {
		return nil, fmt.Errorf("synthesize %q: %w", parsed.Title, err)
	}

	storageKey := EpisodeKey(parsed.Preset.FeedSlug, parsed.Date, parsed.Slug)
	if err := s.objects.Put(ctx, storageKey, speech.Audio, speech.MIMEType); err != nil {
		return nil, fmt.Errorf("upload audio %q: %w", storageKey, err)
	}

	episode := &Episode{
		ID:              uuid.NewString(),
		Title:           parsed.Title,
		Slug:            parsed.Slug,
		PubDate:         s.pubDate(parsed.Date),
		StorageKey:      storageKey,
		FeedSlug:        parsed.Preset.FeedSlug,
		Category:        parsed.Preset.Category,
		SourceTag:       parsed.RouteTag,
		PresetName:      parsed.Preset.Name,
		SourceURL:       parsed.SourceURL,
		SizeBytes:       int64(len(speech.Audio)),
		DurationSeconds: speech.DurationSeconds,
		CreatedAt:       time.Now(),
	}
	if err := s.episodes.InsertEpisode(ctx, episode); err != nil {
		return nil, fmt.Errorf("record episode %q: %w", episode.Title, err)
	}
	if err := s.markProcessed(ctx, key); err != nil {
		return nil, err
	}
	if err := s.feeds.PublishFeeds(ctx); err != nil {
		return nil, fmt.Errorf("publish feeds: %w", err)
	}

	s.logger.Info("Episode published",
		zap.String("key", storageKey),
		zap.String("feed", episode.FeedSlug),
		zap.Int64("bytes", episode.SizeBytes))
	return &ProcessResult{Episode: episode}, nil
}

func (s *PipelineService) markProcessed(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := s.episodes.MarkProcessed(ctx, key); err != nil {
		return fmt.Errorf("mark processed %q: %w", key, err)
	}
	return nil
}

// voiceFor picks the synthesis parameters: preset values unless overridden
// by configuration.
func (s *PipelineService) voiceFor(parsed *ParsedEpisode) (model, voice string) {
	model = parsed.Preset.TTSModel
	voice = parsed.Preset.TTSVoice
	if s.overrides.Model != "" {
		model = s.overrides.Model
	}
	if s.overrides.Voice != "" {
		voice = s.overrides.Voice
	}
	return model, voice
}

// pubDate turns the canonical episode date back into a timestamp for feed
// ordering. The date string is assembler output, so a parse failure is
// effectively impossible, but fall back to now anyway.
func (s *PipelineService) pubDate(date string) time.Time {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Now()
	}
	return t
}

// EnvelopeFor derives an envelope from message headers alone, for callers
// without transport-level sender and recipient information.
func EnvelopeFor(raw []byte) routing.Envelope {
	return mailparse.EnvelopeFromMessage(raw)
}
