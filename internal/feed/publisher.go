package feed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jmohr/mailcast/internal/core"
)

const (
	combinedFeedKey = "feed.xml"
	feedContentType = "application/rss+xml"
)

// Publisher regenerates every feed document and uploads them to the
// object store, where they are served as static files.
type Publisher struct {
	generator *Generator
	episodes  core.EpisodeStore
	objects   core.ObjectStore
	logger    *zap.Logger
}

// NewPublisher creates a new Publisher
func NewPublisher(generator *Generator, episodes core.EpisodeStore, objects core.ObjectStore, logger *zap.Logger) *Publisher {
	return &Publisher{
		generator: generator,
		episodes:  episodes,
		objects:   objects,
		logger:    logger,
	}
}

// PublishFeeds uploads the combined feed plus one document per feed slug.
// The general slug has no document of its own; its episodes only appear in
// the combined feed.
func (p *Publisher) PublishFeeds(ctx context.Context) error {
	if err := p.publishOne(ctx, "", combinedFeedKey); err != nil {
		return err
	}

	slugs, err := p.episodes.ListFeedSlugs(ctx)
	if err != nil {
		return fmt.Errorf("list feed slugs: %w", err)
	}
	count := 1
	for _, slug := range slugs {
		if slug == "general" {
			continue
		}
		if err := p.publishOne(ctx, slug, "feeds/"+slug+".xml"); err != nil {
			return err
		}
		count++
	}

	p.logger.Info("Feeds published", zap.Int("documents", count))
	return nil
}

// Render produces a single feed document without uploading it, for dry
// runs and local inspection.
func (p *Publisher) Render(ctx context.Context, feedSlug string) ([]byte, error) {
	episodes, err := p.episodes.ListEpisodes(ctx, feedSlug)
	if err != nil {
		return nil, fmt.Errorf("list episodes for feed %q: %w", feedSlug, err)
	}
	return p.generator.Generate(feedSlug, episodes)
}

func (p *Publisher) publishOne(ctx context.Context, feedSlug, key string) error {
	body, err := p.Render(ctx, feedSlug)
	if err != nil {
		return err
	}
	if err := p.objects.Put(ctx, key, body, feedContentType); err != nil {
		return fmt.Errorf("upload feed %q: %w", key, err)
	}
	return nil
}
