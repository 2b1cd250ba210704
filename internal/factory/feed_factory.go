package factory

import (
	"strings"

	"go.uber.org/zap"

	"github.com/jmohr/mailcast/internal/config"
	"github.com/jmohr/mailcast/internal/core"
	"github.com/jmohr/mailcast/internal/feed"
)

// FeedFactory creates the feed generator and publisher
type FeedFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFeedFactory creates a new feed factory
func NewFeedFactory(cfg *config.Config, logger *zap.Logger) *FeedFactory {
	return &FeedFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateGenerator creates a feed generator from the configured metadata
func (f *FeedFactory) CreateGenerator() *feed.Generator {
	feedCfg := f.cfg.GetFeed()

	imageURL := feedCfg.ImageURL
	if imageURL == "" {
		imageURL = strings.TrimRight(feedCfg.BaseURL, "/") + "/cover-general.jpg"
	}

	return feed.NewGenerator(feed.Config{
		BaseURL:         feedCfg.BaseURL,
		Title:           feedCfg.Title,
		Description:     feedCfg.Description,
		Language:        feedCfg.Language,
		Author:          feedCfg.Author,
		ImageURL:        imageURL,
		Images:          feedCfg.Images,
		DefaultCategory: feedCfg.DefaultCategory,
	})
}

// CreatePublisher creates the feed publisher
func (f *FeedFactory) CreatePublisher(episodes core.EpisodeStore, objects core.ObjectStore) *feed.Publisher {
	return feed.NewPublisher(f.CreateGenerator(), episodes, objects, f.logger)
}
