package core

import (
	"context"
)

// ObjectStore is the bucket holding raw inbound mail, episode audio and
// feed documents.
type ObjectStore interface {
	// Get fetches an object by key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put writes an object, overwriting any previous version.
	Put(ctx context.Context, key string, body []byte, contentType string) error

	// Exists reports whether an object is present.
	Exists(ctx context.Context, key string) (bool, error)
}

// EpisodeStore persists published episodes and processed-message state.
type EpisodeStore interface {
	// InsertEpisode records a newly published episode.
	InsertEpisode(ctx context.Context, episode *Episode) error

	// ListEpisodes returns episodes newest-first. An empty feedSlug lists
	// every feed.
	ListEpisodes(ctx context.Context, feedSlug string) ([]*Episode, error)

	// ListFeedSlugs returns the distinct feed slugs with episodes.
	ListFeedSlugs(ctx context.Context) ([]string, error)

	// IsProcessed reports whether a message key was already handled.
	IsProcessed(ctx context.Context, key string) (bool, error)

	// MarkProcessed records a message key as handled.
	MarkProcessed(ctx context.Context, key string) error

	// Close releases the underlying store.
	Close() error
}

// SpeechSynthesizer renders text to audio.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, model, voice string) (*SpeechResult, error)
}

// FeedPublisher regenerates the public feed documents after the episode
// list changes.
type FeedPublisher interface {
	PublishFeeds(ctx context.Context) error
}
