package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/jmohr/mailcast/internal/core"
)

// MemoryStore is an in-memory implementation of the EpisodeStore interface,
// for development and tests. Nothing survives a restart.
type MemoryStore struct {
	mu        sync.RWMutex
	episodes  []*core.Episode
	processed map[string]bool
	logger    *zap.Logger
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		processed: make(map[string]bool),
		logger:    logger,
	}
}

// InsertEpisode records a newly published episode
func (s *MemoryStore) InsertEpisode(_ context.Context, episode *core.Episode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.episodes = append(s.episodes, episode)
	return nil
}

// ListEpisodes returns episodes newest-first, optionally for one feed.
// Newest means most recently inserted.
func (s *MemoryStore) ListEpisodes(_ context.Context, feedSlug string) ([]*core.Episode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*core.Episode
	for i := len(s.episodes) - 1; i >= 0; i-- {
		if feedSlug == "" || s.episodes[i].FeedSlug == feedSlug {
			out = append(out, s.episodes[i])
		}
	}
	return out, nil
}

// ListFeedSlugs returns the distinct feed slugs with episodes
func (s *MemoryStore) ListFeedSlugs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var slugs []string
	for _, episode := range s.episodes {
		if episode.FeedSlug == "" || seen[episode.FeedSlug] {
			continue
		}
		seen[episode.FeedSlug] = true
		slugs = append(slugs, episode.FeedSlug)
	}
	return slugs, nil
}

// IsProcessed reports whether a message key was already handled
func (s *MemoryStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.processed[key], nil
}

// MarkProcessed records a message key as handled
func (s *MemoryStore) MarkProcessed(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.processed[key] = true
	return nil
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() error {
	return nil
}
