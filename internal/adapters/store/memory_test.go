package store

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestMemoryStoreListOrder(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := s.InsertEpisode(ctx, storeEpisode(id, "levine", time.Now(), nil)); err != nil {
			t.Fatalf("InsertEpisode() error = %v", err)
		}
	}

	all, err := s.ListEpisodes(ctx, "")
	if err != nil {
		t.Fatalf("ListEpisodes() error = %v", err)
	}
	if len(all) != 3 || all[0].ID != "c" || all[2].ID != "a" {
		t.Errorf("order = %v, want most recent first", []string{all[0].ID, all[1].ID, all[2].ID})
	}
}

func TestMemoryStoreFeedFilterAndSlugs(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	s.InsertEpisode(ctx, storeEpisode("a", "levine", time.Now(), nil))
	s.InsertEpisode(ctx, storeEpisode("b", "general", time.Now(), nil))
	s.InsertEpisode(ctx, storeEpisode("c", "levine", time.Now(), nil))

	levine, err := s.ListEpisodes(ctx, "levine")
	if err != nil {
		t.Fatalf("ListEpisodes(levine) error = %v", err)
	}
	if len(levine) != 2 {
		t.Errorf("got %d levine episodes, want 2", len(levine))
	}

	slugs, err := s.ListFeedSlugs(ctx)
	if err != nil {
		t.Fatalf("ListFeedSlugs() error = %v", err)
	}
	if len(slugs) != 2 {
		t.Errorf("slugs = %v, want two distinct", slugs)
	}
}

func TestMemoryStoreProcessed(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	if done, _ := s.IsProcessed(ctx, "k"); done {
		t.Error("fresh key reported processed")
	}
	if err := s.MarkProcessed(ctx, "k"); err != nil {
		t.Fatalf("MarkProcessed() error = %v", err)
	}
	if done, _ := s.IsProcessed(ctx, "k"); !done {
		t.Error("marked key not reported processed")
	}
}
