package queue

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jmohr/mailcast/internal/core"
	"github.com/jmohr/mailcast/internal/newsletter"
	"github.com/jmohr/mailcast/internal/routing"
)

type scriptedConsumer struct {
	batches [][]core.QueueMessage
	call    int
	acked   [][]core.QueueMessage
	cancel  context.CancelFunc
}

func (s *scriptedConsumer) Pull(context.Context, int, int) ([]core.QueueMessage, error) {
	if s.call < len(s.batches) {
		batch := s.batches[s.call]
		s.call++
		return batch, nil
	}
	s.cancel()
	return nil, nil
}

func (s *scriptedConsumer) Ack(_ context.Context, messages []core.QueueMessage) error {
	if len(messages) > 0 {
		s.acked = append(s.acked, messages)
	}
	return nil
}

type loopObjects struct{ objects map[string][]byte }

func (f *loopObjects) Get(_ context.Context, key string) ([]byte, error) {
	b, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("no such object %q", key)
	}
	return b, nil
}

func (f *loopObjects) Put(_ context.Context, key string, body []byte, _ string) error {
	f.objects[key] = body
	return nil
}

func (f *loopObjects) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.objects[key]
	return ok, nil
}

type loopEpisodes struct {
	inserted  []*core.Episode
	processed map[string]bool
}

func (f *loopEpisodes) InsertEpisode(_ context.Context, ep *core.Episode) error {
	f.inserted = append(f.inserted, ep)
	return nil
}

func (f *loopEpisodes) ListEpisodes(context.Context, string) ([]*core.Episode, error) {
	return f.inserted, nil
}

func (f *loopEpisodes) ListFeedSlugs(context.Context) ([]string, error) { return nil, nil }

func (f *loopEpisodes) IsProcessed(_ context.Context, key string) (bool, error) {
	return f.processed[key], nil
}

func (f *loopEpisodes) MarkProcessed(_ context.Context, key string) error {
	f.processed[key] = true
	return nil
}

func (f *loopEpisodes) Close() error { return nil }

type loopSynth struct{}

func (loopSynth) Synthesize(context.Context, string, string, string) (*core.SpeechResult, error) {
	return &core.SpeechResult{Audio: []byte("mp3"), MIMEType: "audio/mpeg"}, nil
}

type loopFeeds struct{ published int }

func (f *loopFeeds) PublishFeeds(context.Context) error {
	f.published++
	return nil
}

func TestLoopAcksSuccessesAndDuplicatesOnly(t *testing.T) {
	raw := strings.Join([]string{
		"From: someone@example.com",
		"Subject: Queue Test",
		"Date: Mon, 27 Jan 2025 10:00:00 -0500",
		"Content-Type: text/html",
		"",
		"<p>content</p>",
	}, "\r\n")

	objects := &loopObjects{objects: map[string][]byte{"inbound/ok.eml": []byte(raw)}}
	episodes := &loopEpisodes{processed: map[string]bool{"inbound/dup.eml": true}}
	feeds := &loopFeeds{}

	assembler := core.NewAssembler(routing.NewTable(nil, nil), newsletter.NewRegistry(nil))
	service := core.NewPipelineService(
		assembler, objects, episodes, loopSynth{}, feeds, core.TTSOverrides{}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	consumer := &scriptedConsumer{
		cancel: cancel,
		batches: [][]core.QueueMessage{{
			{ID: "m1", LeaseID: "l1", Key: "inbound/ok.eml"},
			{ID: "m2", LeaseID: "l2", Key: "inbound/gone.eml"},
			{ID: "m3", LeaseID: "l3", Key: "inbound/dup.eml"},
		}},
	}

	loop := NewLoop(consumer, service, 5, 120, time.Millisecond, zap.NewNop())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop")
	}

	if len(consumer.acked) != 1 {
		t.Fatalf("ack batches = %d, want 1", len(consumer.acked))
	}
	acked := consumer.acked[0]
	if len(acked) != 2 || acked[0].ID != "m1" || acked[1].ID != "m3" {
		t.Errorf("acked = %+v, want success and duplicate but not the failure", acked)
	}

	if len(episodes.inserted) != 1 {
		t.Errorf("inserted %d episodes, want 1", len(episodes.inserted))
	}
	if !episodes.processed["inbound/ok.eml"] {
		t.Error("processed key not recorded")
	}
	if feeds.published != 1 {
		t.Errorf("feeds published %d times, want 1", feeds.published)
	}
}
