package core

import (
	"fmt"
	"time"

	"github.com/jmohr/mailcast/internal/newsletter"
	"github.com/jmohr/mailcast/internal/routing"
)

// ParsedEpisode is the routing and content-adaptation result for one
// message: everything needed to synthesize and publish, before any I/O
// happens. Downstream consumers rely on these field names staying stable.
type ParsedEpisode struct {
	Date        string // YYYY-MM-DD
	Subject     string
	Slug        string
	Title       string
	Body        string
	SourceURL   string // "" when no canonical link was found
	RouteTag    string
	RouteSource routing.Source
	Preset      newsletter.Preset
}

// Episode is a published audio episode as recorded in the store and listed
// in feeds.
type Episode struct {
	ID              string
	Title           string
	Slug            string
	PubDate         time.Time
	StorageKey      string
	FeedSlug        string
	Category        string
	SourceTag       string
	PresetName      string
	SourceURL       string
	SizeBytes       int64
	DurationSeconds *int64
	CreatedAt       time.Time
}

// QueueMessage is one pull-consumer delivery: a stored raw message plus the
// route tag the ingest worker attached.
type QueueMessage struct {
	ID       string
	LeaseID  string
	Key      string
	RouteTag string
}

// SpeechResult is rendered audio plus what the synthesizer knows about it.
type SpeechResult struct {
	Audio           []byte
	MIMEType        string
	DurationSeconds *int64 // nil when the duration could not be measured
}

// ProcessResult summarizes one processed message.
type ProcessResult struct {
	Episode    *Episode
	Skipped    bool
	SkipReason string
}

// EpisodeKey is the object-store location for an episode's audio file.
func EpisodeKey(feedSlug, date, slug string) string {
	return fmt.Sprintf("episodes/%s/%s-%s.mp3", feedSlug, date, slug)
}
