package core

import (
	"fmt"
	"time"

	"github.com/jmohr/mailcast/internal/mailparse"
	"github.com/jmohr/mailcast/internal/newsletter"
	"github.com/jmohr/mailcast/internal/routing"
	"github.com/jmohr/mailcast/internal/textclean"
)

// Assembler turns one raw message into a ParsedEpisode. It owns no I/O; the
// routing table and adapter registry are fixed at construction and shared
// read-only across messages.
type Assembler struct {
	routes   *routing.Table
	registry *newsletter.Registry
}

// NewAssembler creates an assembler over a routing table and an adapter
// registry.
func NewAssembler(routes *routing.Table, registry *newsletter.Registry) *Assembler {
	return &Assembler{routes: routes, registry: registry}
}

// Assemble resolves the route from the envelope, then builds the episode.
// The only failure is a message with no extractable content; every other
// anomaly resolves to a documented fallback.
func (a *Assembler) Assemble(raw []byte, env routing.Envelope, now time.Time) (*ParsedEpisode, error) {
	return a.assemble(raw, a.routes.Resolve(env), now)
}

// AssembleTagged skips route resolution for callers that already know the
// route tag; queue deliveries carry the tag attached by the ingest worker.
// An empty tag resolves from the message headers instead.
func (a *Assembler) AssembleTagged(raw []byte, tag string, now time.Time) (*ParsedEpisode, error) {
	if tag == "" {
		return a.Assemble(raw, mailparse.EnvelopeFromMessage(raw), now)
	}
	return a.assemble(raw, routing.Decision{Tag: tag, Source: routing.SourceExternal}, now)
}

func (a *Assembler) assemble(raw []byte, decision routing.Decision, now time.Time) (*ParsedEpisode, error) {
	preset := newsletter.ResolvePreset(decision.Tag)
	adapter := a.registry.Lookup(preset.FeedSlug)

	markup, err := mailparse.ExtractBody(raw)
	if err != nil {
		return nil, fmt.Errorf("extract body: %w", err)
	}
	generic := textclean.InlineFootnotes(textclean.Clean(markup))
	meta := mailparse.ExtractMeta(raw, now)

	return &ParsedEpisode{
		Date:        meta.Date,
		Subject:     meta.Subject,
		Slug:        meta.Slug,
		Title:       adapter.FormatTitle(meta.Date, meta.Subject, meta.Slug),
		Body:        adapter.CleanBody(raw, generic),
		SourceURL:   adapter.ExtractSourceURL(raw, meta.Date, meta.Subject),
		RouteTag:    decision.Tag,
		RouteSource: decision.Source,
		Preset:      preset,
	}, nil
}
