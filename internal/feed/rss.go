// Package feed renders the public RSS documents that podcast clients poll.
// One combined feed carries every episode; each feed slug additionally gets
// its own document under feeds/.
package feed

import (
	"encoding/xml"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jmohr/mailcast/internal/core"
)

const itunesNamespace = "http://www.itunes.com/dtds/podcast-1.0.dtd"

// Config describes the public identity of the podcast.
type Config struct {
	BaseURL         string
	Title           string
	Description     string
	Language        string
	Author          string
	ImageURL        string
	Images          map[string]string // per-feed cover overrides, keyed by slug
	DefaultCategory string
}

type rssDocument struct {
	XMLName  xml.Name   `xml:"rss"`
	Version  string     `xml:"version,attr"`
	ITunesNS string     `xml:"xmlns:itunes,attr"`
	Channel  rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string      `xml:"title"`
	Link        string      `xml:"link"`
	Description string      `xml:"description"`
	Language    string      `xml:"language"`
	Author      string      `xml:"itunes:author"`
	Image       rssImage    `xml:"itunes:image"`
	Category    rssCategory `xml:"itunes:category"`
	Items       []rssItem   `xml:"item"`
}

type rssImage struct {
	Href string `xml:"href,attr"`
}

type rssCategory struct {
	Text string `xml:"text,attr"`
}

type rssItem struct {
	Title          string       `xml:"title"`
	Link           string       `xml:"link,omitempty"`
	Description    string       `xml:"description,omitempty"`
	Enclosure      rssEnclosure `xml:"enclosure"`
	GUID           rssGUID      `xml:"guid"`
	PubDate        string       `xml:"pubDate"`
	Category       string       `xml:"category"`
	ITunesCategory rssCategory  `xml:"itunes:category"`
	Duration       string       `xml:"itunes:duration"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// Generator renders one RSS document from an episode list.
type Generator struct {
	cfg Config
}

// NewGenerator creates a new Generator
func NewGenerator(cfg Config) *Generator {
	return &Generator{cfg: cfg}
}

// Generate renders the feed for one slug. An empty or "general" slug
// renders the combined feed under the base title; any other slug gets a
// titled sub-feed and its own cover image.
func (g *Generator) Generate(feedSlug string, episodes []*core.Episode) ([]byte, error) {
	title := g.cfg.Title
	image := g.cfg.ImageURL
	if feedSlug != "" && feedSlug != "general" {
		title = g.cfg.Title + " - " + humanizeSlug(feedSlug)
		image = g.coverFor(feedSlug)
	}

	category := g.cfg.DefaultCategory
	if len(episodes) > 0 {
		category = episodes[0].Category
	}

	doc := rssDocument{
		Version:  "2.0",
		ITunesNS: itunesNamespace,
		Channel: rssChannel{
			Title:       title,
			Link:        g.cfg.BaseURL,
			Description: g.cfg.Description,
			Language:    g.cfg.Language,
			Author:      g.cfg.Author,
			Image:       rssImage{Href: image},
			Category:    rssCategory{Text: category},
		},
	}

	for _, ep := range episodes {
		item := rssItem{
			Title: ep.Title,
			Enclosure: rssEnclosure{
				URL:    g.objectURL(ep.StorageKey),
				Length: ep.SizeBytes,
				Type:   "audio/mpeg",
			},
			GUID:           rssGUID{IsPermaLink: "false", Value: ep.ID},
			PubDate:        ep.PubDate.Format("Mon, 02 Jan 2006 15:04:05 -0700"),
			Category:       ep.Category,
			ITunesCategory: rssCategory{Text: ep.Category},
			Duration:       durationHMS(ep.DurationSeconds),
		}
		if ep.SourceURL != "" {
			item.Link = ep.SourceURL
			item.Description = ep.SourceURL
		}
		doc.Channel.Items = append(doc.Channel.Items, item)
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal feed %q: %w", feedSlug, err)
	}
	return append([]byte(xml.Header), body...), nil
}

func (g *Generator) coverFor(feedSlug string) string {
	if url, ok := g.cfg.Images[feedSlug]; ok && url != "" {
		return url
	}
	return strings.TrimRight(g.cfg.BaseURL, "/") + "/cover-" + feedSlug + ".jpg"
}

func (g *Generator) objectURL(key string) string {
	return strings.TrimRight(g.cfg.BaseURL, "/") + "/" + key
}

// humanizeSlug turns a feed slug into a display name for sub-feed titles.
func humanizeSlug(slug string) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(slug, "-", " "))
}

// durationHMS renders seconds in the MM:SS form podcast clients expect,
// with an hour field once the episode is that long. Unknown durations
// render as 00:00.
func durationHMS(seconds *int64) string {
	if seconds == nil {
		return "00:00"
	}
	s := *seconds
	hours := s / 3600
	minutes := (s % 3600) / 60
	rem := s % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, rem)
	}
	return fmt.Sprintf("%02d:%02d", minutes, rem)
}
