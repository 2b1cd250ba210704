package mailparse

import (
	"testing"
	"time"
)

var processedAt = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func TestExtractMetaParsesHeaderDate(t *testing.T) {
	raw := message(
		"From: a@example.com",
		"Subject: Housing Policy",
		"Date: Mon, 27 Jan 2025 10:00:00 -0500",
		"",
		"body",
	)
	meta := ExtractMeta(raw, processedAt)
	if meta.Date != "2025-01-27" {
		t.Errorf("meta.Date = %q, want %q", meta.Date, "2025-01-27")
	}
	if meta.Subject != "Housing Policy" {
		t.Errorf("meta.Subject = %q, want %q", meta.Subject, "Housing Policy")
	}
	if meta.Slug != "housing-policy" {
		t.Errorf("meta.Slug = %q, want %q", meta.Slug, "housing-policy")
	}
}

func TestExtractMetaLenientDateFormats(t *testing.T) {
	raw := message(
		"From: a@example.com",
		"Subject: s",
		"Date: 2025-01-27 10:00:00",
		"",
		"body",
	)
	meta := ExtractMeta(raw, processedAt)
	if meta.Date != "2025-01-27" {
		t.Errorf("meta.Date = %q, want lenient parse to %q", meta.Date, "2025-01-27")
	}
}

func TestExtractMetaDateFallsBackToProcessingTime(t *testing.T) {
	tests := []struct {
		name string
		date string
	}{
		{"missing", ""},
		{"garbage", "Date: not a date at all ###"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := []string{"From: a@example.com", "Subject: s"}
			if tt.date != "" {
				lines = append(lines, tt.date)
			}
			lines = append(lines, "", "body")
			meta := ExtractMeta(message(lines...), processedAt)
			if meta.Date != "2025-03-14" {
				t.Errorf("meta.Date = %q, want fallback %q", meta.Date, "2025-03-14")
			}
		})
	}
}

func TestExtractMetaSubjectFallback(t *testing.T) {
	raw := message(
		"From: a@example.com",
		"Subject:   ",
		"Date: Mon, 27 Jan 2025 10:00:00 -0500",
		"",
		"body",
	)
	meta := ExtractMeta(raw, processedAt)
	if meta.Subject != FallbackSubject {
		t.Errorf("meta.Subject = %q, want %q", meta.Subject, FallbackSubject)
	}
	if meta.Slug != "no-subject" {
		t.Errorf("meta.Slug = %q, want %q", meta.Slug, "no-subject")
	}
}

func TestExtractMetaDecodesEncodedSubject(t *testing.T) {
	raw := message(
		"From: a@example.com",
		"Subject: =?utf-8?q?Caf=C3=A9_Economics?=",
		"Date: Mon, 27 Jan 2025 10:00:00 -0500",
		"",
		"body",
	)
	meta := ExtractMeta(raw, processedAt)
	if meta.Subject != "Café Economics" {
		t.Errorf("meta.Subject = %q, want %q", meta.Subject, "Café Economics")
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Housing Policy", "housing-policy"},
		{"Money Stuff: The Market Never Sleeps!", "money-stuff-the-market-never-sleeps"},
		{"  spaces   everywhere  ", "spaces-everywhere"},
		{"Émigré Café", "émigré-café"},
		{"???", "untitled"},
		{"", "untitled"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLinksInText(t *testing.T) {
	text := `Read it at https://example.com/p/first. Then https://example.com/p/second?x=1&amp;y=2
and https://example.com/p/first again.`
	links := LinksInText(text)
	want := []string{
		"https://example.com/p/first",
		"https://example.com/p/second?x=1&y=2",
	}
	if len(links) != len(want) {
		t.Fatalf("LinksInText() returned %d links %v, want %d", len(links), links, len(want))
	}
	for i := range want {
		if links[i] != want[i] {
			t.Errorf("links[%d] = %q, want %q", i, links[i], want[i])
		}
	}
}

func TestCandidateLinksDocumentOrder(t *testing.T) {
	raw := message(
		"From: a@example.com",
		"Content-Type: text/html",
		"",
		`<a href="https://b.example.com/two">x</a> then <a href="https://a.example.com/one">y</a>`,
	)
	links := CandidateLinks(raw)
	if len(links) != 2 || links[0] != "https://b.example.com/two" || links[1] != "https://a.example.com/one" {
		t.Errorf("CandidateLinks() = %v, want document order preserved", links)
	}
}

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com/p/post?utm_source=x#top", "https://example.com/p/post"},
		{"https://example.com/p/post", "https://example.com/p/post"},
		{"https://example.com/", "https://example.com"},
	}
	for _, tt := range tests {
		if got := CanonicalURL(tt.in); got != tt.want {
			t.Errorf("CanonicalURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
