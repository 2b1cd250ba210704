package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jmohr/mailcast/internal/mailparse"
	"github.com/jmohr/mailcast/internal/newsletter"
	"github.com/jmohr/mailcast/internal/routing"
)

var assembleNow = time.Date(2025, 1, 27, 12, 0, 0, 0, time.UTC)

func testAssembler() *Assembler {
	table := routing.NewTable(
		map[string]string{"newsletter@slowboring.com": "yglesias"},
		[]routing.ListPattern{{Substring: "bloomberg", Tag: "levine"}},
	)
	return NewAssembler(table, newsletter.NewRegistry(newsletter.BuiltinAdapters(nil)))
}

func rawEmail(lines ...string) []byte {
	return []byte(strings.Join(lines, "\r\n"))
}

func TestAssembleSinglePartHTMLWithHiddenSpan(t *testing.T) {
	raw := rawEmail(
		"From: someone@example.com",
		"To: podcast@inbox.example.com",
		"Subject: Weekly Notes",
		"Date: Mon, 27 Jan 2025 10:00:00 -0500",
		"Content-Type: text/html; charset=utf-8",
		"",
		`<p>The visible paragraph.</p><span style="display:none">hidden preview text</span>`,
	)
	ep, err := testAssembler().Assemble(raw, mailparse.EnvelopeFromMessage(raw), assembleNow)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if !strings.Contains(ep.Body, "The visible paragraph.") {
		t.Errorf("body = %q, visible text missing", ep.Body)
	}
	if strings.Contains(ep.Body, "hidden preview text") {
		t.Errorf("body = %q, hidden text leaked", ep.Body)
	}
	if strings.ContainsAny(ep.Body, "<>") {
		t.Errorf("body = %q, contains leftover tags", ep.Body)
	}
	if ep.RouteSource != routing.SourceNone {
		t.Errorf("route source = %q, want none", ep.RouteSource)
	}
	if ep.Title != "2025-01-27 - Weekly Notes" {
		t.Errorf("title = %q, want default adapter form", ep.Title)
	}
}

func TestAssembleMultipartPrefersHTML(t *testing.T) {
	raw := rawEmail(
		"From: someone@example.com",
		"To: podcast@inbox.example.com",
		"Subject: s",
		"Date: Mon, 27 Jan 2025 10:00:00 -0500",
		`Content-Type: multipart/alternative; boundary="b"`,
		"",
		"--b",
		"Content-Type: text/plain",
		"",
		"from the text part",
		"--b",
		"Content-Type: text/html",
		"",
		"<p>from the html part</p>",
		"--b--",
	)
	ep, err := testAssembler().Assemble(raw, mailparse.EnvelopeFromMessage(raw), assembleNow)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if !strings.Contains(ep.Body, "from the html part") {
		t.Errorf("body = %q, want html-derived text", ep.Body)
	}
	if strings.Contains(ep.Body, "from the text part") {
		t.Errorf("body = %q, text part should not win", ep.Body)
	}
}

func TestAssembleNoContentFails(t *testing.T) {
	raw := rawEmail(
		"From: someone@example.com",
		"Subject: s",
		`Content-Type: multipart/mixed; boundary="b"`,
		"",
		"--b",
		"Content-Type: image/png",
		"",
		"not text",
		"--b--",
	)
	_, err := testAssembler().Assemble(raw, mailparse.EnvelopeFromMessage(raw), assembleNow)
	if !errors.Is(err, mailparse.ErrNoContent) {
		t.Fatalf("Assemble() error = %v, want ErrNoContent", err)
	}
}

func TestAssembleRoutePriorityEndToEnd(t *testing.T) {
	// Recipient tag, sender entry and list id all present; recipient wins.
	raw := rawEmail(
		"From: newsletter@slowboring.com",
		"To: podcast+levine@inbox.example.com",
		"Subject: Money Stuff: Bonds",
		"Date: Mon, 27 Jan 2025 10:00:00 -0500",
		"List-Id: <mail.bloomberg.com>",
		"Content-Type: text/html",
		"",
		"<p>content</p>",
	)
	ep, err := testAssembler().Assemble(raw, mailparse.EnvelopeFromMessage(raw), assembleNow)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if ep.RouteTag != "levine" || ep.RouteSource != routing.SourceRecipient {
		t.Fatalf("route = {%q %q}, want recipient tag levine", ep.RouteTag, ep.RouteSource)
	}
	if ep.Preset.Name != "Money Stuff" {
		t.Errorf("preset = %q, want Money Stuff", ep.Preset.Name)
	}
	if ep.Title != "2025-01-27 - Money Stuff - Bonds" {
		t.Errorf("title = %q", ep.Title)
	}
}

func TestAssembleSubstackEndToEnd(t *testing.T) {
	raw := rawEmail(
		"From: newsletter@slowboring.com",
		"To: podcast@inbox.example.com",
		"Subject: Slow Boring: Housing Policy",
		"Date: Mon, 27 Jan 2025 10:00:00 -0500",
		"List-Post: <https://slowboring.com/p/housing-policy>",
		`Content-Type: multipart/alternative; boundary="b"`,
		"",
		"--b",
		"Content-Type: text/plain",
		"",
		"View this post on the web at <https://slowboring.com/p/housing-policy>",
		"",
		"Build more houses.",
		"",
		"Unsubscribe https://slowboring.com/action/disable_email?token=x",
		"--b",
		"Content-Type: text/html",
		"",
		"<p>Build more houses.</p>",
		"--b--",
	)
	ep, err := testAssembler().Assemble(raw, mailparse.EnvelopeFromMessage(raw), assembleNow)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if ep.RouteTag != "yglesias" || ep.RouteSource != routing.SourceSender {
		t.Fatalf("route = {%q %q}, want sender tag yglesias", ep.RouteTag, ep.RouteSource)
	}
	if ep.Title != "2025-01-27 - Slow Boring - Housing Policy" {
		t.Errorf("title = %q", ep.Title)
	}
	if ep.Body != "Build more houses." {
		t.Errorf("body = %q, want boilerplate-free plain part", ep.Body)
	}
	if ep.SourceURL != "https://slowboring.com/p/housing-policy" {
		t.Errorf("source url = %q", ep.SourceURL)
	}
	if ep.Preset.FeedSlug != "yglesias" {
		t.Errorf("feed slug = %q", ep.Preset.FeedSlug)
	}
}

func TestAssembleTagged(t *testing.T) {
	raw := rawEmail(
		"From: anybody@example.com",
		"Subject: Money Stuff: Leverage",
		"Date: Mon, 27 Jan 2025 10:00:00 -0500",
		"Content-Type: text/html",
		"",
		"<p>content</p>",
	)
	ep, err := testAssembler().AssembleTagged(raw, "levine", assembleNow)
	if err != nil {
		t.Fatalf("AssembleTagged() error = %v", err)
	}
	if ep.RouteTag != "levine" || ep.RouteSource != routing.SourceExternal {
		t.Errorf("route = {%q %q}, want external levine", ep.RouteTag, ep.RouteSource)
	}
	if ep.Preset.Name != "Money Stuff" {
		t.Errorf("preset = %q", ep.Preset.Name)
	}
}

func TestAssembleTaggedEmptyTagResolvesHeaders(t *testing.T) {
	raw := rawEmail(
		"From: newsletter@slowboring.com",
		"To: podcast@inbox.example.com",
		"Subject: s",
		"Date: Mon, 27 Jan 2025 10:00:00 -0500",
		"Content-Type: text/html",
		"",
		"<p>content</p>",
	)
	ep, err := testAssembler().AssembleTagged(raw, "", assembleNow)
	if err != nil {
		t.Fatalf("AssembleTagged() error = %v", err)
	}
	if ep.RouteTag != "yglesias" || ep.RouteSource != routing.SourceSender {
		t.Errorf("route = {%q %q}, want sender resolution fallback", ep.RouteTag, ep.RouteSource)
	}
}

func TestAssembleMetadataFallbacks(t *testing.T) {
	raw := rawEmail(
		"From: someone@example.com",
		"Content-Type: text/html",
		"",
		"<p>content</p>",
	)
	ep, err := testAssembler().Assemble(raw, mailparse.EnvelopeFromMessage(raw), assembleNow)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if ep.Date != "2025-01-27" {
		t.Errorf("date = %q, want processing-time fallback", ep.Date)
	}
	if ep.Subject != mailparse.FallbackSubject {
		t.Errorf("subject = %q, want fallback", ep.Subject)
	}
	if ep.Preset.Name != newsletter.DefaultPreset.Name {
		t.Errorf("preset = %q, want default", ep.Preset.Name)
	}
}
