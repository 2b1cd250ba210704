package routing

import (
	"strings"
)

// Source identifies which envelope field produced a route decision.
type Source string

const (
	SourceRecipient Source = "recipient"
	SourceSender    Source = "sender"
	SourceListID    Source = "list_id"
	SourceNone      Source = "none"

	// SourceExternal marks a tag attached upstream of this resolver, e.g.
	// carried inside a queue delivery. Resolve never returns it.
	SourceExternal Source = "external"
)

// Envelope carries the header fields route resolution looks at. Values are
// raw header text; the resolver does its own normalization.
type Envelope struct {
	From    string
	To      string
	Subject string
	Date    string
	ListID  string
}

// ListPattern maps a List-Id substring to a route tag. Patterns are tried in
// order; the first one contained in the header wins.
type ListPattern struct {
	Substring string
	Tag       string
}

// Decision is the outcome of route resolution. Tag is empty when Source is
// SourceNone.
type Decision struct {
	Tag    string
	Source Source
}

// Table holds the routing rules. It is immutable after construction and safe
// for concurrent use.
type Table struct {
	senderTags   map[string]string
	listPatterns []ListPattern
}

// tagDelimiter separates the mailbox from the routing tag in sub-addressed
// recipients (user+tag@domain).
const tagDelimiter = "+"

// NewTable builds a routing table. Sender addresses are matched
// case-insensitively; list patterns keep the order they were given in.
func NewTable(senderTags map[string]string, listPatterns []ListPattern) *Table {
	senders := make(map[string]string, len(senderTags))
	for addr, tag := range senderTags {
		senders[strings.ToLower(strings.TrimSpace(addr))] = tag
	}
	patterns := make([]ListPattern, len(listPatterns))
	copy(patterns, listPatterns)
	return &Table{
		senderTags:   senders,
		listPatterns: patterns,
	}
}

// Resolve maps an envelope to a route decision. Precedence is strict:
// recipient sub-address tag, then sender table, then List-Id patterns. An
// envelope matching none of them yields SourceNone with an empty tag.
func (t *Table) Resolve(env Envelope) Decision {
	if tag := recipientTag(env.To); tag != "" {
		return Decision{Tag: tag, Source: SourceRecipient}
	}
	if tag := t.senderTag(env.From); tag != "" {
		return Decision{Tag: tag, Source: SourceSender}
	}
	if tag := t.listTag(env.ListID); tag != "" {
		return Decision{Tag: tag, Source: SourceListID}
	}
	return Decision{Source: SourceNone}
}

// recipientTag pulls the sub-address tag out of the recipient local part.
// "user+money@example.com" routes as "money". A bare delimiter with nothing
// after it does not count as a tag.
func recipientTag(to string) string {
	addr := ExtractAddress(to)
	at := strings.LastIndex(addr, "@")
	if at < 0 {
		return ""
	}
	local := addr[:at]
	i := strings.Index(local, tagDelimiter)
	if i < 0 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(local[i+len(tagDelimiter):]))
}

func (t *Table) senderTag(from string) string {
	addr := strings.ToLower(ExtractAddress(from))
	if addr == "" {
		return ""
	}
	return t.senderTags[addr]
}

func (t *Table) listTag(listID string) string {
	if listID == "" {
		return ""
	}
	id := strings.ToLower(listID)
	for _, p := range t.listPatterns {
		if p.Substring != "" && strings.Contains(id, strings.ToLower(p.Substring)) {
			return p.Tag
		}
	}
	return ""
}

// ExtractAddress pulls the bare address out of a "Display Name <addr>"
// header value. Values without angle brackets are returned trimmed.
func ExtractAddress(header string) string {
	header = strings.TrimSpace(header)
	open := strings.LastIndex(header, "<")
	if open < 0 {
		return header
	}
	rest := header[open+1:]
	end := strings.Index(rest, ">")
	if end < 0 {
		return header
	}
	return strings.TrimSpace(rest[:end])
}
