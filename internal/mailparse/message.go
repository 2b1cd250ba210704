// Package mailparse turns raw MIME email bytes into the pieces the pipeline
// works with: header envelopes, the best-available body, naming metadata and
// candidate links.
package mailparse

import (
	"bytes"
	"fmt"
	"net/mail"

	"github.com/jmohr/mailcast/internal/routing"
)

// Headers parses just the header block of a raw message.
func Headers(raw []byte) (mail.Header, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse message headers: %w", err)
	}
	return msg.Header, nil
}

// EnvelopeFromMessage builds a routing envelope from the message headers
// alone. Ingest boundaries that know the SMTP transaction addresses should
// overwrite From and To with those.
func EnvelopeFromMessage(raw []byte) routing.Envelope {
	hdr, err := Headers(raw)
	if err != nil {
		return routing.Envelope{}
	}
	return routing.Envelope{
		From:    firstAddress(hdr, "From"),
		To:      firstAddress(hdr, "To"),
		Subject: hdr.Get("Subject"),
		Date:    hdr.Get("Date"),
		ListID:  hdr.Get("List-Id"),
	}
}

// firstAddress returns the first parseable address for a header, falling
// back to the raw header value when the list does not parse.
func firstAddress(hdr mail.Header, key string) string {
	if list, err := hdr.AddressList(key); err == nil && len(list) > 0 {
		return list[0].Address
	}
	return hdr.Get(key)
}
