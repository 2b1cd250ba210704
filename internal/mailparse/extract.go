package mailparse

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// ErrNoContent reports a message with neither an HTML part nor a plain-text
// part anywhere in its MIME tree. It is the only terminal extraction failure;
// everything else degrades to best-effort text.
var ErrNoContent = errors.New("no html or text content found in message")

// maxPartDepth bounds the recursive part walk so a malicious nesting chain
// cannot recurse without limit.
const maxPartDepth = 8

// bodyParts collects the first part of each kind found in document order.
type bodyParts struct {
	html    string
	hasHTML bool
	plain   string
	hasText bool
}

// ExtractBody returns the message body to feed into cleaning: the first
// text/html part in a depth-first walk of the MIME structure, or the first
// text/plain part when no HTML exists. Single-part messages are used
// directly, trusting their declared content type. Undecodable bytes are
// replaced, never fatal.
func ExtractBody(raw []byte) (string, error) {
	parts := extractParts(raw)
	switch {
	case parts.hasHTML:
		return parts.html, nil
	case parts.hasText:
		return parts.plain, nil
	}
	return "", ErrNoContent
}

// PlainText returns the first text/plain part of the message, or "" when the
// message has none. Some adapters prefer rebuilding from the plain part over
// re-cleaning the HTML one.
func PlainText(raw []byte) string {
	parts := extractParts(raw)
	if parts.hasText {
		return parts.plain
	}
	return ""
}

func extractParts(raw []byte) *bodyParts {
	parts := &bodyParts{}
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		// Headerless or otherwise malformed input is treated as a bare text
		// body rather than rejected outright.
		parts.plain, parts.hasText = string(raw), true
		return parts
	}
	collectParts(msg.Header, msg.Body, parts, 0)
	return parts
}

// partHeader is the subset of header access the walk needs; both mail.Header
// and textproto.MIMEHeader satisfy it.
type partHeader interface {
	Get(key string) string
}

// collectParts walks one part. Multipart containers recurse into their
// children in order; text parts are decoded and recorded first-wins per
// kind. Anything else (attachments, images, embedded messages) is skipped.
func collectParts(hdr partHeader, body io.Reader, parts *bodyParts, depth int) {
	if depth > maxPartDepth || (parts.hasHTML && parts.hasText) {
		return
	}
	mediaType, params, err := mime.ParseMediaType(hdr.Get("Content-Type"))
	if err != nil || mediaType == "" {
		// RFC 2045 default for a missing or broken Content-Type.
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return
		}
		mr := multipart.NewReader(body, boundary)
		for {
			part, err := mr.NextPart()
			if err != nil {
				// EOF ends the container; anything else means a truncated or
				// corrupt tree, and we keep whatever was collected so far.
				return
			}
			collectParts(part.Header, part, parts, depth+1)
		}
	}

	switch {
	case strings.EqualFold(mediaType, "text/html") && !parts.hasHTML:
		parts.html, parts.hasHTML = decodePart(hdr, body, params["charset"]), true
	case strings.EqualFold(mediaType, "text/plain") && !parts.hasText:
		parts.plain, parts.hasText = decodePart(hdr, body, params["charset"]), true
	}
}

// decodePart reads a leaf part through its transfer encoding and character
// set. Read errors keep the bytes read so far.
func decodePart(hdr partHeader, body io.Reader, charset string) string {
	data, _ := io.ReadAll(transferDecoder(hdr.Get("Content-Transfer-Encoding"), body))
	return decodeCharset(data, charset)
}

func transferDecoder(encoding string, body io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, body)
	case "quoted-printable":
		return quotedprintable.NewReader(body)
	default:
		// 7bit, 8bit, binary and unknown encodings pass through unchanged.
		return body
	}
}

// decodeCharset converts part bytes to UTF-8 per the declared charset.
// Unknown charsets and decode failures fall back to interpreting the bytes
// as UTF-8, letting later stages replace invalid sequences.
func decodeCharset(data []byte, charset string) string {
	charset = strings.Trim(strings.TrimSpace(charset), `"'`)
	if charset == "" || strings.EqualFold(charset, "utf-8") || strings.EqualFold(charset, "us-ascii") {
		return string(data)
	}
	enc, err := ianaindex.MIME.Encoding(charset)
	if err != nil || enc == nil {
		return string(data)
	}
	decoded, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}
