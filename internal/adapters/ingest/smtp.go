// Package ingest accepts newsletter mail pushed directly over SMTP, for
// deployments that point an MX record or a Postfix transport at the
// pipeline instead of the Cloudflare email worker.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jmohr/mailcast/internal/allowlist"
	"github.com/jmohr/mailcast/internal/core"
	"github.com/jmohr/mailcast/internal/mailparse"
)

// SMTPIngest runs a small SMTP server. Accepted messages are archived to
// the object store under inbound/ and processed inline.
type SMTPIngest struct {
	service         *core.PipelineService
	objects         core.ObjectStore
	allow           *allowlist.Checker
	logger          *zap.Logger
	listenAddr      string
	domain          string
	maxMessageBytes int64
	processTimeout  time.Duration
	server          *smtp.Server
}

// NewSMTPIngest creates a new SMTP ingest service
func NewSMTPIngest(
	service *core.PipelineService,
	objects core.ObjectStore,
	allow *allowlist.Checker,
	logger *zap.Logger,
	listenAddr string,
	domain string,
	maxMessageBytes int64,
) *SMTPIngest {
	if domain == "" {
		domain = "localhost"
	}
	if maxMessageBytes <= 0 {
		maxMessageBytes = 30 * 1024 * 1024 // 30MB
	}
	return &SMTPIngest{
		service:         service,
		objects:         objects,
		allow:           allow,
		logger:          logger,
		listenAddr:      listenAddr,
		domain:          domain,
		maxMessageBytes: maxMessageBytes,
		processTimeout:  5 * time.Minute,
	}
}

// Start starts the SMTP server
func (g *SMTPIngest) Start() error {
	g.server = smtp.NewServer(&smtpBackend{ingest: g})

	g.server.Addr = g.listenAddr
	g.server.Domain = g.domain
	g.server.ReadTimeout = 30 * time.Second
	g.server.WriteTimeout = 30 * time.Second
	g.server.MaxMessageBytes = g.maxMessageBytes
	g.server.MaxRecipients = 50

	g.logger.Info("SMTP ingest starting", zap.String("address", g.listenAddr))

	go func() {
		if err := g.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				g.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP server
func (g *SMTPIngest) Stop() error {
	if g.server != nil {
		return g.server.Close()
	}
	return nil
}

// archiveKey names the stored copy of an inbound message.
func archiveKey(now time.Time) string {
	return fmt.Sprintf("inbound/%s-%s.eml", now.UTC().Format("2006-01-02"), uuid.NewString())
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	ingest *SMTPIngest
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		ingest:     b.ingest,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	ingest     *SMTPIngest
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for ingest)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address, rejecting senders the allowlist refuses
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	if !s.ingest.allow.Allowed(from) {
		s.ingest.logger.Warn("Rejecting sender not on allowlist", zap.String("sender", from))
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 7, 1},
			Message:      "Sender not allowed",
		}
	}
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data archives the message and runs it through the pipeline
func (s *smtpSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.ingest.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.ingest.processTimeout)
	defer cancel()

	key := archiveKey(time.Now())
	if err := s.ingest.objects.Put(ctx, key, raw, "message/rfc822"); err != nil {
		s.ingest.logger.Error("Failed to archive inbound message",
			zap.String("key", key),
			zap.Error(err))
		return tempError("storage unavailable")
	}

	env := core.EnvelopeFor(raw)
	if env.From == "" {
		env.From = s.sender
	}
	if len(s.recipients) > 0 {
		// The transport recipient carries any +tag subaddress that the To
		// header may hide behind an alias.
		env.To = s.recipients[0]
	}

	result, err := s.ingest.service.ProcessMessage(ctx, raw, env, key)
	if err != nil {
		if errors.Is(err, mailparse.ErrNoContent) {
			// Retrying will not grow a text part. Accept the message; the
			// archived copy keeps it inspectable.
			s.ingest.logger.Warn("Inbound message has no usable content",
				zap.String("key", key),
				zap.String("sender", s.sender))
			return nil
		}
		s.ingest.logger.Error("Failed to process inbound message",
			zap.String("key", key),
			zap.String("sender", s.sender),
			zap.Error(err))
		return tempError("processing failed")
	}

	if result.Skipped {
		s.ingest.logger.Info("Inbound message skipped",
			zap.String("key", key),
			zap.String("reason", result.SkipReason))
		return nil
	}
	s.ingest.logger.Info("Inbound message published",
		zap.String("key", key),
		zap.String("title", result.Episode.Title))
	return nil
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}

// tempError maps an internal failure to a transient SMTP reply so the
// upstream MTA queues the message and retries.
func tempError(msg string) *smtp.SMTPError {
	return &smtp.SMTPError{
		Code:         451,
		EnhancedCode: smtp.EnhancedCode{4, 3, 0},
		Message:      msg,
	}
}
