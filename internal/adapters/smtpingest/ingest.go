// Package smtpingest runs an SMTP listener that feeds incoming mail
// through the triage pipeline. It acts as a tap: messages are analyzed
// and recorded, never rejected or forwarded.
package smtpingest

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/mail"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/quickemail/email-triage/internal/core"
	"go.uber.org/zap"
)

// Settings carries the SMTP listener configuration
type Settings struct {
	ListenAddress   string
	Domain          string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxMessageBytes int
}

// Ingest is the SMTP frontend for the triage service
type Ingest struct {
	service  *core.TriageService
	settings Settings
	logger   *zap.Logger
	server   *smtp.Server
}

// NewIngest creates a new SMTP ingest listener
func NewIngest(service *core.TriageService, settings Settings, logger *zap.Logger) *Ingest {
	return &Ingest{
		service:  service,
		settings: settings,
		logger:   logger,
	}
}

// Start starts the SMTP server in a background goroutine
func (i *Ingest) Start() error {
	i.server = smtp.NewServer(&smtpBackend{ingest: i})

	i.server.Addr = i.settings.ListenAddress
	i.server.Domain = i.settings.Domain
	i.server.ReadTimeout = i.settings.ReadTimeout
	i.server.WriteTimeout = i.settings.WriteTimeout
	i.server.MaxMessageBytes = int64(i.settings.MaxMessageBytes)
	i.server.MaxRecipients = 50
	i.server.AllowInsecureAuth = true

	i.logger.Info("SMTP ingest starting", zap.String("address", i.settings.ListenAddress))

	go func() {
		if err := i.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				i.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP server
func (i *Ingest) Stop() error {
	if i.server != nil {
		return i.server.Close()
	}
	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	ingest *Ingest
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		ingest:     b.ingest,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	ingest     *Ingest
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for a tap)
func (s *smtpSession) AuthPlain(_, _ string) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data parses the message, runs the triage pipeline on its subject and
// text content, and accepts the message regardless of the outcome
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.ingest.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	msg, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		s.ingest.logger.Error("Failed to parse email message", zap.Error(err))
		return err
	}

	subject := decodeHeader(msg.Header.Get("Subject"))
	body, err := extractTextContent(msg)
	if err != nil {
		s.ingest.logger.Error("Failed to extract text content", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	outcome := s.ingest.service.Analyze(ctx, &core.ClassificationRequest{
		SenderEmail: s.sender,
		Subject:     subject,
		Body:        body,
	})

	s.ingest.logger.Info("Ingested email",
		zap.String("from", s.sender),
		zap.Int("recipients", len(s.recipients)),
		zap.String("category", string(outcome.Result.Category)),
		zap.Float64("confidence", outcome.Result.Confidence),
		zap.String("source", string(outcome.Result.Source)))

	return nil
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}

// decodeHeader decodes RFC 2047 encoded words, returning the raw value
// when decoding fails
func decodeHeader(value string) string {
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}
