package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Message is one outgoing HTML email
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Sender delivers email. Implementations return a provider message id on success.
type Sender interface {
	Send(ctx context.Context, msg Message) (messageID string, err error)
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
	Timeout   time.Duration
}

// From formats the configured sender address
func (c SMTPConfig) From() string {
	if c.FromName == "" {
		return c.FromEmail
	}
	return fmt.Sprintf("%s <%s>", c.FromName, c.FromEmail)
}

// Configured reports whether credentials are present
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.Username != "" && c.Password != ""
}

// NewSender returns an SMTPSender, or a LogSender when SMTP credentials are not configured
func NewSender(config SMTPConfig, logger zerolog.Logger) Sender {
	if !config.Configured() {
		logger.Warn().Msg("SMTP credentials not configured - decision emails will only be logged")
		return NewLogSender(logger)
	}
	return NewSMTPSender(config, logger)
}

// SMTPSender sends mail through an SMTP relay
type SMTPSender struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewSMTPSender creates a new SMTPSender
func NewSMTPSender(config SMTPConfig, logger zerolog.Logger) *SMTPSender {
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}
	return &SMTPSender{
		config: config,
		logger: logger,
	}
}

// Send delivers msg. The From field falls back to the configured sender.
func (s *SMTPSender) Send(ctx context.Context, msg Message) (string, error) {
	if msg.From == "" {
		msg.From = s.config.From()
	}
	messageID := fmt.Sprintf("<%s@%s>", uuid.New().String(), s.config.Host)

	raw := buildMessage(msg, messageID)
	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	done := make(chan error, 1)
	go func() {
		if s.config.UseTLS {
			done <- s.sendTLS(serverAddress, auth, msg.To, raw)
			return
		}
		done <- smtp.SendMail(serverAddress, auth, s.config.FromEmail, []string{msg.To}, raw)
	}()

	timer := time.NewTimer(s.config.Timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			s.logger.Error().Err(err).Str("server", serverAddress).Str("to", msg.To).Msg("Failed to send email")
			return "", fmt.Errorf("failed to send email: %w", err)
		}
		return messageID, nil
	case <-timer.C:
		return "", fmt.Errorf("failed to send email: timed out after %s", s.config.Timeout)
	case <-ctx.Done():
		return "", fmt.Errorf("failed to send email: %w", ctx.Err())
	}
}

// sendTLS uses implicit TLS (SMTPS)
func (s *SMTPSender) sendTLS(serverAddress string, auth smtp.Auth, to string, raw []byte) error {
	conn, err := tls.Dial("tcp", serverAddress, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(raw); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return nil
}

// buildMessage renders headers in a fixed order followed by the HTML body
func buildMessage(msg Message, messageID string) []byte {
	var b strings.Builder
	headers := [][2]string{
		{"From", msg.From},
		{"To", msg.To},
		{"Subject", msg.Subject},
		{"Message-ID", messageID},
		{"Date", time.Now().Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}
	for _, h := range headers {
		b.WriteString(h[0])
		b.WriteString(": ")
		b.WriteString(strings.NewReplacer("\r", "", "\n", "").Replace(h[1]))
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}

// LogSender writes messages to the log instead of sending them (development)
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender creates a new LogSender
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs msg and reports success
func (s *LogSender) Send(_ context.Context, msg Message) (string, error) {
	id := "log-" + uuid.New().String()
	s.logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("messageId", id).
		Msg("Email not sent (no SMTP configured)")
	return id, nil
}
