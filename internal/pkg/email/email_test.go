package email

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestBuildMessageStripsHeaderInjection(t *testing.T) {
	raw := string(buildMessage(Message{
		From:    "Hackathon <noreply@example.com>",
		To:      "team@example.com",
		Subject: "Hello\r\nBcc: evil@example.com",
		HTML:    "<p>hi</p>",
	}, "<id@example.com>"))

	if strings.Contains(raw, "\r\nBcc:") {
		t.Fatalf("header injection not stripped: %q", raw)
	}
	if !strings.HasSuffix(raw, "\r\n\r\n<p>hi</p>") {
		t.Errorf("body not separated from headers: %q", raw)
	}
}

func TestNewSenderFallsBackToLog(t *testing.T) {
	s := NewSender(SMTPConfig{Host: "smtp.example.com"}, zerolog.Nop())
	if _, ok := s.(*LogSender); !ok {
		t.Fatalf("expected LogSender, got %T", s)
	}

	id, err := s.Send(context.Background(), Message{To: "a@b.com", Subject: "x"})
	if err != nil || !strings.HasPrefix(id, "log-") {
		t.Errorf("unexpected result %q, %v", id, err)
	}
}

func TestSMTPConfigFrom(t *testing.T) {
	c := SMTPConfig{FromName: "Hackathon", FromEmail: "noreply@example.com"}
	if got := c.From(); got != "Hackathon <noreply@example.com>" {
		t.Errorf("From() = %q", got)
	}
	c.FromName = ""
	if got := c.From(); got != "noreply@example.com" {
		t.Errorf("From() = %q", got)
	}
}
