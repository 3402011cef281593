package email

import (
	"context"
	"net/smtp"
	"strings"
	"testing"

	"TrendDigest/internal/config"
)

func TestSendDeliversPerLanguage(t *testing.T) {
	t.Parallel()

	cfg := config.EmailConfig{
		Enabled:       true,
		SubjectPrefix: "[LLM Update]",
		Host:          "smtp.example.com",
		Port:          587,
		Username:      "bot",
		Password:      "secret",
		From:          "bot@example.com",
		RecipientsEN:  []string{"en@example.com"},
		RecipientsCN:  []string{"cn@example.com"},
	}

	type delivery struct {
		addr string
		to   []string
		msg  string
	}
	var deliveries []delivery

	s := NewSMTPSender(cfg, nil)
	s.send = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		deliveries = append(deliveries, delivery{addr: addr, to: to, msg: string(msg)})
		return nil
	}

	results := s.Send(context.Background(), "Daily Digest", "english body", "chinese body")

	if !results["en"] || !results["cn"] {
		t.Fatalf("expected both deliveries to succeed: %v", results)
	}
	if len(deliveries) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(deliveries))
	}

	en := deliveries[0]
	if en.addr != "smtp.example.com:587" {
		t.Fatalf("unexpected addr: %s", en.addr)
	}
	if len(en.to) != 1 || en.to[0] != "en@example.com" {
		t.Fatalf("unexpected recipients: %v", en.to)
	}
	if !strings.Contains(en.msg, "Subject: [LLM Update] Daily Digest\r\n") {
		t.Fatalf("subject prefix missing:\n%s", en.msg)
	}
	if !strings.Contains(en.msg, "english body") {
		t.Fatalf("english body missing:\n%s", en.msg)
	}
	if !strings.Contains(deliveries[1].msg, "chinese body") {
		t.Fatalf("chinese body missing:\n%s", deliveries[1].msg)
	}
}

func TestSendSkipsEmptyRecipientLists(t *testing.T) {
	t.Parallel()

	cfg := config.EmailConfig{
		Host:         "smtp.example.com",
		Port:         587,
		From:         "bot@example.com",
		RecipientsEN: []string{"en@example.com"},
	}

	calls := 0
	s := NewSMTPSender(cfg, nil)
	s.send = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		calls++
		return nil
	}

	results := s.Send(context.Background(), "Digest", "en", "cn")
	if !results["en"] || results["cn"] {
		t.Fatalf("unexpected results: %v", results)
	}
	if calls != 1 {
		t.Fatalf("expected 1 delivery, got %d", calls)
	}
}

func TestSendFailureReported(t *testing.T) {
	t.Parallel()

	cfg := config.EmailConfig{
		Host:         "smtp.example.com",
		From:         "bot@example.com",
		RecipientsEN: []string{"en@example.com"},
	}

	s := NewSMTPSender(cfg, nil)
	s.send = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		return context.DeadlineExceeded
	}

	if results := s.Send(context.Background(), "Digest", "en", "cn"); results["en"] {
		t.Fatalf("expected failed delivery reported: %v", results)
	}
}

func TestBuildMessageHeaders(t *testing.T) {
	t.Parallel()

	msg := string(buildMessage("bot@example.com", []string{"a@x.com", "b@x.com"}, "Hello", "body"))

	for _, want := range []string{
		"From: bot@example.com\r\n",
		"To: a@x.com, b@x.com\r\n",
		"MIME-Version: 1.0\r\n",
		"Content-Type: text/plain; charset=\"utf-8\"\r\n",
		"\r\n\r\nbody",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}
