package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"TrendDigest/internal/config"
	"TrendDigest/internal/ports"
)

// SMTPSender delivers digests to per-language recipient lists over SMTP.
// Each language is sent independently so a failure on one list does not block
// the other.
type SMTPSender struct {
	cfg    config.EmailConfig
	logger *slog.Logger
	send   func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

var _ ports.EmailSender = (*SMTPSender)(nil)

// NewSMTPSender registers SMTP connection settings.
func NewSMTPSender(cfg config.EmailConfig, logger *slog.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, logger: logger, send: smtp.SendMail}
}

// Send delivers bodyEN to the English recipients and bodyCN to the Chinese
// recipients. The result maps language code to delivery success.
func (s *SMTPSender) Send(ctx context.Context, subject, bodyEN, bodyCN string) map[string]bool {
	results := map[string]bool{"en": false, "cn": false}

	fullSubject := subject
	if s.cfg.SubjectPrefix != "" {
		fullSubject = s.cfg.SubjectPrefix + " " + subject
	}

	results["en"] = s.deliver(ctx, s.cfg.RecipientsEN, fullSubject, bodyEN, "en")
	results["cn"] = s.deliver(ctx, s.cfg.RecipientsCN, fullSubject, bodyCN, "cn")
	return results
}

func (s *SMTPSender) deliver(ctx context.Context, recipients []string, subject, body, lang string) bool {
	if len(recipients) == 0 || s.cfg.Host == "" || s.cfg.From == "" {
		return false
	}
	if err := ctx.Err(); err != nil {
		return false
	}

	msg := buildMessage(s.cfg.From, recipients, subject, body)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := s.send(addr, auth, s.cfg.From, recipients, msg); err != nil {
		if s.logger != nil {
			s.logger.Error("email delivery failed", "lang", lang, "error", err)
		}
		return false
	}

	if s.logger != nil {
		s.logger.Info("email delivered", "lang", lang, "recipients", len(recipients))
	}
	return true
}

func buildMessage(from string, to []string, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
