// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/community-forum/cliparse"
)

// Message is a single outgoing HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
	// Text is a short plain-text summary, logged by LogSender.
	Text string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender returns an SMTP sender when SMTP is configured and a log sender
// otherwise.
func NewSender(cfg cliparse.Config) Sender {
	if cfg.SMTPConfigured() {
		return &SMTPSender{
			Addr:     net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
			Host:     cfg.SMTPHost,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.EmailFrom,
		}
	}
	slog.Warn("SMTP not configured, verification emails will be logged")
	return LogSender{}
}

// SMTPSender sends mail through an authenticated SMTP relay.
type SMTPSender struct {
	Addr     string
	Host     string
	Username string
	Password string
	From     string
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
	if err := smtp.SendMail(s.Addr, auth, envelopeAddress(s.From), []string{msg.To}, buildMIME(s.From, msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

// LogSender writes messages to the log instead of sending them.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	slog.Info("email (not sent)", "to", msg.To, "subject", msg.Subject, "text", msg.Text)
	return nil
}

// envelopeAddress extracts the bare address from `"Name" <addr>`.
func envelopeAddress(from string) string {
	if i := strings.LastIndex(from, "<"); i >= 0 {
		if j := strings.LastIndex(from, ">"); j > i {
			return from[i+1 : j]
		}
	}
	return from
}

func buildMIME(from string, msg Message) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return b.Bytes()
}

// Purpose selects the wording of a verification email.
type Purpose string

const (
	PurposeSignUp Purpose = "signup"
	PurposeSignIn Purpose = "signin"
)

var verificationTmpl = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html>
  <head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"></head>
  <body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; background-color: #f4f4f5; padding: 40px 20px;">
    <div style="max-width: 400px; margin: 0 auto; background: white; border-radius: 12px; padding: 40px;">
      <h1 style="font-size: 24px; font-weight: 600; text-align: center; margin: 0 0 8px 0; color: #18181b;">{{.Heading}}</h1>
      <p style="color: #71717a; text-align: center; margin: 0 0 32px 0;">{{.Lead}}</p>
      <div style="background: #f4f4f5; border-radius: 8px; padding: 24px; text-align: center; margin-bottom: 32px;">
        <span style="font-family: monospace; font-size: 32px; font-weight: 700; letter-spacing: 8px; color: #18181b;">{{.Code}}</span>
      </div>
      <p style="color: #a1a1aa; font-size: 14px; text-align: center; margin: 0;">
        This code expires in {{.Minutes}} minutes.<br>
        If you didn't request this, you can safely ignore this email.
      </p>
    </div>
    <p style="color: #a1a1aa; font-size: 12px; text-align: center; margin-top: 24px;">&copy; {{.Year}} Community Forum</p>
  </body>
</html>
`))

// VerificationEmail builds the message carrying a one-time code.
func VerificationEmail(to, code string, purpose Purpose, ttl time.Duration, now time.Time) (Message, error) {
	data := struct {
		Heading, Lead, Code string
		Minutes, Year       int
	}{
		Code:    code,
		Minutes: int(ttl.Minutes()),
		Year:    now.Year(),
	}

	subject := "Sign in code - Community Forum"
	data.Heading = "Your sign in code"
	data.Lead = "Enter this code to sign in to your account"
	if purpose == PurposeSignUp {
		subject = "Verify your email - Community Forum"
		data.Heading = "Verify your email"
		data.Lead = "Enter this code to complete your registration"
	}

	var buf bytes.Buffer
	if err := verificationTmpl.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render verification email: %w", err)
	}

	return Message{
		To:      to,
		Subject: subject,
		HTML:    buf.String(),
		Text:    fmt.Sprintf("%s: %s", data.Heading, code),
	}, nil
}
