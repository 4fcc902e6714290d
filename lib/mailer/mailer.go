package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/mailer")

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer is the narrow delivery capability the monitoring engine calls.
// The engine only cares whether a send succeeded, provider details stay
// on this side of the interface.
type Mailer interface {
	Send(ctx context.Context, msg Email) error
	Ready() bool
}

// sendTimeout caps one delivery attempt, matching the scraper client's
// request timeout. Without it a silent smtp server would hold the
// calling monitor cycle open forever.
const sendTimeout = time.Second * 30

type SmtpMailer struct {
	config  SmtpConfig
	timeout time.Duration
}

func NewSmtpMailer(config SmtpConfig) SmtpMailer {
	return SmtpMailer{config: config, timeout: sendTimeout}
}

func (m SmtpMailer) Ready() bool {
	return m.config.Server != "" && m.config.EmailAddress != ""
}

func (m SmtpMailer) Send(ctx context.Context, msg Email) error {
	ctx, span := tracer.Start(ctx, "Send")
	defer span.End()

	timeout := m.timeout
	if timeout == 0 {
		timeout = sendTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Course Monitor <%s>", m.config.EmailAddress)
	mail.To = []string{msg.To}
	mail.Subject = msg.Subject
	mail.Text = []byte(msg.Text)
	if msg.HTML != "" {
		mail.HTML = []byte(msg.HTML)
	}

	addr := fmt.Sprintf("%s:%d", m.config.Server, m.config.Port)

	// the smtp dance has no context support, so it runs on the side and
	// the deadline bounds how long we wait for it
	done := make(chan error, 1)
	go func() {
		err := mail.Send(
			addr,
			smtp.PlainAuth("", m.config.EmailAddress, m.config.Password, m.config.Server),
		)
		if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
			err = mail.Send(addr, nil)
		}
		done <- err
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return err
	}

	return nil
}
