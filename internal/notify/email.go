package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"
)

const emailTemplate = `<html>
<body>
<p>New vaccination slots matched your preferences:</p>
<pre>{{.}}</pre>
</body>
</html>`

// SMTPConfig holds the outgoing mail server settings.
type SMTPConfig struct {
	Host      string
	Port      string
	Email     string
	Password  string
	Receivers []string
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Email delivers reports to a list of receivers over SMTP.
type Email struct {
	cfg      SMTPConfig
	tmpl     *template.Template
	sendMail sendMailFunc
}

// NewEmail returns an e-mail messenger for cfg.
func NewEmail(cfg SMTPConfig) (*Email, error) {
	if strings.TrimSpace(cfg.Host) == "" || strings.TrimSpace(cfg.Port) == "" {
		return nil, errors.New("notify: smtp host and port are required")
	}
	if len(cfg.Receivers) == 0 {
		return nil, errors.New("notify: at least one e-mail receiver is required")
	}
	tmpl, err := template.New("Email").Parse(emailTemplate)
	if err != nil {
		return nil, fmt.Errorf("notify: parse email template: %w", err)
	}
	return &Email{cfg: cfg, tmpl: tmpl, sendMail: smtp.SendMail}, nil
}

func (e *Email) Name() string { return "email" }

// Send mails text to every receiver. smtp.SendMail has no context support;
// ctx is only checked before dialing.
func (e *Email) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var body bytes.Buffer
	mimeHeaders := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	fmt.Fprintf(&body, "Subject: ATTENTION!! Covid-19 Vaccine Availability Alert \n%s\n\n", mimeHeaders)
	if err := e.tmpl.Execute(&body, text); err != nil {
		return fmt.Errorf("notify: render email: %w", err)
	}

	auth := smtp.PlainAuth("", e.cfg.Email, e.cfg.Password, e.cfg.Host)
	addr := net.JoinHostPort(e.cfg.Host, e.cfg.Port)
	if err := e.sendMail(addr, auth, e.cfg.Email, e.cfg.Receivers, body.Bytes()); err != nil {
		return fmt.Errorf("notify: send email: %w", err)
	}
	return nil
}
