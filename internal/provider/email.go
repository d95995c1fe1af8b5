package provider

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nexcrm/outreach-gateway/internal/config"
	"github.com/nexcrm/outreach-gateway/internal/model"
)

// SMTPEmail delivers email through a mail-relay collaborator. Relay problems
// are delivery failures; missing relay settings are configuration errors.
type SMTPEmail struct {
	host     string
	port     int
	username string
	password string
	from     string
	timeout  time.Duration

	// sendMail is swapped in tests; defaults to a dial+smtp round trip.
	sendMail func(ctx context.Context, from string, to []string, msg []byte) error
}

var _ Provider = (*SMTPEmail)(nil)

func NewSMTPEmail(cfg config.EmailConfig) (*SMTPEmail, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, model.NewConfigurationError("channels.email", "smtp host is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, model.NewConfigurationError("channels.email", "invalid smtp port %d", cfg.Port)
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, model.NewConfigurationError("channels.email", "from address is required")
	}

	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	p := &SMTPEmail{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     strings.TrimSpace(cfg.From),
		timeout:  timeout,
	}
	p.sendMail = p.relaySend
	return p, nil
}

func (p *SMTPEmail) Key() string { return DriverSMTP }

func (p *SMTPEmail) Send(ctx context.Context, msg model.OutgoingMessage) model.SendResult {
	if strings.TrimSpace(msg.Body) == "" {
		return model.SendFailed(DriverSMTP, "empty message body")
	}
	if strings.TrimSpace(msg.To) == "" {
		return model.SendFailed(DriverSMTP, "missing recipient")
	}

	from := msg.From
	if from == "" {
		from = p.from
	}

	// correlation id doubles as the provider message id; SMTP gives us none
	corrID := uuid.NewString()
	raw := buildMIME(from, msg.To, msg.Subject, msg.Body, corrID)

	if err := p.sendMail(ctx, from, []string{msg.To}, raw); err != nil {
		return model.SendFailed(DriverSMTP, err.Error())
	}

	return model.SendOK(DriverSMTP, corrID)
}

// relaySend performs one SMTP round trip with a bounded dial timeout.
func (p *SMTPEmail) relaySend(ctx context.Context, from string, to []string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", p.host, p.port)

	d := net.Dialer{Timeout: p.timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	_ = conn.SetDeadline(time.Now().Add(p.timeout))

	c, err := smtp.NewClient(conn, p.host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: p.host}); err != nil {
			return err
		}
	}
	if p.username != "" {
		auth := smtp.PlainAuth("", p.username, p.password, p.host)
		if err := c.Auth(auth); err != nil {
			return err
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func buildMIME(from, to, subject, body, corrID string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("X-Correlation-ID: " + corrID + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}
