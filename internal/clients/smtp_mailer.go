package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"
)

const defaultSMTPTimeout = 15 * time.Second

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// Secure dials implicit TLS (usually port 465). Otherwise STARTTLS is
	// used when the server offers it.
	Secure  bool
	Timeout time.Duration
}

type smtpSender struct {
	addr string
	// dialAndSend is swapped in tests.
	dialAndSend func(ctx context.Context, msgs ...*mail.Msg) error
}

func NewSMTPMailer(cfg SMTPConfig, from, to string, logger *logrus.Logger) (*AdminMailer, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSMTPTimeout
	}
	opts := []mail.Option{mail.WithTimeout(timeout)}
	if cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}
	opts = append(opts, mail.WithPort(cfg.Port))
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create smtp client: %w", err)
	}
	sender := &smtpSender{
		addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		dialAndSend: client.DialAndSendWithContext,
	}
	logger.Infof("SMTP mailer configured via %s (implicit TLS: %t), notifying %s", sender.addr, cfg.Secure, to)
	return newAdminMailer(sender, from, to, logger), nil
}

// buildMessage renders msg as multipart/alternative with text first.
func buildMessage(from, to string, msg EmailMessage) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	return m, nil
}

func (s *smtpSender) send(ctx context.Context, from, to string, msg EmailMessage) error {
	if to == "" {
		return fmt.Errorf("recipient email address is empty")
	}
	m, err := buildMessage(from, to, msg)
	if err != nil {
		return err
	}
	if err := s.dialAndSend(ctx, m); err != nil {
		return fmt.Errorf("smtp send via %s: %w", s.addr, err)
	}
	return nil
}
