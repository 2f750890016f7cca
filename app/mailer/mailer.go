// Package mailer delivers transactional email over an authenticated TLS SMTP relay.
package mailer

import (
	"context"
	"errors"
	"fmt"
	netmail "net/mail"
	"strings"

	"github.com/vibast-solutions/ms-go-wellness/config"

	"github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"
)

const implicitTLSPort = 465

var (
	ErrInvalidConfig    = errors.New("invalid mail configuration")
	ErrInvalidRecipient = errors.New("invalid recipient address")
	ErrDelivery         = errors.New("mail delivery failed")
)

type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// sendFunc is the network seam: it dials the relay and delivers one message.
type sendFunc func(ctx context.Context, cfg config.SMTPConfig, msg *mail.Msg) error

type SMTPMailer struct {
	cfg  config.SMTPConfig
	send sendFunc
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: dialAndSend}
}

// Send validates the configuration before touching the network. Every failure
// is returned as an error wrapping one of the package sentinels.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := m.validateConfig(); err != nil {
		return err
	}
	if _, err := netmail.ParseAddress(to); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecipient, err)
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.FromEmail); err != nil {
		return fmt.Errorf("%w: sender: %v", ErrInvalidConfig, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecipient, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := m.send(ctx, m.cfg, msg); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"smtp_host": m.cfg.Host,
			"smtp_port": m.cfg.Port,
		}).Error("SMTP delivery failed")
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	logrus.WithField("subject", subject).Debug("Mail delivered")
	return nil
}

func (m *SMTPMailer) validateConfig() error {
	if strings.TrimSpace(m.cfg.Host) == "" {
		return fmt.Errorf("%w: SMTP server is not configured", ErrInvalidConfig)
	}
	if m.cfg.Port <= 0 || m.cfg.Port > 65535 {
		return fmt.Errorf("%w: SMTP port %d out of range", ErrInvalidConfig, m.cfg.Port)
	}
	if _, err := netmail.ParseAddress(m.cfg.FromEmail); err != nil {
		return fmt.Errorf("%w: sender address %q: %v", ErrInvalidConfig, m.cfg.FromEmail, err)
	}
	return nil
}

func dialAndSend(ctx context.Context, cfg config.SMTPConfig, msg *mail.Msg) error {
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// newClient applies the port policies before WithPort; they rewrite port 25 otherwise.
func newClient(cfg config.SMTPConfig) (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	}
	if cfg.Port == implicitTLSPort {
		opts = append(opts, mail.WithSSLPort(false))
	}
	opts = append(opts,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	)
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}

	return mail.NewClient(cfg.Host, opts...)
}
