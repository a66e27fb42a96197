// Package mail delivers outbound messages.  SMTPMailer talks to a relay;
// LogMailer only records what would have been sent and is used when no
// relay is configured.
package mail

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/iliyamo/sabha-admin/internal/config"
)

// sendTimeout bounds one whole SMTP session when the caller sets no deadline.
const sendTimeout = 30 * time.Second

// Message is one plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a Message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// SMTPMailer sends through an SMTP relay, upgrading to TLS when the relay
// offers it and authenticating with PLAIN when a user is set.
type SMTPMailer struct {
	host    string
	from    string
	options []gomail.Option
}

func NewSMTPMailer(cfg config.MailConfig) (*SMTPMailer, error) {
	port, err := strconv.Atoi(cfg.Port)
	if err != nil || port <= 0 {
		return nil, fmt.Errorf("mail: invalid SMTP port %q", cfg.Port)
	}
	opts := []gomail.Option{
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithPort(port),
		gomail.WithTimeout(sendTimeout),
		gomail.WithDialContextFunc(dialWithDeadline),
	}
	if cfg.User != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.User),
			gomail.WithPassword(cfg.Pass),
		)
	}
	return &SMTPMailer{host: cfg.Host, from: cfg.From, options: opts}, nil
}

// dialWithDeadline carries the context deadline onto the connection so a
// relay that accepts but never answers cannot hold the session open.
func dialWithDeadline(ctx context.Context, network, addr string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	if dl, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(dl); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}
	return conn, nil
}

func (m *SMTPMailer) message(msg Message) (*gomail.Msg, error) {
	if strings.ContainsAny(msg.Subject, "\r\n") {
		return nil, fmt.Errorf("mail: invalid subject %q", msg.Subject)
	}
	out := gomail.NewMsg()
	if err := out.From(m.from); err != nil {
		return nil, fmt.Errorf("mail: sender: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("mail: recipient: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(gomail.TypeTextPlain, msg.Body)
	return out, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	out, err := m.message(msg)
	if err != nil {
		return err
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, sendTimeout)
		defer cancel()
	}
	client, err := gomail.NewClient(m.host, m.options...)
	if err != nil {
		return fmt.Errorf("mail: client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("mail: send to %s: %w", msg.To, err)
	}
	return nil
}

// LogMailer logs messages instead of sending them.
type LogMailer struct {
	log *zap.SugaredLogger
}

func NewLogMailer(log *zap.SugaredLogger) *LogMailer { return &LogMailer{log: log} }

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.log.Infow("mail not sent, no SMTP relay configured", "to", msg.To, "subject", msg.Subject)
	return nil
}

// New picks the SMTP mailer when a relay host is configured.
func New(cfg config.MailConfig, log *zap.SugaredLogger) (Sender, error) {
	if cfg.Host == "" {
		return NewLogMailer(log), nil
	}
	return NewSMTPMailer(cfg)
}

// Welcome is the message sent after a registration.
func Welcome(to, name, username, karykarID string) Message {
	return Message{
		To:      to,
		Subject: "Welcome to Sabha Admin",
		Body: fmt.Sprintf("Hello %s,\n\nYour account has been created.\n\nUsername: %s\nKarykar ID: %s\n\nUse your username and the password you were given to sign in.\n",
			name, username, karykarID),
	}
}
