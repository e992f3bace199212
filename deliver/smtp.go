package deliver

import (
	"bytes"
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPConfig carries the connection settings for the SMTP transport.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPTransport delivers messages over SMTP. It holds a configured client
// and is safe for concurrent use.
type SMTPTransport struct {
	client *mail.Client
	from   string
}

// NewSMTPTransport connects the transport configuration to a mail client.
// The client dials lazily, on the first send.
func NewSMTPTransport(cfg SMTPConfig) (*SMTPTransport, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("deliver: smtp client: %w", err)
	}
	return &SMTPTransport{client: client, from: cfg.From}, nil
}

// Send delivers one message. The context bounds the whole dial-and-send
// exchange.
func (t *SMTPTransport) Send(ctx context.Context, msg *Message) error {
	m := mail.NewMsg()
	if err := m.From(t.from); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("to address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.TextBody)
	if msg.HTMLBody != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTMLBody)
	}
	if len(msg.Attachment.Data) > 0 {
		if err := m.AttachReader(msg.Attachment.Filename, bytes.NewReader(msg.Attachment.Data)); err != nil {
			return fmt.Errorf("attach %s: %w", msg.Attachment.Filename, err)
		}
	}

	return t.client.DialAndSendWithContext(ctx, m)
}
