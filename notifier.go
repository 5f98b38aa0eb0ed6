package userauth

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// LogNotifier writes the token to the log instead of delivering it. Useful
// in development where no mail relay is configured.
type LogNotifier struct {
	Logger Logger
}

func (n LogNotifier) Send(ctx context.Context, recipient, token, template string) error {
	logger := n.Logger
	if logger == nil {
		logger = defLogger{}
	}

	logger.Info("====== SENDING TOKEN NOTIFICATION =======")
	logger.Info("to: %s", recipient)
	logger.Info("template: %s", template)
	logger.Info("token: %s", token)
	return nil
}

// SMTPNotifier delivers mission tokens by email over a plain SMTP relay.
type SMTPNotifier struct {
	Addr    string
	From    string
	Auth    smtp.Auth
	Subject string
}

func NewSMTPNotifier(addr, from string, auth smtp.Auth) *SMTPNotifier {
	return &SMTPNotifier{
		Addr:    addr,
		From:    from,
		Auth:    auth,
		Subject: "Your multi-factor authentication token",
	}
}

func (n *SMTPNotifier) Send(ctx context.Context, recipient, token, template string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", n.From)
	fmt.Fprintf(&msg, "To: %s\r\n", recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", n.Subject)
	msg.WriteString("\r\n")
	msg.WriteString(renderTokenTemplate(template, token))

	if err := smtp.SendMail(n.Addr, n.Auth, n.From, []string{recipient}, []byte(msg.String())); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "smtp delivery failed").
			WithMetadata(map[string]any{"recipient": recipient})
	}

	return nil
}

func renderTokenTemplate(template, token string) string {
	switch template {
	case MFATokenTemplate:
		return fmt.Sprintf("Use this token to complete your request:\r\n\r\n%s\r\n", token)
	default:
		return token
	}
}
