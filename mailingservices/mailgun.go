package mailingservices

import (
	"context"
	"fmt"
	"strings"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/pkg/errors"
	"github.com/techagentng/carefront/config"
	"github.com/techagentng/carefront/models"
)

type Mailgun struct {
	Client mailgun.Mailgun
	From   string
}

func (mg *Mailgun) Init(c *config.Config) {
	mg.Client = mailgun.NewMailgun(c.MgDomain, c.MailgunApiKey)
	mg.From = c.MgEmailFrom
	if mg.From == "" {
		mg.From = "CareFront <no-reply@" + c.MgDomain + ">"
	}
}

func (mg *Mailgun) SendSimpleMessage(ctx context.Context, subject, body, recipient string) (string, error) {
	if mg.Client == nil {
		return "", errors.New("mailgun client is not initialised")
	}
	m := mg.Client.NewMessage(mg.From, subject, body, recipient)
	_, id, err := mg.Client.Send(ctx, m)
	if err != nil {
		return "", errors.Wrapf(err, "sending mail to %s", recipient)
	}
	return id, nil
}

// NotifyReply emails the sender of msg the reply the front desk posted.
func (mg *Mailgun) NotifyReply(ctx context.Context, msg *models.Message) error {
	_, err := mg.SendSimpleMessage(ctx, "We replied to your message", replyBody(msg), msg.Email)
	return err
}

func replyBody(msg *models.Message) string {
	var b strings.Builder
	name := strings.TrimSpace(msg.FirstName + " " + msg.LastName)
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hello %s,\n\n", name)
	fmt.Fprintf(&b, "You wrote:\n> %s\n\n", strings.ReplaceAll(msg.Body, "\n", "\n> "))
	fmt.Fprintf(&b, "Our reply:\n%s\n\n", msg.Reply)
	b.WriteString("You can answer by sending another message from the contact page.\n")
	return b.String()
}
