package mailer

import (
	"fmt"
	"log"

	mail "github.com/wneessen/go-mail"

	"github.com/foliohq/folio/internal/models"
)

// Mailer sends contact-form notifications to the portfolio owner.
// With no SMTP host configured it is a logging no-op, so local setups
// work without a mail server. Failures never propagate to the caller;
// message persistence does not depend on delivery.
type Mailer struct {
	host string
	port int
	user string
	pass string
	from string
}

func New(host string, port int, user, pass, from string) *Mailer {
	return &Mailer{host: host, port: port, user: user, pass: pass, from: from}
}

// NotifyOwner emails the owner about a new contact message. Call it from a
// goroutine; it blocks on SMTP delivery.
func (m *Mailer) NotifyOwner(owner *models.Portfolio, msg *models.Message, v *models.Visitor) {
	if m.host == "" {
		log.Printf("mailer: no SMTP host configured, skipping notification for message %d", msg.ID)
		return
	}
	if owner.OwnerEmail == "" {
		log.Printf("mailer: portfolio has no owner email, skipping notification for message %d", msg.ID)
		return
	}

	email := mail.NewMsg()
	if err := email.From(m.from); err != nil {
		log.Printf("mailer: invalid from address %q: %v", m.from, err)
		return
	}
	if err := email.To(owner.OwnerEmail); err != nil {
		log.Printf("mailer: invalid owner address %q: %v", owner.OwnerEmail, err)
		return
	}

	email.Subject(fmt.Sprintf("New portfolio message from %s", msg.SenderName))
	email.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"From: %s <%s>\nLocation: %s, %s\n\n%s\n",
		msg.SenderName, msg.SenderEmail, v.City, v.Country, msg.Body,
	))

	opts := []mail.Option{mail.WithPort(m.port)}
	if m.user != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.user),
			mail.WithPassword(m.pass),
		)
	}

	client, err := mail.NewClient(m.host, opts...)
	if err != nil {
		log.Printf("mailer: client setup failed: %v", err)
		return
	}
	if err := client.DialAndSend(email); err != nil {
		log.Printf("mailer: send failed for message %d: %v", msg.ID, err)
	}
}
