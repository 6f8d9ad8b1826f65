package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/mail"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/mailer"
)

// MailSink emails the purchaser one PDF per ticket through the app's
// configured SMTP client.
type MailSink struct {
	app  core.App
	from mail.Address
}

func NewMailSink(app core.App, fromAddress, fromName string) *MailSink {
	return &MailSink{
		app:  app,
		from: mail.Address{Name: fromName, Address: fromAddress},
	}
}

func (s *MailSink) Deliver(ctx context.Context, d *Delivery) error {
	if d.RecipientEmail == "" {
		// No delivery target supplied with the order; nothing to send.
		return nil
	}

	attachments := make(map[string]io.Reader, len(d.Tickets))
	for i := range d.Tickets {
		ticket := &d.Tickets[i]
		pdf, err := RenderTicketPDF(ticket)
		if err != nil {
			return fmt.Errorf("render ticket %s: %w", ticket.TicketNumber, err)
		}
		attachments[fmt.Sprintf("ticket-%s.pdf", ticket.TicketNumber)] = bytes.NewReader(pdf)
	}

	subject := "Your tickets"
	html := "<p>Thank you for your purchase. Your tickets are attached.</p>"
	if len(d.Tickets) > 0 {
		subject = fmt.Sprintf("Your tickets for %s", d.Tickets[0].EventTitle)
		html = fmt.Sprintf(
			"<p>Thank you for your purchase. Your %d ticket(s) for <strong>%s</strong> are attached.</p>"+
				"<p>Present them at the venue for entry.</p>",
			len(d.Tickets), d.Tickets[0].EventTitle,
		)
	}

	message := &mailer.Message{
		From:        s.from,
		To:          []mail.Address{{Address: d.RecipientEmail}},
		Subject:     subject,
		HTML:        html,
		Attachments: attachments,
	}

	if err := s.app.NewMailClient().Send(message); err != nil {
		return fmt.Errorf("send ticket mail for order %s: %w", d.Order.ID, err)
	}
	return nil
}
