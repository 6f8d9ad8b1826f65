// Package notify delivers issued tickets to purchasers. Delivery is a
// best-effort collaborator: failures are reported upward as warnings and
// never affect ledger or ticket state.
package notify

import (
	"context"

	"eventtix/models"
)

// Delivery carries everything a sink needs to render a human-facing ticket.
type Delivery struct {
	Order          *models.Order
	RecipientEmail string
	Tickets        []models.TicketDetails
}

type Sink interface {
	Deliver(ctx context.Context, d *Delivery) error
}

// NopSink discards deliveries. Used in tests and when no delivery channel
// is configured.
type NopSink struct{}

func (NopSink) Deliver(ctx context.Context, d *Delivery) error { return nil }
