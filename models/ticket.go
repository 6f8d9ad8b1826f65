package models

import (
	"time"
)

type Ticket struct {
	ID           string     `json:"id"`
	OrderID      string     `json:"order_id"`
	TicketTypeID string     `json:"ticket_type_id"`
	TicketNumber string     `json:"ticket_number"`
	QRCode       string     `json:"-"` // opaque scan credential, never exposed in listings
	IsUsed       bool       `json:"is_used"`
	UsedAt       *time.Time `json:"used_at,omitempty"`
	Created      time.Time  `json:"created"`
}

// TicketDetails is the joined view handed to the validator response and
// the notification sinks: the ticket plus its event/type context.
type TicketDetails struct {
	Ticket
	EventTitle     string    `json:"event_title"`
	EventDate      time.Time `json:"event_date"`
	EventLocation  string    `json:"event_location"`
	TicketTypeName string    `json:"ticket_type_name"`
	Price          float64   `json:"price"`
	OrderDate      time.Time `json:"order_date"`
}
