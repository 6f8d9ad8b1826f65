package notify

import (
	"context"
	"fmt"

	pubnub "github.com/pubnub/go"
)

// PubNubSink publishes a tickets_issued event on the purchaser's channel so
// an open checkout page can show confirmation without polling.
type PubNubSink struct {
	pubnub *pubnub.PubNub
}

func NewPubNubSink(pn *pubnub.PubNub) *PubNubSink {
	return &PubNubSink{pubnub: pn}
}

func (s *PubNubSink) Deliver(ctx context.Context, d *Delivery) error {
	channel := fmt.Sprintf("order-%s", d.Order.ID)
	if d.Order.CustomerID != "" {
		channel = fmt.Sprintf("customer-%s", d.Order.CustomerID)
	}

	ticketNumbers := make([]string, len(d.Tickets))
	for i := range d.Tickets {
		ticketNumbers[i] = d.Tickets[i].TicketNumber
	}

	message := map[string]any{
		"type":           "tickets_issued",
		"order_id":       d.Order.ID,
		"ticket_numbers": ticketNumbers,
	}
	if len(d.Tickets) > 0 {
		message["event_title"] = d.Tickets[0].EventTitle
	}

	_, _, err := s.pubnub.Publish().
		Channel(channel).
		Message(message).
		Execute()
	if err != nil {
		return fmt.Errorf("publish tickets_issued for order %s: %w", d.Order.ID, err)
	}
	return nil
}
