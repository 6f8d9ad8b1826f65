package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventtix/internal/notify"
	"eventtix/internal/status"
	"eventtix/internal/store"
	"eventtix/models"
	"eventtix/monitoring"
	"eventtix/utils"
)

// numberAttempts bounds the collision retry loop for ticket numbers. With
// 32 bits of randomness per attempt, exhausting it means the generator is
// broken, not the number space.
const numberAttempts = 5

// TicketIssuer expands a completed order into one ticket per purchased
// unit. Idempotent: re-invoking for the same order only mints the
// shortfall, so a retried request can never duplicate tickets.
type TicketIssuer struct {
	store store.Store
	sinks []notify.Sink
}

func NewTicketIssuer(s store.Store, sinks ...notify.Sink) *TicketIssuer {
	return &TicketIssuer{store: s, sinks: sinks}
}

// Issue mints the missing tickets for a completed order and hands the new
// ones to the notification sinks. When nothing is missing and a recipient
// is supplied, the existing set is resent instead. The returned IDs cover
// every ticket of the order, pre-existing and new. A delivery failure is returned as a
// status.ErrDeliveryFailed wrap together with the full ID list: tickets
// are never un-minted because a sink failed.
func (s *TicketIssuer) Issue(ctx context.Context, orderID, recipientEmail string) ([]string, error) {
	order, err := s.store.OrderByID(ctx, orderID)
	if err != nil {
		return nil, status.ErrOrderNotFound
	}
	if order.Status != models.OrderStatusCompleted {
		return nil, status.ErrOrderNotCompleted
	}

	items, err := s.store.OrderItemsByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", status.ErrIssuanceFailed, err)
	}

	existing, err := s.store.TicketsByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", status.ErrIssuanceFailed, err)
	}

	existingPerType := make(map[string]int)
	ticketIDs := make([]string, 0, len(existing))
	for i := range existing {
		existingPerType[existing[i].TicketTypeID]++
		ticketIDs = append(ticketIDs, existing[i].ID)
	}

	var minted []models.Ticket
	for _, item := range items {
		// Consume the existing count per item: two items can reference the
		// same ticket type, and each unit already minted covers exactly one
		// unit of quantity across the whole order.
		have := existingPerType[item.TicketTypeID]
		if have > item.Quantity {
			have = item.Quantity
		}
		existingPerType[item.TicketTypeID] -= have
		shortfall := item.Quantity - have
		for range shortfall {
			ticket, err := s.mintTicket(ctx, orderID, item.TicketTypeID)
			if err != nil {
				return ticketIDs, fmt.Errorf("%w: %v", status.ErrIssuanceFailed, err)
			}
			minted = append(minted, *ticket)
			ticketIDs = append(ticketIDs, ticket.ID)
		}
	}
	monitoring.TrackIssuedTickets(len(minted))

	toDeliver := minted
	if len(minted) == 0 {
		// Nothing new was minted. An explicit recipient on a reissue call is
		// the retry path for a previously failed delivery, so resend the full
		// ticket set; otherwise there is nothing to do.
		if recipientEmail == "" || len(existing) == 0 {
			return ticketIDs, nil
		}
		toDeliver = existing
	} else {
		slog.Info("tickets issued", "order_id", orderID, "count", len(minted))
	}

	if err := s.deliver(ctx, order, recipientEmail, toDeliver); err != nil {
		slog.Warn("ticket delivery failed", "order_id", orderID, "error", err)
		return ticketIDs, fmt.Errorf("%w: %v", status.ErrDeliveryFailed, err)
	}
	return ticketIDs, nil
}

func (s *TicketIssuer) mintTicket(ctx context.Context, orderID, ticketTypeID string) (*models.Ticket, error) {
	number, err := s.uniqueTicketNumber(ctx)
	if err != nil {
		return nil, err
	}

	credential, err := NewCredential(number, orderID, ticketTypeID)
	if err != nil {
		return nil, err
	}

	ticket := &models.Ticket{
		OrderID:      orderID,
		TicketTypeID: ticketTypeID,
		TicketNumber: number,
		QRCode:       credential.Encode(),
	}
	if err := s.store.CreateTicket(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *TicketIssuer) uniqueTicketNumber(ctx context.Context) (string, error) {
	for range numberAttempts {
		number, err := utils.GenerateTicketNumber()
		if err != nil {
			return "", err
		}
		exists, err := s.store.TicketNumberExists(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", fmt.Errorf("ticket number collisions exhausted %d attempts", numberAttempts)
}

func (s *TicketIssuer) deliver(ctx context.Context, order *models.Order, recipientEmail string, minted []models.Ticket) error {
	details := make([]models.TicketDetails, 0, len(minted))
	for i := range minted {
		d, err := s.store.TicketDetailsByID(ctx, minted[i].ID)
		if err != nil {
			return fmt.Errorf("resolve ticket %s: %w", minted[i].TicketNumber, err)
		}
		details = append(details, *d)
	}

	delivery := &notify.Delivery{
		Order:          order,
		RecipientEmail: recipientEmail,
		Tickets:        details,
	}

	var failed error
	for _, sink := range s.sinks {
		if err := sink.Deliver(ctx, delivery); err != nil {
			failed = err
			slog.Warn("delivery sink failed", "order_id", order.ID, "error", err)
		}
	}
	return failed
}
