package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"eventtix/internal/status"
	"eventtix/internal/store"
	"eventtix/models"
	"eventtix/monitoring"
)

// maxItemQuantity mirrors the purchase form's upper bound.
const maxItemQuantity = 10000

type OrderItemRequest struct {
	TicketTypeID string `json:"ticket_type_id"`
	Quantity     int    `json:"quantity"`
}

type SubmitOrderRequest struct {
	EventID       string             `json:"event_id"`
	CustomerID    string             `json:"customer_id,omitempty"`
	DeliveryEmail string             `json:"delivery_email,omitempty"`
	Items         []OrderItemRequest `json:"items"`
	// AccessCodes maps gated ticket type IDs to the presented secrets.
	AccessCodes map[string]string `json:"access_codes,omitempty"`
}

type OrderConfirmation struct {
	Order     *models.Order      `json:"order"`
	Items     []models.OrderItem `json:"items"`
	TicketIDs []string           `json:"ticket_ids"`
	// Warning is set when the order completed but issuance or delivery
	// needs a retry; capacity has already been consumed correctly.
	Warning string `json:"warning,omitempty"`
}

// OrderIntake validates purchase requests, snapshots prices, reserves
// capacity and persists the order in one durable unit, then triggers
// ticket issuance.
type OrderIntake struct {
	store  store.Store
	gate   *AccessGate
	issuer *TicketIssuer
}

func NewOrderIntake(s store.Store, gate *AccessGate, issuer *TicketIssuer) *OrderIntake {
	return &OrderIntake{store: s, gate: gate, issuer: issuer}
}

// Submit either returns a confirmation for a completed order or a sentinel
// from internal/status describing the rejection. Rejections leave the
// ledger untouched; an issuance failure after the order completed is
// reported via Warning, never by rolling the order back.
func (s *OrderIntake) Submit(ctx context.Context, req *SubmitOrderRequest) (*OrderConfirmation, error) {
	started := time.Now()
	confirmation, err := s.submit(ctx, req)
	monitoring.ObserveOrderDuration(time.Since(started))
	if err != nil {
		monitoring.TrackOrder(status.Reason(err))
		return nil, err
	}
	monitoring.TrackOrder("accepted")
	return confirmation, nil
}

func (s *OrderIntake) submit(ctx context.Context, req *SubmitOrderRequest) (*OrderConfirmation, error) {
	if len(req.Items) == 0 {
		return nil, status.ErrInvalidQuantity
	}

	if _, err := s.store.EventByID(ctx, req.EventID); err != nil {
		return nil, status.ErrEventNotFound
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 || item.Quantity > maxItemQuantity {
			return nil, status.ErrInvalidQuantity
		}

		ticketType, err := s.store.TicketTypeByID(ctx, item.TicketTypeID)
		if err != nil || ticketType.EventID != req.EventID {
			return nil, status.ErrUnknownTicketType
		}

		// Server-side gate re-check; the UI pre-check is advisory only.
		if err := s.gate.VerifyType(ticketType, req.AccessCodes[ticketType.ID]); err != nil {
			return nil, err
		}

		items = append(items, models.OrderItem{
			TicketTypeID: ticketType.ID,
			Quantity:     item.Quantity,
			PricePerUnit: ticketType.Price, // snapshot, immune to later price edits
		})
	}

	order := &models.Order{
		EventID:     req.EventID,
		CustomerID:  req.CustomerID,
		TotalAmount: models.OrderTotal(items).InexactFloat64(),
		Status:      models.OrderStatusCompleted,
	}

	if err := s.store.CreateOrder(ctx, order, items); err != nil {
		return nil, err
	}
	slog.Info("order accepted", "order_id", order.ID, "event_id", order.EventID, "total", order.TotalAmount)

	confirmation := &OrderConfirmation{Order: order, Items: items}

	ticketIDs, err := s.issuer.Issue(ctx, order.ID, req.DeliveryEmail)
	confirmation.TicketIDs = ticketIDs
	if err != nil {
		// The order stays completed: capacity consumption is the source of
		// truth and tickets can be regenerated idempotently.
		if !errors.Is(err, status.ErrDeliveryFailed) {
			slog.Error("issuance failed for completed order", "order_id", order.ID, "error", err)
			confirmation.Warning = status.Reason(status.ErrIssuanceFailed)
		} else {
			confirmation.Warning = status.Reason(status.ErrDeliveryFailed)
		}
	}

	return confirmation, nil
}
