package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"eventtix/internal/services"
	"eventtix/internal/status"
	"eventtix/internal/store"
)

type OrderHandler struct {
	app    *pocketbase.PocketBase
	intake *services.OrderIntake
	issuer *services.TicketIssuer
	store  store.Store
}

func NewOrderHandler(app *pocketbase.PocketBase, intake *services.OrderIntake, issuer *services.TicketIssuer, s store.Store) *OrderHandler {
	return &OrderHandler{
		app:    app,
		intake: intake,
		issuer: issuer,
		store:  s,
	}
}

// Submit - Order intake entry point
func (h *OrderHandler) Submit(e *core.RequestEvent) error {
	var req services.SubmitOrderRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.EventID == "" || len(req.Items) == 0 {
		return apis.NewBadRequestError("event_id and at least one item are required", nil)
	}

	confirmation, err := h.intake.Submit(e.Request.Context(), &req)
	if err != nil {
		return rejectOrder(e, err)
	}

	response := map[string]any{
		"order_id":     confirmation.Order.ID,
		"status":       confirmation.Order.Status,
		"total_amount": confirmation.Order.TotalAmount,
		"ticket_ids":   confirmation.TicketIDs,
	}
	if confirmation.Warning != "" {
		response["warning"] = confirmation.Warning
	}
	return e.JSON(http.StatusOK, response)
}

// Get - Order details for the tracking screen
func (h *OrderHandler) Get(e *core.RequestEvent) error {
	orderID := e.Request.PathValue("orderId")

	order, err := h.store.OrderByID(e.Request.Context(), orderID)
	if err != nil {
		return apis.NewNotFoundError("Order not found", err)
	}
	items, err := h.store.OrderItemsByOrder(e.Request.Context(), orderID)
	if err != nil {
		return apis.NewBadRequestError("Failed to load order items", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"order": order,
		"items": items,
	})
}

// ListTickets - Tickets minted for an order
func (h *OrderHandler) ListTickets(e *core.RequestEvent) error {
	orderID := e.Request.PathValue("orderId")

	if _, err := h.store.OrderByID(e.Request.Context(), orderID); err != nil {
		return apis.NewNotFoundError("Order not found", err)
	}
	tickets, err := h.store.TicketsByOrder(e.Request.Context(), orderID)
	if err != nil {
		return apis.NewBadRequestError("Failed to load tickets", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"order_id": orderID,
		"tickets":  tickets,
	})
}

// Reissue - Retry issuance for a completed order. Idempotent: only the
// shortfall is minted.
func (h *OrderHandler) Reissue(e *core.RequestEvent) error {
	orderID := e.Request.PathValue("orderId")

	var req struct {
		DeliveryEmail string `json:"delivery_email,omitempty"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	ticketIDs, err := h.issuer.Issue(e.Request.Context(), orderID, req.DeliveryEmail)
	if err != nil && !errors.Is(err, status.ErrDeliveryFailed) {
		return rejectOrder(e, err)
	}

	response := map[string]any{
		"order_id":   orderID,
		"ticket_ids": ticketIDs,
	}
	if err != nil {
		response["warning"] = status.Reason(err)
	}
	return e.JSON(http.StatusOK, response)
}

// rejectOrder turns a status sentinel into the structured rejection the
// purchase flow displays: a specific human message plus a machine code.
func rejectOrder(e *core.RequestEvent, err error) error {
	reason := status.Reason(err)

	message := "Failed to process order"
	code := http.StatusBadRequest
	switch reason {
	case "insufficient_type_capacity":
		message = "Not enough tickets remaining for the selected ticket type"
		code = http.StatusConflict
	case "insufficient_event_capacity":
		message = "Order exceeds the overall ticket limit for this event"
		code = http.StatusConflict
	case "access_denied":
		message = "Incorrect password"
		code = http.StatusForbidden
	case "invalid_request":
		message = "Invalid ticket selection"
	case "order_not_found":
		message = "Order not found"
		code = http.StatusNotFound
	case "order_not_completed":
		message = "Tickets can only be issued for completed orders"
	case "issuance_failed":
		message = "Ticket issuance failed; the order is completed and issuance can be retried"
		code = http.StatusInternalServerError
	case "internal":
		code = http.StatusInternalServerError
	}

	return e.JSON(code, map[string]any{
		"error":  message,
		"reason": reason,
	})
}
