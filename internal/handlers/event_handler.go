package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"eventtix/internal/store"
)

type EventHandler struct {
	app   *pocketbase.PocketBase
	store store.Store
}

func NewEventHandler(app *pocketbase.PocketBase, s store.Store) *EventHandler {
	return &EventHandler{
		app:   app,
		store: s,
	}
}

// Availability - remaining capacity summary for the public event page.
// Per-type remaining counts plus the overall remaining under the event
// limit when one is set.
func (h *EventHandler) Availability(e *core.RequestEvent) error {
	eventID := e.Request.PathValue("eventId")

	event, err := h.store.EventByID(e.Request.Context(), eventID)
	if err != nil {
		return apis.NewNotFoundError("Event not found", err)
	}

	ticketTypes, err := h.store.TicketTypesByEvent(e.Request.Context(), eventID)
	if err != nil {
		return apis.NewBadRequestError("Failed to load ticket types", err)
	}

	totalSold := 0
	types := make([]map[string]any, len(ticketTypes))
	for i := range ticketTypes {
		tt := &ticketTypes[i]
		totalSold += tt.Sold
		types[i] = map[string]any{
			"id":        tt.ID,
			"name":      tt.Name,
			"price":     tt.Price,
			"remaining": tt.Remaining(),
			"sold_out":  tt.Remaining() == 0,
			"is_gated":  tt.IsGated,
		}
	}

	response := map[string]any{
		"event_id":     eventID,
		"ticket_types": types,
	}
	if event.OverallTicketLimit != nil {
		remaining := *event.OverallTicketLimit - totalSold
		if remaining < 0 {
			remaining = 0
		}
		response["overall_remaining"] = remaining
	}
	return e.JSON(http.StatusOK, response)
}
