package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"eventtix/internal/services"
	"eventtix/internal/status"
	"eventtix/models"
)

type ValidatorHandler struct {
	app       *pocketbase.PocketBase
	validator *services.TicketValidator
}

func NewValidatorHandler(app *pocketbase.PocketBase, validator *services.TicketValidator) *ValidatorHandler {
	return &ValidatorHandler{
		app:       app,
		validator: validator,
	}
}

// Validate - the venue-facing scan endpoint. Safe to call repeatedly with
// the same credential: the first call flips the ticket, later calls report
// already_used with the original timestamp.
func (h *ValidatorHandler) Validate(e *core.RequestEvent) error {
	var req struct {
		QRCode string `json:"qr_code"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.QRCode == "" {
		return apis.NewBadRequestError("QR code is required", nil)
	}

	details, err := h.validator.Validate(e.Request.Context(), req.QRCode)
	switch {
	case err == nil:
		return e.JSON(http.StatusOK, map[string]any{
			"valid":      true,
			"message":    "Ticket validated successfully",
			"ticketInfo": ticketInfo(details, details.UsedAt),
		})
	case errors.Is(err, status.ErrTicketAlreadyUsed):
		return e.JSON(http.StatusBadRequest, map[string]any{
			"valid":      false,
			"error":      "Ticket already used",
			"usedAt":     details.UsedAt,
			"ticketInfo": ticketInfo(details, nil),
		})
	case errors.Is(err, status.ErrTicketNotFound):
		return e.JSON(http.StatusNotFound, map[string]any{
			"valid": false,
			"error": "Invalid ticket - not found",
		})
	default:
		return e.JSON(http.StatusInternalServerError, map[string]any{
			"valid": false,
			"error": "Failed to validate ticket",
		})
	}
}

func ticketInfo(details *models.TicketDetails, validatedAt *time.Time) map[string]any {
	info := map[string]any{
		"ticketNumber":   details.TicketNumber,
		"eventTitle":     details.EventTitle,
		"eventDate":      details.EventDate,
		"eventLocation":  details.EventLocation,
		"ticketTypeName": details.TicketTypeName,
	}
	if validatedAt != nil {
		info["validatedAt"] = validatedAt
	}
	return info
}
