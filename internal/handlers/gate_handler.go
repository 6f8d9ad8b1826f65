package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"eventtix/internal/services"
)

type GateHandler struct {
	app  *pocketbase.PocketBase
	gate *services.AccessGate
}

func NewGateHandler(app *pocketbase.PocketBase, gate *services.AccessGate) *GateHandler {
	return &GateHandler{
		app:  app,
		gate: gate,
	}
}

// VerifyAccess - the purchase UI pre-check for gated ticket types. The
// authoritative check happens again at order submission; this endpoint
// only unlocks quantity selection. Always answers granted true/false,
// never which part of the comparison failed.
func (h *GateHandler) VerifyAccess(e *core.RequestEvent) error {
	ticketTypeID := e.Request.PathValue("ticketTypeId")

	var req struct {
		Password string `json:"password"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	granted := h.gate.Verify(e.Request.Context(), ticketTypeID, req.Password) == nil
	return e.JSON(http.StatusOK, map[string]any{
		"granted": granted,
	})
}
