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

// TicketValidator consumes scanned credentials at the venue. A ticket's
// only transition is Issued -> Used, flipped exactly once; every outcome
// is reported with enough context for an operator decision.
type TicketValidator struct {
	store store.Store
}

func NewTicketValidator(s store.Store) *TicketValidator {
	return &TicketValidator{store: s}
}

// Validate atomically marks the ticket used and returns its details. On
// status.ErrTicketAlreadyUsed the returned details carry the original
// used_at so the operator sees when the first scan happened; state is not
// mutated again. status.ErrTicketNotFound means no ticket matches the
// credential.
func (s *TicketValidator) Validate(ctx context.Context, credential string) (*models.TicketDetails, error) {
	if credential == "" {
		monitoring.TrackValidation("not_found")
		return nil, status.ErrTicketNotFound
	}

	ticket, useErr := s.store.UseTicket(ctx, credential, time.Now().UTC())
	if useErr != nil && !errors.Is(useErr, status.ErrTicketAlreadyUsed) {
		if errors.Is(useErr, status.ErrTicketNotFound) {
			monitoring.TrackValidation("not_found")
		} else {
			// Storage trouble is not a scan outcome; keep it out of the
			// not_found series.
			monitoring.TrackValidation("error")
		}
		return nil, useErr
	}

	details, err := s.store.TicketDetailsByID(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	// UseTicket already reflects the authoritative usage state; keep the
	// details view consistent with it.
	details.IsUsed = ticket.IsUsed
	details.UsedAt = ticket.UsedAt

	if useErr != nil {
		monitoring.TrackValidation("already_used")
		slog.Info("rejected scan of used ticket", "ticket_number", details.TicketNumber, "used_at", ticket.UsedAt)
		return details, useErr
	}

	monitoring.TrackValidation("valid")
	slog.Info("ticket validated", "ticket_number", details.TicketNumber)
	return details, nil
}
