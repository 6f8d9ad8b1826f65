package services

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"eventtix/internal/status"
	"eventtix/internal/store"
	"eventtix/models"
)

// AccessGate verifies presented secrets for gated ticket types. The UI
// consults it before quantity selection; OrderIntake re-checks it at
// submission time so a client bypassing the UI gate still gets denied.
type AccessGate struct {
	store store.Store
}

func NewAccessGate(s store.Store) *AccessGate {
	return &AccessGate{store: s}
}

// Verify grants access for ungated types unconditionally and compares the
// presented secret against the stored bcrypt hash otherwise. The secret is
// never logged or echoed back.
func (g *AccessGate) Verify(ctx context.Context, ticketTypeID, presentedSecret string) error {
	ticketType, err := g.store.TicketTypeByID(ctx, ticketTypeID)
	if err != nil {
		return status.ErrUnknownTicketType
	}
	return g.VerifyType(ticketType, presentedSecret)
}

// VerifyType is the lookup-free variant used by OrderIntake, which already
// holds the ticket type.
func (g *AccessGate) VerifyType(ticketType *models.TicketType, presentedSecret string) error {
	if !ticketType.IsGated {
		return nil
	}
	if ticketType.PasswordHash == "" {
		// Gated without a stored credential: nothing can ever match.
		return status.ErrAccessDenied
	}
	if err := bcrypt.CompareHashAndPassword([]byte(ticketType.PasswordHash), []byte(presentedSecret)); err != nil {
		return status.ErrAccessDenied
	}
	return nil
}

// HashAccessCode produces the one-way hash stored for a gated ticket type.
// Plaintext access codes must never reach disk.
func HashAccessCode(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash access code: %w", err)
	}
	return string(hash), nil
}
