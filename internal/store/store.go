// Package store defines the persistence seam between the ticketing services
// and the backing database. The PocketBase implementation in pbstore carries
// all atomic conditional updates; services only see this interface.
package store

import (
	"context"
	"time"

	"eventtix/models"
)

// Store is the persistence contract for the ticketing core.
//
// CreateOrder and UseTicket are the two operations with concurrency
// obligations: both must be implemented as atomic conditional updates in
// the storage layer itself, never as a read-then-write from the caller.
type Store interface {
	EventByID(ctx context.Context, id string) (*models.Event, error)
	TicketTypeByID(ctx context.Context, id string) (*models.TicketType, error)
	TicketTypesByEvent(ctx context.Context, eventID string) ([]models.TicketType, error)

	// CreateOrder reserves capacity for every item and persists the order
	// with its items in one durable transaction. On any capacity rejection
	// the whole transaction rolls back and the matching sentinel from
	// internal/status is returned; no partial reservation ever survives.
	// On success the order is persisted with status completed and its ID
	// and item IDs are filled in.
	CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error

	OrderByID(ctx context.Context, id string) (*models.Order, error)
	OrderItemsByOrder(ctx context.Context, orderID string) ([]models.OrderItem, error)

	TicketsByOrder(ctx context.Context, orderID string) ([]models.Ticket, error)
	TicketNumberExists(ctx context.Context, number string) (bool, error)
	CreateTicket(ctx context.Context, ticket *models.Ticket) error

	// UseTicket flips is_used false -> true and stamps used_at, atomically.
	// Exactly one concurrent caller per credential observes success. Returns
	// status.ErrTicketNotFound when no ticket matches the credential, or
	// status.ErrTicketAlreadyUsed together with the ticket (carrying the
	// original used_at) when the flip already happened.
	UseTicket(ctx context.Context, credential string, now time.Time) (*models.Ticket, error)

	// TicketDetailsByID resolves the ticket joined with its ticket type and
	// event metadata for validator responses and delivery rendering.
	TicketDetailsByID(ctx context.Context, ticketID string) (*models.TicketDetails, error)
}
