// Package pbstore implements store.Store on top of PocketBase's record API
// and raw dbx queries. Everything with concurrency obligations (capacity
// reservation, ticket usage flip) is expressed as a conditional UPDATE so
// the database, not the caller, decides the outcome.
package pbstore

import (
	"context"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"eventtix/internal/status"
	"eventtix/models"
)

type PBStore struct {
	app core.App
}

func New(app core.App) *PBStore {
	return &PBStore{app: app}
}

func (s *PBStore) EventByID(ctx context.Context, id string) (*models.Event, error) {
	record, err := s.app.FindRecordById("events", id)
	if err != nil {
		return nil, fmt.Errorf("find event %q: %w", id, err)
	}
	return eventFromRecord(record), nil
}

func (s *PBStore) TicketTypeByID(ctx context.Context, id string) (*models.TicketType, error) {
	record, err := s.app.FindRecordById("ticket_types", id)
	if err != nil {
		return nil, fmt.Errorf("find ticket type %q: %w", id, err)
	}
	return ticketTypeFromRecord(record), nil
}

func (s *PBStore) TicketTypesByEvent(ctx context.Context, eventID string) ([]models.TicketType, error) {
	records, err := s.app.FindRecordsByFilter(
		"ticket_types",
		"event_id = {:eventId}",
		"created",
		-1,
		0,
		dbx.Params{"eventId": eventID},
	)
	if err != nil {
		return nil, fmt.Errorf("list ticket types for event %q: %w", eventID, err)
	}

	types := make([]models.TicketType, len(records))
	for i, record := range records {
		types[i] = *ticketTypeFromRecord(record)
	}
	return types, nil
}

func (s *PBStore) OrderByID(ctx context.Context, id string) (*models.Order, error) {
	record, err := s.app.FindRecordById("orders", id)
	if err != nil {
		return nil, status.ErrOrderNotFound
	}
	return orderFromRecord(record), nil
}

func (s *PBStore) OrderItemsByOrder(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	records, err := s.app.FindRecordsByFilter(
		"order_items",
		"order_id = {:orderId}",
		"created",
		-1,
		0,
		dbx.Params{"orderId": orderID},
	)
	if err != nil {
		return nil, fmt.Errorf("list items for order %q: %w", orderID, err)
	}

	items := make([]models.OrderItem, len(records))
	for i, record := range records {
		items[i] = *orderItemFromRecord(record)
	}
	return items, nil
}

func eventFromRecord(record *core.Record) *models.Event {
	event := &models.Event{
		ID:          record.Id,
		Title:       record.GetString("title"),
		Description: record.GetString("description"),
		Date:        record.GetDateTime("date").Time(),
		Location:    record.GetString("location"),
		UserID:      record.GetString("user_id"),
		Created:     record.GetDateTime("created").Time(),
		Updated:     record.GetDateTime("updated").Time(),
	}
	if limit := record.GetInt("overall_ticket_limit"); limit > 0 {
		event.OverallTicketLimit = &limit
	}
	return event
}

func ticketTypeFromRecord(record *core.Record) *models.TicketType {
	return &models.TicketType{
		ID:           record.Id,
		EventID:      record.GetString("event_id"),
		Name:         record.GetString("name"),
		Price:        record.GetFloat("price"),
		Capacity:     record.GetInt("capacity"),
		Sold:         record.GetInt("sold"),
		Description:  record.GetString("description"),
		IsGated:      record.GetBool("is_gated"),
		PasswordHash: record.GetString("password_hash"),
		Created:      record.GetDateTime("created").Time(),
	}
}

func orderFromRecord(record *core.Record) *models.Order {
	return &models.Order{
		ID:          record.Id,
		EventID:     record.GetString("event_id"),
		CustomerID:  record.GetString("customer_id"),
		TotalAmount: record.GetFloat("total_amount"),
		Status:      record.GetString("status"),
		Created:     record.GetDateTime("created").Time(),
	}
}

func orderItemFromRecord(record *core.Record) *models.OrderItem {
	return &models.OrderItem{
		ID:           record.Id,
		OrderID:      record.GetString("order_id"),
		TicketTypeID: record.GetString("ticket_type_id"),
		Quantity:     record.GetInt("quantity"),
		PricePerUnit: record.GetFloat("price_per_unit"),
	}
}

func ticketFromRecord(record *core.Record) *models.Ticket {
	ticket := &models.Ticket{
		ID:           record.Id,
		OrderID:      record.GetString("order_id"),
		TicketTypeID: record.GetString("ticket_type_id"),
		TicketNumber: record.GetString("ticket_number"),
		QRCode:       record.GetString("qr_code"),
		IsUsed:       record.GetBool("is_used"),
		Created:      record.GetDateTime("created").Time(),
	}
	if usedAt := record.GetDateTime("used_at"); !usedAt.IsZero() {
		t := usedAt.Time()
		ticket.UsedAt = &t
	}
	return ticket
}
