package pbstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"eventtix/internal/status"
	"eventtix/models"
)

func (s *PBStore) TicketsByOrder(ctx context.Context, orderID string) ([]models.Ticket, error) {
	records, err := s.app.FindRecordsByFilter(
		"tickets",
		"order_id = {:orderId}",
		"created",
		-1,
		0,
		dbx.Params{"orderId": orderID},
	)
	if err != nil {
		return nil, fmt.Errorf("list tickets for order %q: %w", orderID, err)
	}

	tickets := make([]models.Ticket, len(records))
	for i, record := range records {
		tickets[i] = *ticketFromRecord(record)
	}
	return tickets, nil
}

func (s *PBStore) TicketNumberExists(ctx context.Context, number string) (bool, error) {
	_, err := s.app.FindFirstRecordByFilter(
		"tickets",
		"ticket_number = {:number}",
		dbx.Params{"number": number},
	)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	default:
		// A transient lookup failure must not read as "number free"; the
		// caller retries or aborts instead of trusting it.
		return false, fmt.Errorf("check ticket number %q: %w", number, err)
	}
}

func (s *PBStore) CreateTicket(ctx context.Context, ticket *models.Ticket) error {
	col, err := s.app.FindCollectionByNameOrId("tickets")
	if err != nil {
		return fmt.Errorf("find tickets collection: %w", err)
	}

	record := core.NewRecord(col)
	record.Set("order_id", ticket.OrderID)
	record.Set("ticket_type_id", ticket.TicketTypeID)
	record.Set("ticket_number", ticket.TicketNumber)
	record.Set("qr_code", ticket.QRCode)
	record.Set("is_used", false)
	if err := s.app.Save(record); err != nil {
		return fmt.Errorf("save ticket %q: %w", ticket.TicketNumber, err)
	}

	ticket.ID = record.Id
	ticket.Created = record.GetDateTime("created").Time()
	return nil
}

// UseTicket flips the usage flag with a single conditional UPDATE, so two
// simultaneous scans of one credential can never both succeed. The losing
// scan re-reads the row to report the original used_at.
func (s *PBStore) UseTicket(ctx context.Context, credential string, now time.Time) (*models.Ticket, error) {
	usedAt, err := types.ParseDateTime(now)
	if err != nil {
		return nil, fmt.Errorf("format used_at: %w", err)
	}

	result, err := s.app.DB().
		NewQuery(`UPDATE tickets
			SET is_used = TRUE, used_at = {:usedAt}
			WHERE qr_code = {:qr} AND is_used = FALSE`).
		Bind(dbx.Params{
			"usedAt": usedAt.String(),
			"qr":     credential,
		}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("use ticket: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("use ticket rows affected: %w", err)
	}

	record, findErr := s.app.FindFirstRecordByFilter(
		"tickets",
		"qr_code = {:qr}",
		dbx.Params{"qr": credential},
	)
	if findErr != nil {
		return nil, status.ErrTicketNotFound
	}

	ticket := ticketFromRecord(record)
	if affected == 0 {
		return ticket, status.ErrTicketAlreadyUsed
	}
	return ticket, nil
}

func (s *PBStore) TicketDetailsByID(ctx context.Context, ticketID string) (*models.TicketDetails, error) {
	ticketRecord, err := s.app.FindRecordById("tickets", ticketID)
	if err != nil {
		return nil, status.ErrTicketNotFound
	}
	ticket := ticketFromRecord(ticketRecord)

	typeRecord, err := s.app.FindRecordById("ticket_types", ticket.TicketTypeID)
	if err != nil {
		return nil, fmt.Errorf("find ticket type for ticket %q: %w", ticketID, err)
	}

	eventRecord, err := s.app.FindRecordById("events", typeRecord.GetString("event_id"))
	if err != nil {
		return nil, fmt.Errorf("find event for ticket %q: %w", ticketID, err)
	}

	orderRecord, err := s.app.FindRecordById("orders", ticket.OrderID)
	if err != nil {
		return nil, fmt.Errorf("find order for ticket %q: %w", ticketID, err)
	}

	return &models.TicketDetails{
		Ticket:         *ticket,
		EventTitle:     eventRecord.GetString("title"),
		EventDate:      eventRecord.GetDateTime("date").Time(),
		EventLocation:  eventRecord.GetString("location"),
		TicketTypeName: typeRecord.GetString("name"),
		Price:          typeRecord.GetFloat("price"),
		OrderDate:      orderRecord.GetDateTime("created").Time(),
	}, nil
}
