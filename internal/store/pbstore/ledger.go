package pbstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"eventtix/internal/status"
	"eventtix/models"
)

// CreateOrder reserves capacity and persists the order in one transaction.
//
// The per-type reservation is a single conditional UPDATE: the capacity
// check and the increment happen in one statement evaluated by SQLite, so
// two racing orders for the last unit can never both pass. The event-level
// limit is re-read inside the same write transaction, which SQLite
// serializes, making the cross-type sum check equally race-free.
func (s *PBStore) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	return s.app.RunInTransaction(func(txApp core.App) error {
		for i := range items {
			if err := reserveUnits(txApp, order.EventID, &items[i]); err != nil {
				return err
			}
		}

		if err := checkEventLimit(txApp, order.EventID); err != nil {
			return err
		}

		ordersCol, err := txApp.FindCollectionByNameOrId("orders")
		if err != nil {
			return fmt.Errorf("find orders collection: %w", err)
		}
		orderRecord := core.NewRecord(ordersCol)
		orderRecord.Set("event_id", order.EventID)
		orderRecord.Set("customer_id", order.CustomerID)
		orderRecord.Set("total_amount", order.TotalAmount)
		orderRecord.Set("status", order.Status)
		if err := txApp.Save(orderRecord); err != nil {
			return fmt.Errorf("save order: %w", err)
		}
		order.ID = orderRecord.Id
		order.Created = orderRecord.GetDateTime("created").Time()

		itemsCol, err := txApp.FindCollectionByNameOrId("order_items")
		if err != nil {
			return fmt.Errorf("find order_items collection: %w", err)
		}
		for i := range items {
			itemRecord := core.NewRecord(itemsCol)
			itemRecord.Set("order_id", order.ID)
			itemRecord.Set("ticket_type_id", items[i].TicketTypeID)
			itemRecord.Set("quantity", items[i].Quantity)
			itemRecord.Set("price_per_unit", items[i].PricePerUnit)
			if err := txApp.Save(itemRecord); err != nil {
				return fmt.Errorf("save order item: %w", err)
			}
			items[i].ID = itemRecord.Id
			items[i].OrderID = order.ID
		}

		return nil
	})
}

// reserveUnits increments sold by the item quantity only while the result
// stays within capacity. Zero affected rows means either an unknown or
// foreign ticket type, or not enough remaining units.
func reserveUnits(txApp core.App, eventID string, item *models.OrderItem) error {
	result, err := txApp.DB().
		NewQuery(`UPDATE ticket_types
			SET sold = sold + {:qty}
			WHERE id = {:id} AND event_id = {:eventId} AND sold + {:qty} <= capacity`).
		Bind(dbx.Params{
			"qty":     item.Quantity,
			"id":      item.TicketTypeID,
			"eventId": eventID,
		}).
		Execute()
	if err != nil {
		return fmt.Errorf("reserve %d units of %q: %w", item.Quantity, item.TicketTypeID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reserve %q rows affected: %w", item.TicketTypeID, err)
	}
	if affected == 1 {
		return nil
	}

	record, err := txApp.FindRecordById("ticket_types", item.TicketTypeID)
	if err != nil || record.GetString("event_id") != eventID {
		return status.ErrUnknownTicketType
	}
	return status.ErrTypeCapacityExceeded
}

// checkEventLimit verifies the cross-type invariant after the per-type
// increments: sum(sold) must not exceed overall_ticket_limit when one is
// set. Runs inside the reservation transaction so a violation rolls back
// every increment.
func checkEventLimit(txApp core.App, eventID string) error {
	var row struct {
		Limit sql.NullInt64 `db:"overall_ticket_limit"`
		Sold  int64         `db:"total_sold"`
	}
	err := txApp.DB().
		NewQuery(`SELECT e.overall_ticket_limit AS overall_ticket_limit,
				COALESCE(SUM(tt.sold), 0) AS total_sold
			FROM events e
			LEFT JOIN ticket_types tt ON tt.event_id = e.id
			WHERE e.id = {:eventId}`).
		Bind(dbx.Params{"eventId": eventID}).
		One(&row)
	if err != nil {
		return fmt.Errorf("event limit check for %q: %w", eventID, err)
	}

	if row.Limit.Valid && row.Limit.Int64 > 0 && row.Sold > row.Limit.Int64 {
		return status.ErrEventCapacityExceeded
	}
	return nil
}
