package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventtix/internal/status"
	"eventtix/models"
)

func seedCompletedOrder(t *testing.T, st *fakeStore, quantities ...int) (*models.Order, []models.OrderItem) {
	t.Helper()
	event := st.addEvent(models.Event{Title: "Arena Show", Location: "Main Hall"})
	items := make([]models.OrderItem, 0, len(quantities))
	for _, qty := range quantities {
		tt := st.addTicketType(models.TicketType{EventID: event.ID, Name: "Tier", Price: 30, Capacity: 100})
		items = append(items, models.OrderItem{TicketTypeID: tt.ID, Quantity: qty, PricePerUnit: tt.Price})
	}
	order := &models.Order{
		EventID:     event.ID,
		Status:      models.OrderStatusCompleted,
		TotalAmount: models.OrderTotal(items).InexactFloat64(),
	}
	require.NoError(t, st.CreateOrder(context.Background(), order, items))
	return order, items
}

func TestIssueMintsOneTicketPerUnit(t *testing.T) {
	st := newFakeStore()
	sink := &recordingSink{}
	issuer := NewTicketIssuer(st, sink)
	order, _ := seedCompletedOrder(t, st, 2, 3)

	ids, err := issuer.Issue(context.Background(), order.ID, "buyer@example.com")
	require.NoError(t, err)
	require.Len(t, ids, 5)

	tickets, err := st.TicketsByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, tickets, 5)

	numbers := make(map[string]bool)
	credentials := make(map[string]bool)
	for _, ticket := range tickets {
		assert.False(t, ticket.IsUsed)
		assert.Nil(t, ticket.UsedAt)
		assert.True(t, strings.HasPrefix(ticket.TicketNumber, "TKT-"))
		assert.False(t, numbers[ticket.TicketNumber], "ticket numbers must be unique")
		numbers[ticket.TicketNumber] = true
		assert.False(t, credentials[ticket.QRCode], "credentials must be unique")
		credentials[ticket.QRCode] = true

		credential, err := ParseCredential(ticket.QRCode)
		require.NoError(t, err)
		assert.Equal(t, ticket.TicketNumber, credential.TicketNumber)
		assert.Equal(t, order.ID, credential.OrderID)
		assert.Equal(t, ticket.TicketTypeID, credential.TicketTypeID)
	}

	assert.Equal(t, 5, sink.deliveredTickets())
}

func TestIssueIsIdempotent(t *testing.T) {
	st := newFakeStore()
	sink := &recordingSink{}
	issuer := NewTicketIssuer(st, sink)
	order, _ := seedCompletedOrder(t, st, 4)

	first, err := issuer.Issue(context.Background(), order.ID, "buyer@example.com")
	require.NoError(t, err)
	require.Len(t, first, 4)

	second, err := issuer.Issue(context.Background(), order.ID, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, first, second, "retry returns the same tickets")

	tickets, err := st.TicketsByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, tickets, 4, "retry must not mint duplicates")
	assert.Equal(t, 4, sink.deliveredTickets(), "nothing new to deliver on retry")
}

func TestIssueMintsOnlyTheShortfall(t *testing.T) {
	st := newFakeStore()
	issuer := NewTicketIssuer(st, &recordingSink{})
	order, items := seedCompletedOrder(t, st, 3)

	// Simulate a previous partially failed run that minted one ticket.
	partial := &models.Ticket{
		OrderID:      order.ID,
		TicketTypeID: items[0].TicketTypeID,
		TicketNumber: "TKT-SEED0001",
		QRCode:       "TKT-SEED0001|" + order.ID + "|" + items[0].TicketTypeID + "|aa",
	}
	require.NoError(t, st.CreateTicket(context.Background(), partial))

	ids, err := issuer.Issue(context.Background(), order.ID, "")
	require.NoError(t, err)
	assert.Len(t, ids, 3)
	assert.Contains(t, ids, partial.ID, "pre-existing ticket is part of the result")

	tickets, err := st.TicketsByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, tickets, 3)
}

func TestIssueRetryCoversDuplicateTypeItems(t *testing.T) {
	st := newFakeStore()
	issuer := NewTicketIssuer(st, &recordingSink{})
	event := st.addEvent(models.Event{Title: "Encore"})
	tt := st.addTicketType(models.TicketType{EventID: event.ID, Name: "GA", Price: 20, Capacity: 50})

	// Two items referencing the same ticket type are a valid order shape.
	order := &models.Order{EventID: event.ID, Status: models.OrderStatusCompleted}
	items := []models.OrderItem{
		{TicketTypeID: tt.ID, Quantity: 2, PricePerUnit: 20},
		{TicketTypeID: tt.ID, Quantity: 3, PricePerUnit: 20},
	}
	require.NoError(t, st.CreateOrder(context.Background(), order, items))

	// A previous run minted part of the order before failing.
	for i := range 2 {
		partial := &models.Ticket{
			OrderID:      order.ID,
			TicketTypeID: tt.ID,
			TicketNumber: fmt.Sprintf("TKT-SEED%04d", i),
			QRCode:       fmt.Sprintf("TKT-SEED%04d|%s|%s|aa", i, order.ID, tt.ID),
		}
		require.NoError(t, st.CreateTicket(context.Background(), partial))
	}

	ids, err := issuer.Issue(context.Background(), order.ID, "")
	require.NoError(t, err)
	assert.Len(t, ids, 5, "retry mints exactly the order-wide shortfall")

	tickets, err := st.TicketsByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, tickets, 5, "one ticket per purchased unit across all items")
}

func TestIssueRejectsMissingOrIncompleteOrders(t *testing.T) {
	st := newFakeStore()
	issuer := NewTicketIssuer(st, &recordingSink{})

	_, err := issuer.Issue(context.Background(), "missing", "")
	require.ErrorIs(t, err, status.ErrOrderNotFound)

	event := st.addEvent(models.Event{Title: "Pending"})
	tt := st.addTicketType(models.TicketType{EventID: event.ID, Name: "Std", Price: 10, Capacity: 10})
	order := &models.Order{EventID: event.ID, Status: models.OrderStatusCompleted}
	require.NoError(t, st.CreateOrder(context.Background(), order, []models.OrderItem{{TicketTypeID: tt.ID, Quantity: 1}}))
	st.mu.Lock()
	st.orders[order.ID].Status = models.OrderStatusPending
	st.mu.Unlock()

	_, err = issuer.Issue(context.Background(), order.ID, "")
	require.ErrorIs(t, err, status.ErrOrderNotCompleted)

	tickets, err := st.TicketsByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Empty(t, tickets, "non-completed orders never get tickets")
}

func TestIssueReportsMintFailureWithPartialResult(t *testing.T) {
	st := newFakeStore()
	issuer := NewTicketIssuer(st, &recordingSink{})
	order, _ := seedCompletedOrder(t, st, 2)
	st.failCreateTicket = assert.AnError

	ids, err := issuer.Issue(context.Background(), order.ID, "")
	require.ErrorIs(t, err, status.ErrIssuanceFailed)
	assert.Empty(t, ids)
}

func TestIssueSurfacesNumberCheckFailures(t *testing.T) {
	st := newFakeStore()
	issuer := NewTicketIssuer(st, &recordingSink{})
	order, _ := seedCompletedOrder(t, st, 1)
	st.failNumberCheck = assert.AnError

	_, err := issuer.Issue(context.Background(), order.ID, "")
	require.ErrorIs(t, err, status.ErrIssuanceFailed,
		"a failed uniqueness check must not pass as a free number")

	tickets, err := st.TicketsByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestReissueResendsExistingTicketsOnRequest(t *testing.T) {
	st := newFakeStore()
	sink := &recordingSink{failWith: assert.AnError}
	issuer := NewTicketIssuer(st, sink)
	order, _ := seedCompletedOrder(t, st, 3)

	_, err := issuer.Issue(context.Background(), order.ID, "buyer@example.com")
	require.ErrorIs(t, err, status.ErrDeliveryFailed)

	// Mail is back up; a reissue naming a recipient resends the full set
	// even though nothing is left to mint.
	sink.failWith = nil
	ids, err := issuer.Issue(context.Background(), order.ID, "buyer@example.com")
	require.NoError(t, err)
	assert.Len(t, ids, 3)
	assert.Equal(t, 3, sink.deliveredTickets())

	// Without a recipient there is nothing to retry.
	_, err = issuer.Issue(context.Background(), order.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 3, sink.deliveredTickets())
}

func TestIssueDeliveryFailureStillReturnsTickets(t *testing.T) {
	st := newFakeStore()
	sink := &recordingSink{failWith: assert.AnError}
	issuer := NewTicketIssuer(st, sink)
	order, _ := seedCompletedOrder(t, st, 2)

	ids, err := issuer.Issue(context.Background(), order.ID, "buyer@example.com")
	require.ErrorIs(t, err, status.ErrDeliveryFailed)
	assert.Len(t, ids, 2)

	tickets, err := st.TicketsByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, tickets, 2, "minted tickets survive a failed delivery")
}
