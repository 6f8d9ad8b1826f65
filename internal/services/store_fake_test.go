package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"eventtix/internal/notify"
	"eventtix/internal/status"
	"eventtix/models"
)

// fakeStore is an in-memory store.Store with the same atomicity guarantees
// as the real implementation: reservations and usage flips are evaluated
// under one lock, so the concurrency scenarios behave like the database's
// conditional updates.
type fakeStore struct {
	mu sync.Mutex

	events      map[string]*models.Event
	ticketTypes map[string]*models.TicketType
	orders      map[string]*models.Order
	orderItems  map[string][]models.OrderItem
	tickets     map[string]*models.Ticket

	seq int

	failCreateOrder  error
	failCreateTicket error
	failNumberCheck  error
	failUseTicket    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:      make(map[string]*models.Event),
		ticketTypes: make(map[string]*models.TicketType),
		orders:      make(map[string]*models.Order),
		orderItems:  make(map[string][]models.OrderItem),
		tickets:     make(map[string]*models.Ticket),
	}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeStore) addEvent(event models.Event) *models.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	if event.ID == "" {
		event.ID = f.nextID("evt")
	}
	f.events[event.ID] = &event
	return &event
}

func (f *fakeStore) addTicketType(tt models.TicketType) *models.TicketType {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tt.ID == "" {
		tt.ID = f.nextID("tt")
	}
	f.ticketTypes[tt.ID] = &tt
	return &tt
}

func (f *fakeStore) soldCount(ticketTypeID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ticketTypes[ticketTypeID].Sold
}

func (f *fakeStore) EventByID(ctx context.Context, id string) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	if !ok {
		return nil, status.ErrEventNotFound
	}
	copied := *event
	return &copied, nil
}

func (f *fakeStore) TicketTypeByID(ctx context.Context, id string) (*models.TicketType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tt, ok := f.ticketTypes[id]
	if !ok {
		return nil, status.ErrUnknownTicketType
	}
	copied := *tt
	return &copied, nil
}

func (f *fakeStore) TicketTypesByEvent(ctx context.Context, eventID string) ([]models.TicketType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var types []models.TicketType
	for _, tt := range f.ticketTypes {
		if tt.EventID == eventID {
			types = append(types, *tt)
		}
	}
	return types, nil
}

func (f *fakeStore) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failCreateOrder != nil {
		return f.failCreateOrder
	}

	// Phase one: verify every reservation before applying any, mirroring
	// the all-or-nothing transaction of the real store.
	projected := make(map[string]int)
	for i := range items {
		tt, ok := f.ticketTypes[items[i].TicketTypeID]
		if !ok || tt.EventID != order.EventID {
			return status.ErrUnknownTicketType
		}
		projected[tt.ID] += items[i].Quantity
		if tt.Sold+projected[tt.ID] > tt.Capacity {
			return status.ErrTypeCapacityExceeded
		}
	}

	event := f.events[order.EventID]
	if event != nil && event.OverallTicketLimit != nil {
		total := 0
		for _, tt := range f.ticketTypes {
			if tt.EventID == order.EventID {
				total += tt.Sold + projected[tt.ID]
			}
		}
		if total > *event.OverallTicketLimit {
			return status.ErrEventCapacityExceeded
		}
	}

	for id, qty := range projected {
		f.ticketTypes[id].Sold += qty
	}

	order.ID = f.nextID("ord")
	order.Created = time.Now()
	copied := *order
	f.orders[order.ID] = &copied
	for i := range items {
		items[i].ID = f.nextID("item")
		items[i].OrderID = order.ID
	}
	f.orderItems[order.ID] = append([]models.OrderItem(nil), items...)
	return nil
}

func (f *fakeStore) OrderByID(ctx context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return nil, status.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeStore) OrderItemsByOrder(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.OrderItem(nil), f.orderItems[orderID]...), nil
}

func (f *fakeStore) TicketsByOrder(ctx context.Context, orderID string) ([]models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var tickets []models.Ticket
	for _, ticket := range f.tickets {
		if ticket.OrderID == orderID {
			tickets = append(tickets, *ticket)
		}
	}
	return tickets, nil
}

func (f *fakeStore) TicketNumberExists(ctx context.Context, number string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNumberCheck != nil {
		return false, f.failNumberCheck
	}
	for _, ticket := range f.tickets {
		if ticket.TicketNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateTicket(ctx context.Context, ticket *models.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateTicket != nil {
		return f.failCreateTicket
	}
	ticket.ID = f.nextID("tkt")
	ticket.Created = time.Now()
	copied := *ticket
	f.tickets[ticket.ID] = &copied
	return nil
}

func (f *fakeStore) UseTicket(ctx context.Context, credential string, now time.Time) (*models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUseTicket != nil {
		return nil, f.failUseTicket
	}
	for _, ticket := range f.tickets {
		if ticket.QRCode != credential {
			continue
		}
		if ticket.IsUsed {
			copied := *ticket
			return &copied, status.ErrTicketAlreadyUsed
		}
		ticket.IsUsed = true
		ticket.UsedAt = &now
		copied := *ticket
		return &copied, nil
	}
	return nil, status.ErrTicketNotFound
}

func (f *fakeStore) TicketDetailsByID(ctx context.Context, ticketID string) (*models.TicketDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[ticketID]
	if !ok {
		return nil, status.ErrTicketNotFound
	}
	tt := f.ticketTypes[ticket.TicketTypeID]
	event := f.events[tt.EventID]
	order := f.orders[ticket.OrderID]
	return &models.TicketDetails{
		Ticket:         *ticket,
		EventTitle:     event.Title,
		EventDate:      event.Date,
		EventLocation:  event.Location,
		TicketTypeName: tt.Name,
		Price:          tt.Price,
		OrderDate:      order.Created,
	}, nil
}

// recordingSink captures deliveries and can be told to fail.
type recordingSink struct {
	mu         sync.Mutex
	deliveries []notifyDelivery
	failWith   error
}

type notifyDelivery struct {
	orderID   string
	recipient string
	tickets   int
}

func (r *recordingSink) Deliver(ctx context.Context, d *notify.Delivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	r.deliveries = append(r.deliveries, notifyDelivery{
		orderID:   d.Order.ID,
		recipient: d.RecipientEmail,
		tickets:   len(d.Tickets),
	})
	return nil
}

func (r *recordingSink) deliveredTickets() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, d := range r.deliveries {
		total += d.tickets
	}
	return total
}
