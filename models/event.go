package models

import (
	"time"
)

type Event struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Date               time.Time `json:"date"`
	Location           string    `json:"location"`
	UserID             string    `json:"user_id"`
	OverallTicketLimit *int      `json:"overall_ticket_limit,omitempty"`
	Created            time.Time `json:"created"`
	Updated            time.Time `json:"updated"`
}

type TicketType struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	Name         string    `json:"name"`
	Price        float64   `json:"price"`
	Capacity     int       `json:"capacity"`
	Sold         int       `json:"sold"`
	Description  string    `json:"description,omitempty"`
	IsGated      bool      `json:"is_gated"`
	PasswordHash string    `json:"-"`
	Created      time.Time `json:"created"`
}

// Remaining reports how many units of this type can still be sold.
func (t *TicketType) Remaining() int {
	if r := t.Capacity - t.Sold; r > 0 {
		return r
	}
	return 0
}
