package status

import "errors"

var (
	ErrTypeCapacityExceeded  = errors.New("ledger: ticket type capacity exceeded")
	ErrEventCapacityExceeded = errors.New("ledger: event ticket limit exceeded")
	ErrAccessDenied          = errors.New("gate: incorrect password")
	ErrEventNotFound         = errors.New("order: event not found")
	ErrUnknownTicketType     = errors.New("order: ticket type does not belong to event")
	ErrInvalidQuantity       = errors.New("order: quantity must be a positive integer")
	ErrOrderNotFound         = errors.New("order: order not found")
	ErrOrderNotCompleted     = errors.New("issuance: order is not completed")
	ErrIssuanceFailed        = errors.New("issuance: ticket issuance failed")
	ErrDeliveryFailed        = errors.New("delivery: ticket delivery failed")
	ErrTicketNotFound        = errors.New("validate: ticket not found")
	ErrTicketAlreadyUsed     = errors.New("validate: ticket already used")
)

// Reason maps a sentinel to the machine-readable rejection code returned
// to API callers. Unmapped errors come back as a generic internal code so
// internals never leak into responses.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrTypeCapacityExceeded):
		return "insufficient_type_capacity"
	case errors.Is(err, ErrEventCapacityExceeded):
		return "insufficient_event_capacity"
	case errors.Is(err, ErrAccessDenied):
		return "access_denied"
	case errors.Is(err, ErrEventNotFound), errors.Is(err, ErrUnknownTicketType), errors.Is(err, ErrInvalidQuantity):
		return "invalid_request"
	case errors.Is(err, ErrOrderNotFound):
		return "order_not_found"
	case errors.Is(err, ErrOrderNotCompleted):
		return "order_not_completed"
	case errors.Is(err, ErrIssuanceFailed):
		return "issuance_failed"
	case errors.Is(err, ErrDeliveryFailed):
		return "delivery_failed"
	case errors.Is(err, ErrTicketNotFound):
		return "not_found"
	case errors.Is(err, ErrTicketAlreadyUsed):
		return "already_used"
	default:
		return "internal"
	}
}
