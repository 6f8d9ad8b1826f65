package services

import (
	"fmt"
	"strings"

	"eventtix/utils"
)

// Credential is the decoded form of a ticket's scannable payload:
// ticketNumber|orderID|ticketTypeID|entropy. Callers outside this package
// treat the encoded string as opaque; the entropy component makes the
// payload unguessable even with a known ticket number.
type Credential struct {
	TicketNumber string
	OrderID      string
	TicketTypeID string
	Entropy      string
}

const credentialParts = 4

// NewCredential binds a fresh high-entropy credential to the given ticket
// identifiers.
func NewCredential(ticketNumber, orderID, ticketTypeID string) (*Credential, error) {
	entropy, err := utils.GenerateEntropy()
	if err != nil {
		return nil, fmt.Errorf("credential entropy: %w", err)
	}
	return &Credential{
		TicketNumber: ticketNumber,
		OrderID:      orderID,
		TicketTypeID: ticketTypeID,
		Entropy:      entropy,
	}, nil
}

func (c *Credential) Encode() string {
	return strings.Join([]string{c.TicketNumber, c.OrderID, c.TicketTypeID, c.Entropy}, "|")
}

// ParseCredential decodes an encoded payload. Used for diagnostics only;
// lookups always go through the full opaque string.
func ParseCredential(encoded string) (*Credential, error) {
	parts := strings.Split(encoded, "|")
	if len(parts) != credentialParts {
		return nil, fmt.Errorf("malformed credential payload")
	}
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("malformed credential payload")
		}
	}
	return &Credential{
		TicketNumber: parts[0],
		OrderID:      parts[1],
		TicketTypeID: parts[2],
		Entropy:      parts[3],
	}, nil
}
