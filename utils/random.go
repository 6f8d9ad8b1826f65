package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// GenerateCode returns n random bytes as an upper-case hex string.
func GenerateCode(n int) (string, error) {
	byt := make([]byte, n)

	if _, err := rand.Read(byt); err != nil {
		return "", err
	}

	return strings.ToUpper(hex.EncodeToString(byt)), nil
}

// GenerateTicketNumber produces a human-readable ticket number like
// TKT-3F9A01B2. Uniqueness is enforced by the caller against storage.
func GenerateTicketNumber() (string, error) {
	code, err := GenerateCode(4)
	if err != nil {
		return "", err
	}
	return "TKT-" + code, nil
}

// GenerateEntropy returns the high-entropy component bound to a ticket
// credential: 16 random bytes, hex encoded. Knowing one ticket's code must
// give no information about another's.
func GenerateEntropy() (string, error) {
	return GenerateCode(16)
}
