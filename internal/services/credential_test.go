package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialRoundTrip(t *testing.T) {
	credential, err := NewCredential("TKT-A1B2C3D4", "ord123", "tt456")
	require.NoError(t, err)

	assert.Len(t, credential.Entropy, 32, "16 random bytes hex encoded")

	encoded := credential.Encode()
	assert.Equal(t, 4, len(strings.Split(encoded, "|")))

	decoded, err := ParseCredential(encoded)
	require.NoError(t, err)
	assert.Equal(t, "TKT-A1B2C3D4", decoded.TicketNumber)
	assert.Equal(t, "ord123", decoded.OrderID)
	assert.Equal(t, "tt456", decoded.TicketTypeID)
	assert.Equal(t, credential.Entropy, decoded.Entropy)
}

func TestCredentialsAreNotPredictable(t *testing.T) {
	first, err := NewCredential("TKT-SAME", "ord", "tt")
	require.NoError(t, err)
	second, err := NewCredential("TKT-SAME", "ord", "tt")
	require.NoError(t, err)

	assert.NotEqual(t, first.Encode(), second.Encode(),
		"identical ticket identifiers must still yield distinct credentials")
}

func TestParseCredentialRejectsMalformedPayloads(t *testing.T) {
	for _, payload := range []string{
		"",
		"TKT-A1B2C3D4",
		"TKT-A1B2C3D4|ord",
		"TKT-A1B2C3D4|ord|tt",
		"TKT-A1B2C3D4|ord|tt|entropy|extra",
		"TKT-A1B2C3D4||tt|entropy",
		"|ord|tt|entropy",
	} {
		_, err := ParseCredential(payload)
		assert.Error(t, err, "payload %q", payload)
	}
}
