package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloudEvent_ParseRoundTrip(t *testing.T) {
	type payload struct {
		ReservationID string `json:"reservation_id"`
	}

	ce, err := NewCloudEvent("service-booking", "booking.reservation.requested", payload{ReservationID: "r-1"})
	require.NoError(t, err)
	ce.Subject = "r-1"

	raw, err := json.Marshal(ce)
	require.NoError(t, err)

	parsed, err := ParseCloudEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, "1.0", parsed.SpecVersion)
	assert.Equal(t, "r-1", parsed.Subject)

	var got payload
	require.NoError(t, parsed.ParseData(&got))
	assert.Equal(t, "r-1", got.ReservationID)
}

func TestParseCloudEvent_RejectsUntyped(t *testing.T) {
	_, err := ParseCloudEvent([]byte(`{"id":"x"}`))
	assert.Error(t, err)

	_, err = ParseCloudEvent([]byte(`not json`))
	assert.Error(t, err)
}
