package offering

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LankaTrails/service-booking/internal/platform/domain"
)

func TestParseServiceType(t *testing.T) {
	st, err := ParseServiceType("hotel")
	require.NoError(t, err)
	assert.Equal(t, ServiceHotel, st)

	st, err = ParseServiceType("tour_guide")
	require.NoError(t, err)
	assert.Equal(t, ServiceGuide, st)

	_, err = ParseServiceType("spa")
	assert.Error(t, err)
}

func TestServiceType_LedgerKind(t *testing.T) {
	assert.Equal(t, LedgerQuantity, ServiceHotel.LedgerKind())
	assert.Equal(t, LedgerFlag, ServiceGuide.LedgerKind())
	assert.Equal(t, LedgerFlag, ServiceTransport.LedgerKind())
}

func TestNewOffering(t *testing.T) {
	provider := uuid.New()

	t.Run("hotel keeps capacity", func(t *testing.T) {
		o, err := NewOffering(provider, ServiceHotel, Attributes{Name: "Deluxe", PriceCents: 1500000, Capacity: 4})
		require.NoError(t, err)
		assert.Equal(t, 4, o.Capacity())
		assert.Equal(t, domain.CurrencyLKR, o.Currency())
		assert.True(t, o.IsOwnedBy(provider))
		assert.Equal(t, int64(1), o.Version())
		assert.NotNil(t, o.Photos())
	})

	t.Run("guide forces single unit", func(t *testing.T) {
		o, err := NewOffering(provider, ServiceGuide, Attributes{Name: "Kamal", Capacity: 9, Languages: []string{"en", "si"}})
		require.NoError(t, err)
		assert.Equal(t, 1, o.Capacity())
		assert.True(t, o.Available())
		assert.Equal(t, []string{"en", "si"}, o.Languages())
	})

	t.Run("rejects missing name", func(t *testing.T) {
		_, err := NewOffering(provider, ServiceHotel, Attributes{Capacity: 1})
		assert.True(t, domain.HasCode(err, domain.CodeValidation))
	})

	t.Run("rejects nil provider", func(t *testing.T) {
		_, err := NewOffering(uuid.Nil, ServiceHotel, Attributes{Name: "x"})
		assert.Error(t, err)
	})

	t.Run("rejects negative capacity", func(t *testing.T) {
		_, err := NewOffering(provider, ServiceHotel, Attributes{Name: "x", Capacity: -1})
		assert.Error(t, err)
	})
}

func TestOffering_Update(t *testing.T) {
	o, err := NewOffering(uuid.New(), ServiceHotel, Attributes{Name: "Standard", PriceCents: 100, Capacity: 2})
	require.NoError(t, err)

	zero := 0
	require.NoError(t, o.Update(Attributes{Description: "sea view"}, &zero))
	assert.Equal(t, "Standard", o.Name())
	assert.Equal(t, "sea view", o.Description())
	assert.Equal(t, 0, o.Capacity())
	assert.Equal(t, int64(2), o.Version())

	guide, err := NewOffering(uuid.New(), ServiceGuide, Attributes{Name: "Nimal"})
	require.NoError(t, err)
	three := 3
	assert.Error(t, guide.Update(Attributes{}, &three))
}

func TestOffering_AdjustFlag(t *testing.T) {
	guide, err := NewOffering(uuid.New(), ServiceGuide, Attributes{Name: "Nimal"})
	require.NoError(t, err)

	require.NoError(t, guide.AdjustFlag(false))
	assert.False(t, guide.Available())
	require.NoError(t, guide.AdjustFlag(true))
	assert.True(t, guide.Available())

	hotel, err := NewOffering(uuid.New(), ServiceHotel, Attributes{Name: "Suite", Capacity: 1})
	require.NoError(t, err)
	assert.Error(t, hotel.AdjustFlag(false))
}
