package reservation

import (
	"fmt"
	"math"

	"github.com/LankaTrails/service-booking/internal/domain/offering"
)

// PricingStrategy defines the interface for calculating reservation totals.
type PricingStrategy interface {
	// Calculate returns the total in cents for the given parameters.
	Calculate(params PricingParams) (int64, error)
}

// PricingParams holds the inputs for price calculation.
type PricingParams struct {
	ServiceType    offering.ServiceType
	UnitPriceCents int64
	Period         DateRange
	Quantity       int
	EstimatedKm    float64
}

// StandardPricingStrategy implements the marketplace's default tariffs.
type StandardPricingStrategy struct{}

// NewStandardPricingStrategy creates a new StandardPricingStrategy.
func NewStandardPricingStrategy() *StandardPricingStrategy {
	return &StandardPricingStrategy{}
}

// Calculate computes the total in cents.
//
//   - hotel: nightly rate x nights x rooms
//   - guide: daily rate x days
//   - transport: rate per km x estimated km, rounded to the nearest cent. Without an
//     estimate the total is 0 and the provider quotes on confirmation.
func (s *StandardPricingStrategy) Calculate(params PricingParams) (int64, error) {
	if params.UnitPriceCents < 0 {
		return 0, fmt.Errorf("unit price cannot be negative")
	}

	switch params.ServiceType {
	case offering.ServiceHotel:
		if params.Quantity < 1 {
			return 0, fmt.Errorf("quantity must be at least 1")
		}
		return params.UnitPriceCents * int64(params.Period.Days()) * int64(params.Quantity), nil
	case offering.ServiceGuide:
		return params.UnitPriceCents * int64(params.Period.Days()), nil
	case offering.ServiceTransport:
		if params.EstimatedKm < 0 {
			return 0, fmt.Errorf("distance cannot be negative")
		}
		return int64(math.Round(float64(params.UnitPriceCents) * params.EstimatedKm)), nil
	default:
		return 0, fmt.Errorf("unknown service type: %s", params.ServiceType)
	}
}
