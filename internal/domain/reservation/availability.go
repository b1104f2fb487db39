package reservation

import "github.com/LankaTrails/service-booking/internal/domain/offering"

// Availability is the answer to an availability query.
type Availability struct {
	Available  int  `json:"available"`
	Total      int  `json:"total"`
	Sufficient bool `json:"sufficient"`
}

// Evaluate computes availability of o given the quantity already held by overlapping
// active reservations. Flag offerings ignore reserved and report their flag.
func Evaluate(o *offering.Offering, reserved, requested int) Availability {
	if requested < 1 {
		requested = 1
	}

	if o.LedgerKind() == offering.LedgerFlag {
		available := 0
		if o.Available() {
			available = 1
		}
		return Availability{Available: available, Total: 1, Sufficient: available >= requested}
	}

	available := o.Capacity() - reserved
	if available < 0 {
		available = 0
	}
	return Availability{
		Available:  available,
		Total:      o.Capacity(),
		Sufficient: available >= requested,
	}
}
