package offering

import "fmt"

// ServiceType is the marketplace vertical an offering belongs to.
type ServiceType string

const (
	ServiceHotel     ServiceType = "hotel"
	ServiceGuide     ServiceType = "guide"
	ServiceTransport ServiceType = "transport"
)

// ServiceTypes lists every vertical in display order.
var ServiceTypes = []ServiceType{ServiceHotel, ServiceGuide, ServiceTransport}

// LedgerKind describes how an offering's inventory is tracked.
type LedgerKind string

const (
	// LedgerQuantity offerings have an integer capacity; availability is derived from
	// overlapping active reservations.
	LedgerQuantity LedgerKind = "quantity"
	// LedgerFlag offerings have a single availability flag flipped on confirmation.
	LedgerFlag LedgerKind = "flag"
)

// IsValid returns true if the service type is recognized.
func (s ServiceType) IsValid() bool {
	switch s {
	case ServiceHotel, ServiceGuide, ServiceTransport:
		return true
	}
	return false
}

// LedgerKind returns how inventory of this service type is tracked.
func (s ServiceType) LedgerKind() LedgerKind {
	if s == ServiceHotel {
		return LedgerQuantity
	}
	return LedgerFlag
}

// String returns the string representation of the service type.
func (s ServiceType) String() string {
	return string(s)
}

// ParseServiceType converts a path segment to a ServiceType. "tour_guide" is accepted as
// an alias for "guide".
func ParseServiceType(s string) (ServiceType, error) {
	if s == "tour_guide" {
		return ServiceGuide, nil
	}
	st := ServiceType(s)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid service type: %s", s)
	}
	return st, nil
}
