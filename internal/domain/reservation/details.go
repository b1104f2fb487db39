package reservation

// Details holds the domain-specific part of a reservation. Hotel bookings carry guest
// contact data, transport bookings carry the pickup point and a distance estimate.
type Details struct {
	GuestName      string  `json:"guest_name,omitempty"`
	GuestEmail     string  `json:"guest_email,omitempty"`
	GuestContact   string  `json:"guest_contact,omitempty"`
	PickupLocation string  `json:"pickup_location,omitempty"`
	EstimatedKm    float64 `json:"estimated_km,omitempty"`
	Notes          string  `json:"notes,omitempty"`
}

// WithGuestDefaults fills missing guest name and email from the requester profile.
func (d Details) WithGuestDefaults(name, email string) Details {
	if d.GuestName == "" {
		d.GuestName = name
	}
	if d.GuestEmail == "" {
		d.GuestEmail = email
	}
	return d
}
