package reservation

import (
	"sort"
	"time"
)

// PeakOccupancy returns the largest total quantity held by active reservations at any
// single instant. Reservations that touch end-to-start do not stack.
func PeakOccupancy(reservations []*Reservation) int {
	type edge struct {
		at    time.Time
		delta int
	}

	edges := make([]edge, 0, len(reservations)*2)
	for _, r := range reservations {
		if !r.Status().IsActive() {
			continue
		}
		edges = append(edges,
			edge{at: r.Period().Start, delta: r.Quantity()},
			edge{at: r.Period().End, delta: -r.Quantity()},
		)
	}

	// Departures sort before arrivals on the same day.
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].at.Equal(edges[j].at) {
			return edges[i].delta < edges[j].delta
		}
		return edges[i].at.Before(edges[j].at)
	})

	peak, current := 0, 0
	for _, e := range edges {
		current += e.delta
		if current > peak {
			peak = current
		}
	}
	return peak
}
