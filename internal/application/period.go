package application

import (
	offeringDomain "github.com/LankaTrails/service-booking/internal/domain/offering"
	reservationDomain "github.com/LankaTrails/service-booking/internal/domain/reservation"
	"github.com/LankaTrails/service-booking/internal/platform/domain"
)

// PeriodInput is how callers express a stay: start and end dates, or a start date plus
// a number of days (the usual form for guides).
type PeriodInput struct {
	StartDate string
	EndDate   string
	Date      string
	Days      int
}

func (p PeriodInput) empty() bool {
	return p.StartDate == "" && p.EndDate == "" && p.Date == ""
}

// resolvePeriod turns p into a DateRange. It returns nil when p is empty and the
// period is optional.
func resolvePeriod(serviceType offeringDomain.ServiceType, p PeriodInput, required bool) (*reservationDomain.DateRange, error) {
	if p.empty() {
		if required {
			if serviceType == offeringDomain.ServiceGuide {
				return nil, domain.NewValidationError("date and days are required")
			}
			return nil, domain.NewValidationError("start_date and end_date are required")
		}
		return nil, nil
	}

	if p.StartDate != "" || p.EndDate != "" {
		if p.StartDate == "" || p.EndDate == "" {
			return nil, domain.NewValidationError("start_date and end_date must be given together")
		}
		r, err := reservationDomain.ParseDateRange(p.StartDate, p.EndDate)
		if err != nil {
			return nil, err
		}
		return &r, nil
	}

	date, err := reservationDomain.ParseDate(p.Date)
	if err != nil {
		return nil, err
	}
	days := p.Days
	if days == 0 {
		days = 1
	}
	r, err := reservationDomain.NewDayRange(date, days)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
