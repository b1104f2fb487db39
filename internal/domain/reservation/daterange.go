package reservation

import (
	"fmt"
	"time"

	"github.com/LankaTrails/service-booking/internal/platform/domain"
)

// DateLayout is the wire format of reservation dates.
const DateLayout = "2006-01-02"

// DateRange is a half-open interval of calendar days [Start, End).
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range from two dates, truncated to UTC midnight.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: truncateDay(start), End: truncateDay(end)}
	if !r.End.After(r.Start) {
		return DateRange{}, domain.NewInvalidRangeError(
			fmt.Sprintf("end date %s must be after start date %s", r.End.Format(DateLayout), r.Start.Format(DateLayout)))
	}
	return r, nil
}

// ParseDateRange parses start and end in DateLayout.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := ParseDate(start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return DateRange{}, err
	}
	return NewDateRange(s, e)
}

// NewDayRange builds the range covering days consecutive days starting at date.
func NewDayRange(date time.Time, days int) (DateRange, error) {
	if days < 1 {
		return DateRange{}, domain.NewInvalidRangeError("days must be at least 1")
	}
	start := truncateDay(date)
	return DateRange{Start: start, End: start.AddDate(0, 0, days)}, nil
}

// ParseDate parses a single date in DateLayout.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, domain.NewValidationError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s))
	}
	return t, nil
}

// Overlaps reports whether the two half-open ranges share at least one instant.
// A range ending on the day another starts does not overlap it.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Days returns the number of nights (or guide days) the range covers.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// Contains reports whether day falls inside the range.
func (r DateRange) Contains(day time.Time) bool {
	d := truncateDay(day)
	return !d.Before(r.Start) && d.Before(r.End)
}

func (r DateRange) String() string {
	return fmt.Sprintf("[%s,%s)", r.Start.Format(DateLayout), r.End.Format(DateLayout))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
