package attendance

import (
	"time"

	"github.com/UnknownOlympus/janus/internal/calendar"
	"github.com/UnknownOlympus/janus/internal/models"
)

// minutesPerDay is the cross-midnight correction applied when the
// departure clock time precedes the arrival clock time. Shifts longer
// than 24 hours are out of contract.
const minutesPerDay = 24 * 60

// Aggregator folds classified events into per-employee-per-day summaries.
// It is a pure reducer: Apply never touches storage and re-applying an
// event is safe (an arrival only moves the first-arrival earlier, a
// departure only moves the last-departure later).
type Aggregator struct {
	cal calendar.Calendar
	loc *time.Location
}

// NewAggregator creates an aggregator using the given calendar for the
// weekend/holiday flags and location for interpreting day keys.
func NewAggregator(cal calendar.Calendar, loc *time.Location) *Aggregator {
	return &Aggregator{cal: cal, loc: loc}
}

// Apply folds one event into the day aggregate and returns the updated
// value. A nil aggregate means this is the first event of the day; the
// weekend and holiday flags are computed once here and never change.
func (a *Aggregator) Apply(agg *models.DayAggregate, event models.AttendanceEvent) models.DayAggregate {
	var updated models.DayAggregate
	if agg == nil {
		updated = models.DayAggregate{
			EmployeeID: event.EmployeeID,
			Date:       event.Date,
		}
		if day, err := time.ParseInLocation(models.DateLayout, event.Date, a.loc); err == nil {
			updated.Weekend = a.cal.IsWeekend(day)
			updated.Holiday = a.cal.IsHoliday(day)
		}
	} else {
		updated = *agg
	}

	switch event.Kind {
	case models.EventArrival:
		if updated.FirstArrival == nil || event.Timestamp.Before(*updated.FirstArrival) {
			ts := event.Timestamp
			updated.FirstArrival = &ts
		}
	case models.EventDeparture:
		if updated.LastDeparture == nil || event.Timestamp.After(*updated.LastDeparture) {
			ts := event.Timestamp
			updated.LastDeparture = &ts
		}
		updated.Closed = true
	}

	updated.MinutesWorked = MinutesWorked(updated.FirstArrival, updated.LastDeparture)

	return updated
}

// MinutesWorked computes the wall-clock minutes between arrival and
// departure. When the departure clock time precedes the arrival (a shift
// crossing midnight recorded on the same day) the raw difference is
// negative and a full day is added.
func MinutesWorked(arrival, departure *time.Time) int {
	if arrival == nil || departure == nil {
		return 0
	}

	minutes := int(departure.Sub(*arrival).Minutes())
	if minutes < 0 {
		minutes += minutesPerDay
	}

	return minutes
}
