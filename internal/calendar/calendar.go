package calendar

import "time"

// Calendar answers whether a date falls on a non-working day. The scan
// pipeline computes these flags once, when a day aggregate is created.
type Calendar interface {
	// IsWeekend checks if the given date is a Saturday or Sunday.
	IsWeekend(date time.Time) bool
	// IsHoliday checks if the given date is a public holiday.
	IsHoliday(date time.Time) bool
}

// Weekends is the default Calendar: ISO weekends only. IsHoliday always
// returns false; a production-calendar source can be swapped in behind
// the same interface when one becomes available.
type Weekends struct{}

// NewWeekends creates the default weekend-only calendar.
func NewWeekends() *Weekends {
	return &Weekends{}
}

// IsWeekend checks if the given date is a Saturday or Sunday.
func (*Weekends) IsWeekend(date time.Time) bool {
	weekday := date.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// IsHoliday always reports false; holidays are an extension point.
func (*Weekends) IsHoliday(_ time.Time) bool {
	return false
}
