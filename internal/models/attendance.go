package models

import "time"

// EventKind is the classified direction of a card scan.
type EventKind string

const (
	// EventArrival marks the employee entering the office.
	EventArrival EventKind = "arrival"
	// EventDeparture marks the employee leaving the office.
	EventDeparture EventKind = "departure"
)

// Opposite returns the toggled event kind.
func (k EventKind) Opposite() EventKind {
	if k == EventArrival {
		return EventDeparture
	}
	return EventArrival
}

// DateLayout is the calendar day key format used across storage and API.
const DateLayout = "2006-01-02"

// AttendanceEvent is an immutable fact: a single accepted card scan,
// classified as arrival or departure. Events are never mutated; the
// ordering key is (EmployeeID, Timestamp).
type AttendanceEvent struct {
	ID         int64     `json:"id"`          // Unique identifier for the event
	EmployeeID int64     `json:"employee_id"` // Employee the card was bound to at scan time
	CardSerial string    `json:"card_serial"` // Serial of the card that produced the scan
	Kind       EventKind `json:"event_type"`  // Classified direction of the scan
	Timestamp  time.Time `json:"timestamp"`   // Wall-clock time of the scan in the deployment timezone
	Date       string    `json:"date"`        // Calendar day (YYYY-MM-DD) derived from Timestamp
	Note       string    `json:"note,omitempty"`   // Free-text note, e.g. reader metadata
	Manual     bool      `json:"manual,omitempty"` // True when the event was entered by an admin, not a reader
	CreatedAt  time.Time `json:"created_at"`       // Timestamp of when the row was written
}

// DayAggregate is the derived first-in/last-out summary for one employee
// on one calendar day. It is the only mutable attendance record.
//
// Invariant: Closed implies both FirstArrival and LastDeparture are set.
// Invariant: MinutesWorked, when both timestamps are present, equals the
// wall-clock difference with a +24h correction when the departure clock
// time precedes the arrival clock time.
type DayAggregate struct {
	EmployeeID    int64      `json:"employee_id"`    // Employee this summary belongs to
	Date          string     `json:"date"`           // Calendar day key (YYYY-MM-DD)
	FirstArrival  *time.Time `json:"first_arrival"`  // Earliest arrival seen for the day
	LastDeparture *time.Time `json:"last_departure"` // Latest departure seen for the day
	MinutesWorked int        `json:"minutes_worked"` // Wall-clock minutes between first arrival and last departure
	Weekend       bool       `json:"weekend"`        // Computed once at creation from the calendar
	Holiday       bool       `json:"holiday"`        // Computed once at creation from the calendar
	Closed        bool       `json:"is_closed"`      // Set by a departure event or the auto-close sweeper
	AutoClosed    bool       `json:"auto_closed"`    // Set only by the auto-close sweeper
	UpdatedAt     time.Time  `json:"updated_at"`     // Timestamp of the last change
}

// DaySummary combines the aggregate with the raw events of the day,
// as exposed to the dashboard and the bot.
type DaySummary struct {
	EmployeeID   int64             `json:"employee_id"`
	EmployeeName string            `json:"employee_name"`
	Date         string            `json:"date"`
	Aggregate    *DayAggregate     `json:"aggregate,omitempty"`
	Events       []AttendanceEvent `json:"events"`
	// Present reports whether the employee has arrived and not yet left.
	Present bool `json:"present"`
}
