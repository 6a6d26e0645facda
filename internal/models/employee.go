package models

import "time"

// Employee represents a person tracked by the attendance system.
// It contains the employee's identity, optional Telegram binding for
// notifications, notification preferences and the active flag.
type Employee struct {
	ID                    int64     // Unique identifier for the employee
	Name                  string    // Display name of the employee
	TelegramID            *int64    // Telegram chat ID, nil until the employee links the bot
	TelegramUsername      string    // Telegram username, informational only
	NotificationsEnabled  bool      // Master switch for bot notifications
	ArrivalNotifications  bool      // Notify on arrival events
	DepartureNotifications bool     // Notify on departure events
	IsAdmin               bool      // Admin may manage cards and trigger sweeps
	IsActive              bool      // Inactive employees keep history but accept no scans
	CreatedAt             time.Time // Timestamp of when the employee record was created
}

// ShouldNotify reports whether a notification for the given event kind
// should be delivered to this employee.
func (e Employee) ShouldNotify(kind EventKind) bool {
	if e.TelegramID == nil || !e.NotificationsEnabled {
		return false
	}
	switch kind {
	case EventArrival:
		return e.ArrivalNotifications
	case EventDeparture:
		return e.DepartureNotifications
	default:
		return false
	}
}
