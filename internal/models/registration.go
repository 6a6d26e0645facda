package models

import "time"

// RegistrationRequest is a one-time token that lets a person claim an
// unknown card and become a registered employee.
type RegistrationRequest struct {
	Token      string     // Opaque token embedded in the registration link
	CardSerial string     // Serial the token was issued for
	ExpiresAt  time.Time  // Token is invalid after this instant
	UsedAt     *time.Time // Set when the registration completes
	CreatedAt  time.Time
}

// IsValid reports whether the request can still be consumed at the given time.
func (r RegistrationRequest) IsValid(now time.Time) bool {
	return r.UsedAt == nil && now.Before(r.ExpiresAt)
}
