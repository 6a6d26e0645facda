package models

import (
	"strings"
	"time"
)

// Card represents a physical RFID badge. A card may exist without an
// employee binding until an operator or the registration flow assigns it.
type Card struct {
	ID          int64      // Unique identifier for the card
	Serial      string     // Normalized uppercase hex serial, unique
	EmployeeID  *int64     // Bound employee, nil while the card is unassigned
	Description string     // Free-text note about the card
	IsActive    bool       // Inactive cards are rejected at the scan ingress
	CreatedAt   time.Time  // Timestamp of when the card record was created
	LastUsedAt  *time.Time // Last accepted scan with this card
}

// NormalizeSerial brings a raw reader-supplied serial to the canonical
// uppercase trimmed form used as the lookup key.
func NormalizeSerial(serial string) string {
	return strings.ToUpper(strings.TrimSpace(serial))
}
