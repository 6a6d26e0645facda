package models

// ScanStatus is the outcome category of a processed card scan.
type ScanStatus string

const (
	// ScanRecorded means a new attendance event was persisted.
	ScanRecorded ScanStatus = "recorded"
	// ScanDuplicate means the scan landed inside the anti-bounce window
	// of the previous event and was acknowledged without a new record.
	ScanDuplicate ScanStatus = "duplicate"
	// ScanUnknownCard means the serial is not registered at all.
	ScanUnknownCard ScanStatus = "unknown_card"
	// ScanUnassignedCard means the card exists but is not bound to an employee.
	ScanUnassignedCard ScanStatus = "unassigned_card"
)

// ScanResult is the synchronous reply to the reader for one scan.
// Unknown and unassigned cards are normal, recoverable outcomes that
// feed the operator registration workflow, not errors.
type ScanResult struct {
	Status       ScanStatus `json:"status"`
	Serial       string     `json:"card_serial,omitempty"`
	EmployeeName string     `json:"employee_name,omitempty"`
	Kind         EventKind  `json:"event_type,omitempty"`
	LocalTime    string     `json:"local_time,omitempty"` // HH:MM in the deployment timezone
	Date         string     `json:"date,omitempty"`
}
