package repository

import (
	"context"
	"time"

	"github.com/UnknownOlympus/janus/internal/metrics"
	"github.com/UnknownOlympus/janus/internal/models"
)

// Repository implements the persistence boundary of the attendance core
// on PostgreSQL.
type Repository struct {
	db  Database
	mtr *metrics.Metrics
}

// CardManager defines repository operations on RFID cards: lookup by
// serial, creation of unbound cards and binding them to employees.
type CardManager interface {
	GetCardBySerial(ctx context.Context, serial string) (models.Card, error)
	CreateCard(ctx context.Context, serial, description string) (models.Card, error)
	BindCard(ctx context.Context, serial string, employeeID int64) error
	TouchCardUsage(ctx context.Context, serial string, usedAt time.Time) error
}

// EmployeeManager defines repository operations for employee records and
// their Telegram binding and notification preferences.
type EmployeeManager interface {
	GetEmployeeByID(ctx context.Context, id int64) (models.Employee, error)
	GetEmployeeByTelegramID(ctx context.Context, telegramID int64) (models.Employee, error)
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	LinkTelegramID(ctx context.Context, employeeID, telegramID int64, username string) error
	SetNotificationPrefs(ctx context.Context, employeeID int64, enabled, arrivals, departures bool) error
}

// AttendanceManager defines the event and aggregate operations the core
// needs: day-ordered event reads, immutable event inserts and aggregate
// upserts.
type AttendanceManager interface {
	InsertEvent(ctx context.Context, event models.AttendanceEvent) (models.AttendanceEvent, error)
	GetEventsForDay(ctx context.Context, employeeID int64, date string) ([]models.AttendanceEvent, error)
	GetEventsRange(ctx context.Context, employeeID int64, from, to time.Time) ([]models.AttendanceEvent, error)
	GetDayAggregate(ctx context.Context, employeeID int64, date string) (*models.DayAggregate, error)
	UpsertDayAggregate(ctx context.Context, agg models.DayAggregate) error
	ListOpenAggregates(ctx context.Context, date string) ([]models.DayAggregate, error)
	ListAggregatesRange(ctx context.Context, from, to string) ([]models.DayAggregate, error)
}

// RegistrationManager defines the one-time token flow that turns an
// unknown card into a registered employee with a bound card.
type RegistrationManager interface {
	CreateRegistrationRequest(ctx context.Context, token, cardSerial string, expiresAt time.Time) error
	GetRegistrationRequest(ctx context.Context, token string) (models.RegistrationRequest, error)
	ConsumeRegistrationRequest(ctx context.Context, token, employeeName string, now time.Time) (models.Employee, error)
}

// NewRepository creates a new instance of Repository with the provided
// Database and metrics. It returns a pointer to the newly created Repository.
func NewRepository(db Database, mtr *metrics.Metrics) *Repository {
	return &Repository{db: db, mtr: mtr}
}

// observe records the duration of one query under the given label.
func (r *Repository) observe(start time.Time, queryType string) {
	if r.mtr != nil {
		r.mtr.DBQueryDuration.WithLabelValues(queryType).Observe(time.Since(start).Seconds())
	}
}
