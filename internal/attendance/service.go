package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/janus/internal/calendar"
	"github.com/UnknownOlympus/janus/internal/metrics"
	"github.com/UnknownOlympus/janus/internal/models"
	"github.com/UnknownOlympus/janus/internal/repository"
)

// scanTimeout bounds the read-classify-write sequence of one scan. The
// reader expects a synchronous reply; there is no background queue.
const scanTimeout = 3 * time.Second

// Storage is the persistence boundary of the attendance core. Postgres
// implements it in production; tests supply an in-memory fake. The core
// only needs day-ordered event reads and aggregate upserts.
type Storage interface {
	GetCardBySerial(ctx context.Context, serial string) (models.Card, error)
	GetEmployeeByID(ctx context.Context, id int64) (models.Employee, error)
	InsertEvent(ctx context.Context, event models.AttendanceEvent) (models.AttendanceEvent, error)
	GetEventsForDay(ctx context.Context, employeeID int64, date string) ([]models.AttendanceEvent, error)
	GetEventsRange(ctx context.Context, employeeID int64, from, to time.Time) ([]models.AttendanceEvent, error)
	GetDayAggregate(ctx context.Context, employeeID int64, date string) (*models.DayAggregate, error)
	UpsertDayAggregate(ctx context.Context, agg models.DayAggregate) error
	ListOpenAggregates(ctx context.Context, date string) ([]models.DayAggregate, error)
	ListAggregatesRange(ctx context.Context, from, to string) ([]models.DayAggregate, error)
	TouchCardUsage(ctx context.Context, serial string, usedAt time.Time) error
}

// MonthlyOverview is the per-day breakdown of one employee's month.
type MonthlyOverview struct {
	EmployeeID   int64
	Year         int
	Month        time.Month
	Days         []models.DayAggregate
	DaysPresent  int
	TotalMinutes int
}

// Notifier receives attendance facts after they are persisted. Delivery
// is fire-and-forget: a notifier failure never rolls back or delays the
// attendance write.
type Notifier interface {
	EventRecorded(employee models.Employee, event models.AttendanceEvent)
	UnknownCard(serial string, ts time.Time)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) EventRecorded(_ models.Employee, _ models.AttendanceEvent) {}
func (NopNotifier) UnknownCard(_ string, _ time.Time)                         {}

// Service is the attendance core: it owns classification, aggregation
// and the per-employee write serialization. All collaborators are
// injected; the service holds no ambient globals.
type Service struct {
	log        *slog.Logger
	storage    Storage
	classifier *Classifier
	aggregator *Aggregator
	notifier   Notifier
	metrics    *metrics.Metrics
	loc        *time.Location
	now        func() time.Time

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// Option overrides a Service collaborator.
type Option func(*Service)

// WithNotifier attaches a notification sink.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithClock overrides the wall clock, used by tests and the sweeper.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates the attendance service.
func NewService(
	log *slog.Logger,
	storage Storage,
	cal calendar.Calendar,
	mtr *metrics.Metrics,
	loc *time.Location,
	duplicateWindow time.Duration,
	opts ...Option,
) *Service {
	svc := &Service{
		log:        log,
		storage:    storage,
		classifier: NewClassifier(duplicateWindow),
		aggregator: NewAggregator(cal, loc),
		notifier:   NopNotifier{},
		metrics:    mtr,
		loc:        loc,
		now:        time.Now,
		locks:      make(map[int64]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// SetNotifier attaches a notification sink after construction. It exists
// for wiring cycles where the notifier itself needs the service; call it
// before the first scan is accepted.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// employeeLock returns the mutex serializing writes for one employee.
// Scans for different employees proceed fully in parallel.
func (s *Service) employeeLock(employeeID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[employeeID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[employeeID] = lock
	}
	return lock
}

// RecordScan processes one raw reader scan: normalize the serial, find
// the card and its employee, classify against the day's events, persist
// the event and fold it into the day aggregate. The reply is definite
// and synchronous; unknown and unassigned cards are outcomes, not errors.
func (s *Service) RecordScan(ctx context.Context, serial string, ts time.Time) (models.ScanResult, error) {
	ctx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()

	serial = models.NormalizeSerial(serial)
	ts = ts.In(s.loc)

	card, err := s.storage.GetCardBySerial(ctx, serial)
	if err != nil {
		if errors.Is(err, repository.ErrCardNotFound) {
			s.log.WarnContext(ctx, "Scan from unknown card", "serial", serial)
			s.metrics.ScansReceived.WithLabelValues(string(models.ScanUnknownCard)).Inc()
			go s.notifier.UnknownCard(serial, ts)
			return models.ScanResult{Status: models.ScanUnknownCard, Serial: serial}, nil
		}
		return models.ScanResult{}, fmt.Errorf("failed to look up card %s: %w", serial, err)
	}

	if card.EmployeeID == nil || !card.IsActive {
		s.log.WarnContext(ctx, "Scan from unassigned card", "serial", serial)
		s.metrics.ScansReceived.WithLabelValues(string(models.ScanUnassignedCard)).Inc()
		go s.notifier.UnknownCard(serial, ts)
		return models.ScanResult{Status: models.ScanUnassignedCard, Serial: serial}, nil
	}

	employeeID := *card.EmployeeID
	employee, err := s.storage.GetEmployeeByID(ctx, employeeID)
	if err != nil {
		return models.ScanResult{}, fmt.Errorf("failed to get employee %d: %w", employeeID, err)
	}

	// Classification reads the latest prior event and is not commutative,
	// so the read-classify-write sequence is serialized per employee.
	lock := s.employeeLock(employeeID)
	lock.Lock()
	defer lock.Unlock()

	date := ts.Format(models.DateLayout)
	events, err := s.storage.GetEventsForDay(ctx, employeeID, date)
	if err != nil {
		return models.ScanResult{}, fmt.Errorf("failed to load events for %d on %s: %w", employeeID, date, err)
	}

	decision := s.classifier.Classify(ts, events)
	if decision.Duplicate {
		s.log.InfoContext(ctx, "Duplicate scan ignored",
			"employee", employee.Name, "serial", serial, "kind", decision.Kind)
		s.metrics.ScansReceived.WithLabelValues(string(models.ScanDuplicate)).Inc()
		return models.ScanResult{
			Status:    models.ScanDuplicate,
			Serial:    serial,
			Kind:      decision.Kind,
			LocalTime: ts.Format("15:04"),
			Date:      date,
		}, nil
	}

	event := models.AttendanceEvent{
		EmployeeID: employeeID,
		CardSerial: serial,
		Kind:       decision.Kind,
		Timestamp:  ts,
		Date:       date,
	}
	stored, err := s.storage.InsertEvent(ctx, event)
	if err != nil {
		return models.ScanResult{}, fmt.Errorf("failed to insert attendance event: %w", err)
	}

	agg, err := s.storage.GetDayAggregate(ctx, employeeID, date)
	if err != nil {
		return models.ScanResult{}, fmt.Errorf("failed to get day aggregate: %w", err)
	}
	updated := s.aggregator.Apply(agg, stored)
	if err = s.storage.UpsertDayAggregate(ctx, updated); err != nil {
		return models.ScanResult{}, fmt.Errorf("failed to upsert day aggregate: %w", err)
	}

	if err = s.storage.TouchCardUsage(ctx, serial, ts); err != nil {
		s.log.WarnContext(ctx, "Failed to update card usage", "serial", serial, "error", err)
	}

	s.metrics.ScansReceived.WithLabelValues(string(models.ScanRecorded)).Inc()
	s.metrics.EventsRecorded.WithLabelValues(string(stored.Kind)).Inc()
	s.log.InfoContext(ctx, "Attendance event recorded",
		"employee", employee.Name, "kind", stored.Kind, "time", ts.Format("15:04"))

	go s.notifier.EventRecorded(employee, stored)

	return models.ScanResult{
		Status:       models.ScanRecorded,
		Serial:       serial,
		EmployeeName: employee.Name,
		Kind:         stored.Kind,
		LocalTime:    ts.Format("15:04"),
		Date:         date,
	}, nil
}

// DaySummary returns the aggregate and the ordered raw events for one
// employee and day. A day with no data yields a summary with a nil
// aggregate, not an error.
func (s *Service) DaySummary(ctx context.Context, employeeID int64, date string) (models.DaySummary, error) {
	employee, err := s.storage.GetEmployeeByID(ctx, employeeID)
	if err != nil {
		return models.DaySummary{}, fmt.Errorf("failed to get employee %d: %w", employeeID, err)
	}

	events, err := s.storage.GetEventsForDay(ctx, employeeID, date)
	if err != nil {
		return models.DaySummary{}, fmt.Errorf("failed to load events: %w", err)
	}

	agg, err := s.storage.GetDayAggregate(ctx, employeeID, date)
	if err != nil {
		return models.DaySummary{}, fmt.Errorf("failed to load day aggregate: %w", err)
	}

	summary := models.DaySummary{
		EmployeeID:   employeeID,
		EmployeeName: employee.Name,
		Date:         date,
		Aggregate:    agg,
		Events:       events,
	}
	if agg != nil {
		summary.Present = agg.FirstArrival != nil && agg.LastDeparture == nil
	}

	return summary, nil
}

// Monthly returns the employee's day aggregates for one calendar month
// with presence and minute totals. Days with no arrival are skipped.
func (s *Service) Monthly(ctx context.Context, employeeID int64, year int, month time.Month) (MonthlyOverview, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, s.loc)
	last := first.AddDate(0, 1, -1)

	aggs, err := s.storage.ListAggregatesRange(
		ctx,
		first.Format(models.DateLayout),
		last.Format(models.DateLayout),
	)
	if err != nil {
		return MonthlyOverview{}, fmt.Errorf("failed to list month aggregates: %w", err)
	}

	overview := MonthlyOverview{EmployeeID: employeeID, Year: year, Month: month}
	for _, agg := range aggs {
		if agg.EmployeeID != employeeID || agg.FirstArrival == nil {
			continue
		}
		overview.Days = append(overview.Days, agg)
		overview.DaysPresent++
		overview.TotalMinutes += agg.MinutesWorked
	}

	return overview, nil
}

// Events returns the employee's events in the half-open range [from, to),
// ordered by timestamp.
func (s *Service) Events(ctx context.Context, employeeID int64, from, to time.Time) ([]models.AttendanceEvent, error) {
	events, err := s.storage.GetEventsRange(ctx, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load events range: %w", err)
	}
	return events, nil
}

// Location returns the deployment timezone all timestamps are kept in.
func (s *Service) Location() *time.Location {
	return s.loc
}
