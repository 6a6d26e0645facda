package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/janus/internal/models"
)

// cutoffLayout is the clock format of the auto-close cutoff ("17:00").
const cutoffLayout = "15:04"

// Sweep closes every open day aggregate of the target day by synthesizing
// a departure at the configured cutoff. It is idempotent: a second run
// finds nothing open. A day with zero records returns 0, not an error.
//
// The sweep takes the same per-employee lock as the scan path and
// re-checks the aggregate right before writing, so a late real departure
// scan always wins and the sweeper's close becomes a no-op.
func (s *Service) Sweep(ctx context.Context, date, cutoff string) (int, error) {
	clock, err := time.ParseInLocation(cutoffLayout, cutoff, s.loc)
	if err != nil {
		return 0, fmt.Errorf("invalid auto-close cutoff %q: %w", cutoff, err)
	}
	day, err := time.ParseInLocation(models.DateLayout, date, s.loc)
	if err != nil {
		return 0, fmt.Errorf("invalid sweep date %q: %w", date, err)
	}
	departure := time.Date(day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), 0, 0, s.loc)

	open, err := s.storage.ListOpenAggregates(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("failed to list open aggregates for %s: %w", date, err)
	}

	closed := 0
	for _, candidate := range open {
		lock := s.employeeLock(candidate.EmployeeID)
		lock.Lock()

		// A real departure may have landed between the listing and now.
		current, err := s.storage.GetDayAggregate(ctx, candidate.EmployeeID, date)
		if err != nil {
			lock.Unlock()
			return closed, fmt.Errorf("failed to re-read aggregate for %d: %w", candidate.EmployeeID, err)
		}
		if current == nil || current.Closed || current.FirstArrival == nil {
			lock.Unlock()
			continue
		}

		dep := departure
		current.LastDeparture = &dep
		current.Closed = true
		current.AutoClosed = true
		current.MinutesWorked = MinutesWorked(current.FirstArrival, current.LastDeparture)

		if err = s.storage.UpsertDayAggregate(ctx, *current); err != nil {
			lock.Unlock()
			return closed, fmt.Errorf("failed to close aggregate for %d: %w", current.EmployeeID, err)
		}
		lock.Unlock()

		closed++
		s.metrics.AutoClosedDays.Inc()
		s.log.InfoContext(ctx, "Day auto-closed",
			"employee_id", current.EmployeeID, "date", date, "departure", cutoff)
	}

	return closed, nil
}

// Sweeper runs the auto-close once per day for the previous calendar day.
type Sweeper struct {
	log    *slog.Logger
	svc    *Service
	cutoff string
	hour   int
}

// NewSweeper creates the daily auto-close scheduler. hour is the local
// hour (0-23) at which the previous day is swept.
func NewSweeper(log *slog.Logger, svc *Service, cutoff string, hour int) *Sweeper {
	return &Sweeper{log: log, svc: svc, cutoff: cutoff, hour: hour}
}

// Run blocks until ctx is done, sweeping the previous day at the
// configured hour.
func (sw *Sweeper) Run(ctx context.Context) {
	for {
		now := sw.svc.now().In(sw.svc.loc)
		next := time.Date(now.Year(), now.Month(), now.Day(), sw.hour, 0, 0, 0, sw.svc.loc)
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		target := next.AddDate(0, 0, -1).Format(models.DateLayout)
		closed, err := sw.svc.Sweep(ctx, target, sw.cutoff)
		if err != nil {
			sw.log.ErrorContext(ctx, "Auto-close sweep failed", "date", target, "error", err)
			continue
		}
		sw.log.InfoContext(ctx, "Auto-close sweep finished", "date", target, "closed", closed)
	}
}
