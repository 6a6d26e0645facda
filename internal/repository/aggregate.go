package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UnknownOlympus/janus/internal/models"
	"github.com/jackc/pgx/v5"
)

func scanAggregate(row pgx.Row) (models.DayAggregate, error) {
	var agg models.DayAggregate
	err := row.Scan(
		&agg.EmployeeID, &agg.Date, &agg.FirstArrival, &agg.LastDeparture,
		&agg.MinutesWorked, &agg.Weekend, &agg.Holiday, &agg.Closed,
		&agg.AutoClosed, &agg.UpdatedAt,
	)
	return agg, err
}

// GetDayAggregate retrieves the summary for one employee and day.
// A missing row yields (nil, nil): the aggregate simply does not exist yet.
func (r *Repository) GetDayAggregate(
	ctx context.Context,
	employeeID int64,
	date string,
) (*models.DayAggregate, error) {
	defer r.observe(time.Now(), "get_aggregate")

	agg, err := scanAggregate(r.db.QueryRow(ctx, GetDayAggregateSQL, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get day aggregate: %w", err)
	}

	return &agg, nil
}

// UpsertDayAggregate writes the summary keyed by (employee_id, date).
func (r *Repository) UpsertDayAggregate(ctx context.Context, agg models.DayAggregate) error {
	defer r.observe(time.Now(), "upsert_aggregate")

	_, err := r.db.Exec(ctx, UpsertDayAggregateSQL,
		agg.EmployeeID, agg.Date, agg.FirstArrival, agg.LastDeparture,
		agg.MinutesWorked, agg.Weekend, agg.Holiday, agg.Closed, agg.AutoClosed,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert day aggregate: %w", err)
	}

	return nil
}

func collectAggregates(rows pgx.Rows) ([]models.DayAggregate, error) {
	defer rows.Close()

	var aggs []models.DayAggregate
	for rows.Next() {
		agg, err := scanAggregate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan aggregate row: %w", err)
		}
		aggs = append(aggs, agg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read aggregate rows: %w", err)
	}

	return aggs, nil
}

// ListOpenAggregates returns the aggregates of the given day that have an
// arrival but are not closed yet, which is the sweeper's work list.
func (r *Repository) ListOpenAggregates(ctx context.Context, date string) ([]models.DayAggregate, error) {
	defer r.observe(time.Now(), "list_open_aggregates")

	rows, err := r.db.Query(ctx, ListOpenAggregatesSQL, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query open aggregates: %w", err)
	}

	return collectAggregates(rows)
}

// ListAggregatesRange returns all aggregates with date in [from, to],
// ordered by employee and date. Used by the report generator.
func (r *Repository) ListAggregatesRange(ctx context.Context, from, to string) ([]models.DayAggregate, error) {
	defer r.observe(time.Now(), "list_aggregates_range")

	query := `
		SELECT employee_id, date, first_arrival, last_departure, minutes_worked,
		       is_weekend, is_holiday, is_closed, auto_closed, updated_at
		FROM daily_attendance
		WHERE date >= $1 AND date <= $2
		ORDER BY employee_id, date;
	`
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query aggregates range: %w", err)
	}

	return collectAggregates(rows)
}
