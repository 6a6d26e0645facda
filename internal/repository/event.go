package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/UnknownOlympus/janus/internal/models"
	"github.com/jackc/pgx/v5"
)

// InsertEvent appends one immutable attendance event and returns the
// stored value with its assigned ID.
func (r *Repository) InsertEvent(
	ctx context.Context,
	event models.AttendanceEvent,
) (models.AttendanceEvent, error) {
	defer r.observe(time.Now(), "insert_event")

	err := r.db.QueryRow(ctx, InsertEventSQL,
		event.EmployeeID, event.CardSerial, event.Kind, event.Timestamp,
		event.Date, event.Note, event.Manual,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return models.AttendanceEvent{}, fmt.Errorf("failed to insert attendance event: %w", err)
	}

	return event, nil
}

func scanEvents(rows pgx.Rows) ([]models.AttendanceEvent, error) {
	defer rows.Close()

	var events []models.AttendanceEvent
	for rows.Next() {
		var event models.AttendanceEvent
		if err := rows.Scan(
			&event.ID, &event.EmployeeID, &event.CardSerial, &event.Kind,
			&event.Timestamp, &event.Date, &event.Note, &event.Manual, &event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read event rows: %w", err)
	}

	return events, nil
}

// GetEventsForDay returns the employee's events for one calendar day in
// timestamp order.
func (r *Repository) GetEventsForDay(
	ctx context.Context,
	employeeID int64,
	date string,
) ([]models.AttendanceEvent, error) {
	defer r.observe(time.Now(), "get_events_day")

	rows, err := r.db.Query(ctx, GetEventsForDaySQL, employeeID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query events for day: %w", err)
	}

	return scanEvents(rows)
}

// GetEventsRange returns the employee's events in [from, to), ordered by
// timestamp.
func (r *Repository) GetEventsRange(
	ctx context.Context,
	employeeID int64,
	from, to time.Time,
) ([]models.AttendanceEvent, error) {
	defer r.observe(time.Now(), "get_events_range")

	query := `
		SELECT id, employee_id, card_serial, kind, event_time, event_date, note, is_manual, created_at
		FROM attendance_events
		WHERE employee_id = $1 AND event_time >= $2 AND event_time < $3
		ORDER BY event_time;
	`
	rows, err := r.db.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query events range: %w", err)
	}

	return scanEvents(rows)
}
