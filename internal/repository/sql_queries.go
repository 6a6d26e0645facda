package repository

// GetCardBySerialSQL selects one card by its normalized serial.
const GetCardBySerialSQL = `
	SELECT id, serial, employee_id, description, is_active, created_at, last_used_at
	FROM rfid_cards
	WHERE serial = $1;
`

// GetEventsForDaySQL selects an employee's events for one calendar day,
// ordered by timestamp. The classifier depends on this ordering.
const GetEventsForDaySQL = `
	SELECT id, employee_id, card_serial, kind, event_time, event_date, note, is_manual, created_at
	FROM attendance_events
	WHERE employee_id = $1 AND event_date = $2
	ORDER BY event_time;
`

// InsertEventSQL appends one immutable attendance event.
const InsertEventSQL = `
	INSERT INTO attendance_events (employee_id, card_serial, kind, event_time, event_date, note, is_manual)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, created_at;
`

// UpsertDayAggregateSQL writes the derived per-day summary; the
// (employee_id, date) pair is the natural key.
const UpsertDayAggregateSQL = `
	INSERT INTO daily_attendance
		(employee_id, date, first_arrival, last_departure, minutes_worked,
		 is_weekend, is_holiday, is_closed, auto_closed, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
	ON CONFLICT (employee_id, date) DO UPDATE SET
		first_arrival = EXCLUDED.first_arrival,
		last_departure = EXCLUDED.last_departure,
		minutes_worked = EXCLUDED.minutes_worked,
		is_closed = EXCLUDED.is_closed,
		auto_closed = EXCLUDED.auto_closed,
		updated_at = now();
`

// ListOpenAggregatesSQL selects the aggregates the sweeper closes: an
// arrival is set, no departure yet, day not closed.
const ListOpenAggregatesSQL = `
	SELECT employee_id, date, first_arrival, last_departure, minutes_worked,
	       is_weekend, is_holiday, is_closed, auto_closed, updated_at
	FROM daily_attendance
	WHERE date = $1 AND first_arrival IS NOT NULL AND is_closed = FALSE;
`

// GetDayAggregateSQL selects one aggregate by its natural key.
const GetDayAggregateSQL = `
	SELECT employee_id, date, first_arrival, last_departure, minutes_worked,
	       is_weekend, is_holiday, is_closed, auto_closed, updated_at
	FROM daily_attendance
	WHERE employee_id = $1 AND date = $2;
`
