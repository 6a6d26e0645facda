package repository_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/UnknownOlympus/janus/internal/models"
	"github.com/UnknownOlympus/janus/internal/repository"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertEvent(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	ts := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	event := models.AttendanceEvent{
		EmployeeID: 7,
		CardSerial: "04A1B2C3",
		Kind:       models.EventArrival,
		Timestamp:  ts,
		Date:       "2024-05-10",
	}

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mock, repo := newTestRepo(t)
		defer mock.Close()

		createdAt := time.Now()
		mock.ExpectQuery(regexp.QuoteMeta(repository.InsertEventSQL)).
			WithArgs(event.EmployeeID, event.CardSerial, event.Kind, event.Timestamp,
				event.Date, event.Note, event.Manual).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), createdAt))

		stored, err := repo.InsertEvent(ctx, event)

		require.NoError(t, err)
		assert.Equal(t, int64(42), stored.ID)
		assert.Equal(t, models.EventArrival, stored.Kind)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - insert failed", func(t *testing.T) {
		t.Parallel()
		mock, repo := newTestRepo(t)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta(repository.InsertEventSQL)).
			WithArgs(event.EmployeeID, event.CardSerial, event.Kind, event.Timestamp,
				event.Date, event.Note, event.Manual).
			WillReturnError(assert.AnError)

		_, err := repo.InsertEvent(ctx, event)

		require.Error(t, err)
		require.ErrorContains(t, err, "failed to insert attendance event")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetEventsForDay(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	employeeID := int64(7)
	date := "2024-05-10"
	columns := []string{
		"id", "employee_id", "card_serial", "kind", "event_time",
		"event_date", "note", "is_manual", "created_at",
	}

	t.Run("success - ordered events", func(t *testing.T) {
		t.Parallel()
		mock, repo := newTestRepo(t)
		defer mock.Close()

		arrival := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
		departure := time.Date(2024, 5, 10, 18, 30, 0, 0, time.UTC)
		mock.ExpectQuery(regexp.QuoteMeta(repository.GetEventsForDaySQL)).
			WithArgs(employeeID, date).
			WillReturnRows(pgxmock.NewRows(columns).
				AddRow(int64(1), employeeID, "04A1B2C3", models.EventArrival, arrival, date, "", false, arrival).
				AddRow(int64(2), employeeID, "04A1B2C3", models.EventDeparture, departure, date, "", false, departure))

		events, err := repo.GetEventsForDay(ctx, employeeID, date)

		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, models.EventArrival, events[0].Kind)
		assert.Equal(t, models.EventDeparture, events[1].Kind)
		assert.True(t, events[0].Timestamp.Before(events[1].Timestamp))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success - empty day", func(t *testing.T) {
		t.Parallel()
		mock, repo := newTestRepo(t)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta(repository.GetEventsForDaySQL)).
			WithArgs(employeeID, date).
			WillReturnRows(pgxmock.NewRows(columns))

		events, err := repo.GetEventsForDay(ctx, employeeID, date)

		require.NoError(t, err)
		assert.Empty(t, events)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - scan failed", func(t *testing.T) {
		t.Parallel()
		mock, repo := newTestRepo(t)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta(repository.GetEventsForDaySQL)).
			WithArgs(employeeID, date).
			WillReturnRows(pgxmock.NewRows(columns).
				AddRow("bad-id", employeeID, "04A1B2C3", models.EventArrival, time.Now(), date, "", false, time.Now()))

		_, err := repo.GetEventsForDay(ctx, employeeID, date)

		require.Error(t, err)
		require.ErrorContains(t, err, "failed to scan event row")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - query failed", func(t *testing.T) {
		t.Parallel()
		mock, repo := newTestRepo(t)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta(repository.GetEventsForDaySQL)).
			WithArgs(employeeID, date).
			WillReturnError(assert.AnError)

		_, err := repo.GetEventsForDay(ctx, employeeID, date)

		require.Error(t, err)
		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
