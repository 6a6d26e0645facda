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

var aggregateColumns = []string{
	"employee_id", "date", "first_arrival", "last_departure", "minutes_worked",
	"is_weekend", "is_holiday", "is_closed", "auto_closed", "updated_at",
}

func TestGetDayAggregate(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	employeeID := int64(7)
	date := "2024-05-10"

	t.Run("success - aggregate exists", func(t *testing.T) {
		t.Parallel()
		mock, repo := newTestRepo(t)
		defer mock.Close()

		arrival := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
		mock.ExpectQuery(regexp.QuoteMeta(repository.GetDayAggregateSQL)).
			WithArgs(employeeID, date).
			WillReturnRows(pgxmock.NewRows(aggregateColumns).
				AddRow(employeeID, date, &arrival, (*time.Time)(nil), 0, false, false, false, false, time.Now()))

		agg, err := repo.GetDayAggregate(ctx, employeeID, date)

		require.NoError(t, err)
		require.NotNil(t, agg)
		assert.Equal(t, employeeID, agg.EmployeeID)
		require.NotNil(t, agg.FirstArrival)
		assert.True(t, arrival.Equal(*agg.FirstArrival))
		assert.Nil(t, agg.LastDeparture)
		assert.False(t, agg.Closed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success - no aggregate yet", func(t *testing.T) {
		t.Parallel()
		mock, repo := newTestRepo(t)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta(repository.GetDayAggregateSQL)).
			WithArgs(employeeID, date).
			WillReturnRows(pgxmock.NewRows(aggregateColumns))

		agg, err := repo.GetDayAggregate(ctx, employeeID, date)

		require.NoError(t, err)
		assert.Nil(t, agg)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - query failed", func(t *testing.T) {
		t.Parallel()
		mock, repo := newTestRepo(t)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta(repository.GetDayAggregateSQL)).
			WithArgs(employeeID, date).
			WillReturnError(assert.AnError)

		_, err := repo.GetDayAggregate(ctx, employeeID, date)

		require.Error(t, err)
		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpsertDayAggregate(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	arrival := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	departure := time.Date(2024, 5, 10, 18, 30, 0, 0, time.UTC)
	agg := models.DayAggregate{
		EmployeeID:    7,
		Date:          "2024-05-10",
		FirstArrival:  &arrival,
		LastDeparture: &departure,
		MinutesWorked: 570,
		Closed:        true,
	}

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mock, repo := newTestRepo(t)
		defer mock.Close()

		mock.ExpectExec(regexp.QuoteMeta(repository.UpsertDayAggregateSQL)).
			WithArgs(agg.EmployeeID, agg.Date, agg.FirstArrival, agg.LastDeparture,
				agg.MinutesWorked, agg.Weekend, agg.Holiday, agg.Closed, agg.AutoClosed).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.UpsertDayAggregate(ctx, agg))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - exec failed", func(t *testing.T) {
		t.Parallel()
		mock, repo := newTestRepo(t)
		defer mock.Close()

		mock.ExpectExec(regexp.QuoteMeta(repository.UpsertDayAggregateSQL)).
			WithArgs(agg.EmployeeID, agg.Date, agg.FirstArrival, agg.LastDeparture,
				agg.MinutesWorked, agg.Weekend, agg.Holiday, agg.Closed, agg.AutoClosed).
			WillReturnError(assert.AnError)

		err := repo.UpsertDayAggregate(ctx, agg)

		require.Error(t, err)
		require.ErrorContains(t, err, "failed to upsert day aggregate")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListOpenAggregates(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	date := "2024-05-10"

	t.Run("success - open aggregates found", func(t *testing.T) {
		t.Parallel()
		mock, repo := newTestRepo(t)
		defer mock.Close()

		arrival := time.Date(2024, 5, 10, 8, 45, 0, 0, time.UTC)
		mock.ExpectQuery(regexp.QuoteMeta(repository.ListOpenAggregatesSQL)).
			WithArgs(date).
			WillReturnRows(pgxmock.NewRows(aggregateColumns).
				AddRow(int64(7), date, &arrival, (*time.Time)(nil), 0, false, false, false, false, time.Now()).
				AddRow(int64(9), date, &arrival, (*time.Time)(nil), 0, false, false, false, false, time.Now()))

		aggs, err := repo.ListOpenAggregates(ctx, date)

		require.NoError(t, err)
		require.Len(t, aggs, 2)
		assert.Equal(t, int64(7), aggs[0].EmployeeID)
		assert.Equal(t, int64(9), aggs[1].EmployeeID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success - nothing open", func(t *testing.T) {
		t.Parallel()
		mock, repo := newTestRepo(t)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta(repository.ListOpenAggregatesSQL)).
			WithArgs(date).
			WillReturnRows(pgxmock.NewRows(aggregateColumns))

		aggs, err := repo.ListOpenAggregates(ctx, date)

		require.NoError(t, err)
		assert.Empty(t, aggs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - rows error", func(t *testing.T) {
		t.Parallel()
		mock, repo := newTestRepo(t)
		defer mock.Close()

		arrival := time.Now()
		mock.ExpectQuery(regexp.QuoteMeta(repository.ListOpenAggregatesSQL)).
			WithArgs(date).
			WillReturnRows(pgxmock.NewRows(aggregateColumns).
				AddRow(int64(7), date, &arrival, (*time.Time)(nil), 0, false, false, false, false, time.Now()).
				RowError(1, assert.AnError))

		_, err := repo.ListOpenAggregates(ctx, date)

		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
