package repository_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/UnknownOlympus/janus/internal/metrics"
	"github.com/UnknownOlympus/janus/internal/repository"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (pgxmock.PgxPoolIface, *repository.Repository) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)

	return mock, repository.NewRepository(mock, metrics.NewMetrics(prometheus.NewRegistry()))
}

func TestGetCardBySerial(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	serial := "04A1B2C3"

	t.Run("success - card found", func(t *testing.T) {
		t.Parallel()
		mock, repo := newTestRepo(t)
		defer mock.Close()

		employeeID := int64(7)
		createdAt := time.Now()
		mock.ExpectQuery(regexp.QuoteMeta(repository.GetCardBySerialSQL)).
			WithArgs(serial).
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "serial", "employee_id", "description", "is_active", "created_at", "last_used_at",
			}).AddRow(int64(1), serial, &employeeID, "main badge", true, createdAt, (*time.Time)(nil)))

		card, err := repo.GetCardBySerial(ctx, serial)

		require.NoError(t, err)
		assert.Equal(t, serial, card.Serial)
		require.NotNil(t, card.EmployeeID)
		assert.Equal(t, employeeID, *card.EmployeeID)
		assert.True(t, card.IsActive)
		assert.Nil(t, card.LastUsedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - card not found", func(t *testing.T) {
		t.Parallel()
		mock, repo := newTestRepo(t)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta(repository.GetCardBySerialSQL)).
			WithArgs("DEADBEEF").
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "serial", "employee_id", "description", "is_active", "created_at", "last_used_at",
			}))

		_, err := repo.GetCardBySerial(ctx, "DEADBEEF")

		require.ErrorIs(t, err, repository.ErrCardNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - query failed", func(t *testing.T) {
		t.Parallel()
		mock, repo := newTestRepo(t)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta(repository.GetCardBySerialSQL)).
			WithArgs(serial).
			WillReturnError(assert.AnError)

		_, err := repo.GetCardBySerial(ctx, serial)

		require.Error(t, err)
		require.ErrorContains(t, err, "failed to get card")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBindCard(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	query := "UPDATE rfid_cards SET employee_id = $2 WHERE serial = $1"

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mock, repo := newTestRepo(t)
		defer mock.Close()

		mock.ExpectExec(regexp.QuoteMeta(query)).
			WithArgs("04A1B2C3", int64(7)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.BindCard(ctx, "04A1B2C3", 7))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - unknown serial", func(t *testing.T) {
		t.Parallel()
		mock, repo := newTestRepo(t)
		defer mock.Close()

		mock.ExpectExec(regexp.QuoteMeta(query)).
			WithArgs("FFFFFFFF", int64(7)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.BindCard(ctx, "FFFFFFFF", 7)

		require.ErrorIs(t, err, repository.ErrCardNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTouchCardUsage(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	query := "UPDATE rfid_cards SET last_used_at = $2 WHERE serial = $1"
	usedAt := time.Now()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mock, repo := newTestRepo(t)
		defer mock.Close()

		mock.ExpectExec(regexp.QuoteMeta(query)).
			WithArgs("04A1B2C3", usedAt).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.TouchCardUsage(ctx, "04A1B2C3", usedAt))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - exec failed", func(t *testing.T) {
		t.Parallel()
		mock, repo := newTestRepo(t)
		defer mock.Close()

		mock.ExpectExec(regexp.QuoteMeta(query)).
			WithArgs("04A1B2C3", usedAt).
			WillReturnError(assert.AnError)

		err := repo.TouchCardUsage(ctx, "04A1B2C3", usedAt)

		require.Error(t, err)
		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
