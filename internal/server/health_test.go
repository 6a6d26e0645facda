package server_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/UnknownOlympus/janus/internal/server"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type MockDBPinger struct {
	ShouldFail bool
}

func (m *MockDBPinger) Ping(_ context.Context) error {
	if m.ShouldFail {
		return errors.New("mock db error")
	}
	return nil
}

type MockRedisPinger struct {
	ShouldFail bool
}

func (m *MockRedisPinger) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if m.ShouldFail {
		cmd.SetErr(errors.New("mock redis error"))
	}
	return cmd
}

func TestHealthChecker(t *testing.T) {
	t.Parallel()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	t.Run("all systems ok", func(t *testing.T) {
		t.Parallel()

		healthChecker := server.NewHealthChecker(logger, &MockDBPinger{}, &MockRedisPinger{})
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rr := httptest.NewRecorder()
		healthChecker.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		expectedBody := `{"database":"ok", "redis":"ok"}`
		require.JSONEq(t, expectedBody, rr.Body.String())
	})

	t.Run("database unavailable", func(t *testing.T) {
		t.Parallel()

		healthChecker := server.NewHealthChecker(logger, &MockDBPinger{ShouldFail: true}, &MockRedisPinger{})
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rr := httptest.NewRecorder()
		healthChecker.ServeHTTP(rr, req)

		require.Equal(t, http.StatusServiceUnavailable, rr.Code)
		expectedBody := `{"database":"unavailable", "redis":"ok"}`
		require.JSONEq(t, expectedBody, rr.Body.String())
	})

	t.Run("redis unavailable", func(t *testing.T) {
		t.Parallel()

		healthChecker := server.NewHealthChecker(logger, &MockDBPinger{}, &MockRedisPinger{ShouldFail: true})
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rr := httptest.NewRecorder()
		healthChecker.ServeHTTP(rr, req)

		require.Equal(t, http.StatusServiceUnavailable, rr.Code)
		expectedBody := `{"database":"ok", "redis":"unavailable"}`
		require.JSONEq(t, expectedBody, rr.Body.String())
	})
}
