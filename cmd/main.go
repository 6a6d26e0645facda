package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/janus/config"
	"github.com/UnknownOlympus/janus/internal/attendance"
	"github.com/UnknownOlympus/janus/internal/bot"
	"github.com/UnknownOlympus/janus/internal/calendar"
	"github.com/UnknownOlympus/janus/internal/metrics"
	"github.com/UnknownOlympus/janus/internal/repository"
	"github.com/UnknownOlympus/janus/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// Initialize the database connection.
	dtb, err := repository.NewDatabase(
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
	)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	// Initialize the redis client.
	const redisTimeout = 5 * time.Second
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, redisTimeout)
	if err = redisClient.Ping(pingCtx).Err(); err != nil {
		cancel()
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	cancel()

	// Create a new repository instance using the database connection.
	repo := repository.NewRepository(dtb, appMetrics)

	// Resolve the deployment timezone all scans are interpreted in.
	loc, err := time.LoadLocation(cfg.Attendance.Timezone)
	if err != nil {
		log.Fatalf("Failed to load timezone %q: %v", cfg.Attendance.Timezone, err)
	}

	// Assemble the attendance core.
	svc := attendance.NewService(
		logger,
		repo,
		calendar.NewWeekends(),
		appMetrics,
		loc,
		cfg.Attendance.DuplicateWindow,
	)

	// Initialize the bot and attach it as the scan notification sink.
	janusBot, err := bot.NewBot(
		logger,
		repo,
		repo,
		repo,
		svc,
		redisClient,
		appMetrics,
		cfg.Telegram.Token,
		cfg.Telegram.PollerTimeout,
		cfg.Telegram.AdminChatID,
		cfg.Attendance.AutoCloseCutoff,
	)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}
	svc.SetNotifier(janusBot)

	defer stop() // Ensure stop is called to release resources related to signal handling.
	defer dtb.Close()

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Start the bot in a goroutine to allow main to listen for signals.
	go janusBot.Start()

	// Start the daily auto-close sweeper.
	sweeper := attendance.NewSweeper(logger, svc, cfg.Attendance.AutoCloseCutoff, cfg.Attendance.SweepHour)
	go sweeper.Run(ctx)

	// Start the HTTP server with the scan ingress and monitoring endpoints.
	go server.Start(ctx, logger, reg, dtb, redisClient, svc, cfg.Server.Port)

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	// Log that a shutdown signal has been received.
	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	// Stop the bot gracefully.
	janusBot.Stop()

	// Log graceful shutdown completion.
	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)

		log.Error(
			"The env parameter was not specified	 or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
