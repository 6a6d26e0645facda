package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UnknownOlympus/janus/internal/models"
	"github.com/jackc/pgx/v5"
)

var (
	// ErrTokenNotFound is returned when the registration token does not exist.
	ErrTokenNotFound = errors.New("registration token not found")
	// ErrTokenInvalid is returned when the token is expired or already used.
	ErrTokenInvalid = errors.New("registration token is expired or already used")
)

// CreateRegistrationRequest stores a one-time registration token for an
// unknown card.
func (r *Repository) CreateRegistrationRequest(
	ctx context.Context,
	token, cardSerial string,
	expiresAt time.Time,
) error {
	defer r.observe(time.Now(), "create_registration")

	_, err := r.db.Exec(
		ctx,
		"INSERT INTO registration_requests (token, card_serial, expires_at) VALUES ($1, $2, $3)",
		token, cardSerial, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create registration request: %w", err)
	}

	return nil
}

// GetRegistrationRequest retrieves a registration request by token.
func (r *Repository) GetRegistrationRequest(
	ctx context.Context,
	token string,
) (models.RegistrationRequest, error) {
	defer r.observe(time.Now(), "get_registration")

	var req models.RegistrationRequest
	err := r.db.QueryRow(
		ctx,
		"SELECT token, card_serial, expires_at, used_at, created_at FROM registration_requests WHERE token = $1",
		token,
	).Scan(&req.Token, &req.CardSerial, &req.ExpiresAt, &req.UsedAt, &req.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.RegistrationRequest{}, ErrTokenNotFound
		}
		return models.RegistrationRequest{}, fmt.Errorf("failed to get registration request: %w", err)
	}

	return req, nil
}

// ConsumeRegistrationRequest completes a registration in one transaction:
// validates the token, creates the employee, ensures the card exists and
// binds it, then marks the token used.
func (r *Repository) ConsumeRegistrationRequest(
	ctx context.Context,
	token, employeeName string,
	now time.Time,
) (models.Employee, error) {
	defer r.observe(time.Now(), "consume_registration")

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return models.Employee{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // omitted because checking for errors will not affect the function

	var req models.RegistrationRequest
	err = tx.QueryRow(
		ctx,
		"SELECT token, card_serial, expires_at, used_at, created_at FROM registration_requests WHERE token = $1 FOR UPDATE",
		token,
	).Scan(&req.Token, &req.CardSerial, &req.ExpiresAt, &req.UsedAt, &req.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Employee{}, ErrTokenNotFound
		}
		return models.Employee{}, fmt.Errorf("failed to load registration request: %w", err)
	}
	if !req.IsValid(now) {
		return models.Employee{}, ErrTokenInvalid
	}

	employee := models.Employee{
		Name:                   employeeName,
		NotificationsEnabled:   true,
		ArrivalNotifications:   true,
		DepartureNotifications: true,
		IsActive:               true,
	}
	err = tx.QueryRow(
		ctx,
		`INSERT INTO employees (name, notifications_enabled, arrival_notifications, departure_notifications, is_active)
		 VALUES ($1, TRUE, TRUE, TRUE, TRUE)
		 RETURNING id, created_at`,
		employeeName,
	).Scan(&employee.ID, &employee.CreatedAt)
	if err != nil {
		return models.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}

	_, err = tx.Exec(
		ctx,
		`INSERT INTO rfid_cards (serial, employee_id, is_active) VALUES ($1, $2, TRUE)
		 ON CONFLICT (serial) DO UPDATE SET employee_id = EXCLUDED.employee_id`,
		req.CardSerial, employee.ID,
	)
	if err != nil {
		return models.Employee{}, fmt.Errorf("failed to bind card %s: %w", req.CardSerial, err)
	}

	_, err = tx.Exec(ctx, "UPDATE registration_requests SET used_at = $2 WHERE token = $1", token, now)
	if err != nil {
		return models.Employee{}, fmt.Errorf("failed to mark token used: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Employee{}, fmt.Errorf("failed to commit registration: %w", err)
	}

	return employee, nil
}
