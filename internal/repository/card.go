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
	// ErrCardNotFound is returned when no card with the given serial is registered.
	ErrCardNotFound = errors.New("card with this serial not found")
	// ErrCardExists is returned when a card with the given serial already exists.
	ErrCardExists = errors.New("card with this serial already exists")
)

// GetCardBySerial retrieves a card by its normalized serial number.
// It returns ErrCardNotFound when the serial is not registered.
func (r *Repository) GetCardBySerial(ctx context.Context, serial string) (models.Card, error) {
	defer r.observe(time.Now(), "get_card")

	var card models.Card
	err := r.db.QueryRow(ctx, GetCardBySerialSQL, serial).Scan(
		&card.ID, &card.Serial, &card.EmployeeID, &card.Description,
		&card.IsActive, &card.CreatedAt, &card.LastUsedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Card{}, ErrCardNotFound
		}
		return models.Card{}, fmt.Errorf("failed to get card by serial: %w", err)
	}

	return card, nil
}

// CreateCard registers a new, unbound card. The serial must already be
// normalized by the caller.
func (r *Repository) CreateCard(ctx context.Context, serial, description string) (models.Card, error) {
	defer r.observe(time.Now(), "create_card")

	query := `
		INSERT INTO rfid_cards (serial, description, is_active)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (serial) DO NOTHING
		RETURNING id, created_at;
	`
	card := models.Card{Serial: serial, Description: description, IsActive: true}
	err := r.db.QueryRow(ctx, query, serial, description).Scan(&card.ID, &card.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Card{}, ErrCardExists
		}
		return models.Card{}, fmt.Errorf("failed to create card: %w", err)
	}

	return card, nil
}

// BindCard links a card to an employee. Binding an already bound card
// overwrites the previous link (badge replacement).
func (r *Repository) BindCard(ctx context.Context, serial string, employeeID int64) error {
	defer r.observe(time.Now(), "bind_card")

	cmdTag, err := r.db.Exec(
		ctx,
		"UPDATE rfid_cards SET employee_id = $2 WHERE serial = $1",
		serial,
		employeeID,
	)
	if err != nil {
		return fmt.Errorf("failed to bind card %s: %w", serial, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrCardNotFound
	}

	return nil
}

// TouchCardUsage records the last accepted scan time of a card.
func (r *Repository) TouchCardUsage(ctx context.Context, serial string, usedAt time.Time) error {
	defer r.observe(time.Now(), "touch_card")

	_, err := r.db.Exec(ctx, "UPDATE rfid_cards SET last_used_at = $2 WHERE serial = $1", serial, usedAt)
	if err != nil {
		return fmt.Errorf("failed to update card usage for %s: %w", serial, err)
	}

	return nil
}
