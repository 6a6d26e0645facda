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
	// ErrEmployeeNotFound is returned when no employee matches the lookup key.
	ErrEmployeeNotFound = errors.New("employee not found")
	// ErrIDExists is returned when the telegram ID is already linked to another employee.
	ErrIDExists = errors.New("this telegram ID is already linked to an employee")
)

const employeeColumns = `
	id, name, telegram_id, telegram_username, notifications_enabled,
	arrival_notifications, departure_notifications, is_admin, is_active, created_at
`

func scanEmployee(row pgx.Row) (models.Employee, error) {
	var employee models.Employee
	err := row.Scan(
		&employee.ID, &employee.Name, &employee.TelegramID, &employee.TelegramUsername,
		&employee.NotificationsEnabled, &employee.ArrivalNotifications,
		&employee.DepartureNotifications, &employee.IsAdmin, &employee.IsActive,
		&employee.CreatedAt,
	)
	return employee, err
}

// GetEmployeeByID retrieves an employee by primary key.
func (r *Repository) GetEmployeeByID(ctx context.Context, id int64) (models.Employee, error) {
	defer r.observe(time.Now(), "get_employee")

	employee, err := scanEmployee(
		r.db.QueryRow(ctx, "SELECT "+employeeColumns+" FROM employees WHERE id = $1", id),
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Employee{}, ErrEmployeeNotFound
		}
		return models.Employee{}, fmt.Errorf("failed to get employee %d: %w", id, err)
	}

	return employee, nil
}

// GetEmployeeByTelegramID retrieves the employee linked to a Telegram
// chat ID. Used by the bot to authenticate incoming commands.
func (r *Repository) GetEmployeeByTelegramID(ctx context.Context, telegramID int64) (models.Employee, error) {
	defer r.observe(time.Now(), "get_employee_by_tg")

	employee, err := scanEmployee(
		r.db.QueryRow(ctx, "SELECT "+employeeColumns+" FROM employees WHERE telegram_id = $1", telegramID),
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Employee{}, ErrEmployeeNotFound
		}
		return models.Employee{}, fmt.Errorf("failed to get employee by telegram ID: %w", err)
	}

	return employee, nil
}

// ListEmployees returns all active employees ordered by name.
func (r *Repository) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	defer r.observe(time.Now(), "list_employees")

	rows, err := r.db.Query(ctx, "SELECT "+employeeColumns+" FROM employees WHERE is_active = TRUE ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []models.Employee
	for rows.Next() {
		employee, errScan := scanEmployee(rows)
		if errScan != nil {
			return nil, fmt.Errorf("failed to scan employee row: %w", errScan)
		}
		employees = append(employees, employee)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read employee rows: %w", err)
	}

	return employees, nil
}

// LinkTelegramID links a Telegram chat to an employee so the bot can
// address them. It refuses to steal an ID already linked elsewhere.
func (r *Repository) LinkTelegramID(ctx context.Context, employeeID, telegramID int64, username string) error {
	defer r.observe(time.Now(), "link_telegram")

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // omitted because checking for errors will not affect the function

	var exists bool
	err = tx.QueryRow(
		ctx,
		"SELECT EXISTS (SELECT 1 FROM employees WHERE telegram_id = $1 AND id <> $2)",
		telegramID, employeeID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check telegram ID: %w", err)
	}
	if exists {
		return ErrIDExists
	}

	cmdTag, err := tx.Exec(
		ctx,
		"UPDATE employees SET telegram_id = $2, telegram_username = $3 WHERE id = $1",
		employeeID, telegramID, username,
	)
	if err != nil {
		return fmt.Errorf("failed to link telegram ID: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}

	return tx.Commit(ctx)
}

// SetNotificationPrefs updates the employee's notification switches.
func (r *Repository) SetNotificationPrefs(
	ctx context.Context,
	employeeID int64,
	enabled, arrivals, departures bool,
) error {
	defer r.observe(time.Now(), "set_notification_prefs")

	cmdTag, err := r.db.Exec(
		ctx,
		`UPDATE employees
		 SET notifications_enabled = $2, arrival_notifications = $3, departure_notifications = $4
		 WHERE id = $1`,
		employeeID, enabled, arrivals, departures,
	)
	if err != nil {
		return fmt.Errorf("failed to update notification prefs: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}

	return nil
}
