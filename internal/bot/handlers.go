package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/UnknownOlympus/janus/internal/models"
	"github.com/UnknownOlympus/janus/internal/repository"
	"gopkg.in/telebot.v4"
)

const (
	// stateAwaitingName indicates the bot is waiting for the new
	// employee's full name to finish a card registration.
	stateAwaitingName = "awaiting_name"

	handlerTimeout = 3 * time.Second
)

// startHandler processes the /start command. A deep-link payload carries
// a one-time registration token issued from an unknown card alert.
func (b *Bot) startHandler(ctx telebot.Context) error {
	userID := ctx.Sender().ID
	b.log.Info("User started the bot", "id", userID, "username", ctx.Sender().Username)
	b.metrics.CommandReceived.WithLabelValues("start").Inc()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if token := ctx.Message().Payload; token != "" {
		return b.beginRegistration(timeoutCtx, ctx, token)
	}

	employee, err := b.emrepo.GetEmployeeByTelegramID(timeoutCtx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			b.metrics.SentMessages.WithLabelValues("text").Inc()
			return ctx.Send(b.t(ctx, "start.unknown"))
		}
		b.log.Error("Failed to look up employee by telegram id", "error", err, "id", userID)
		b.metrics.SentMessages.WithLabelValues("error").Inc()
		return ctx.Send(ErrInternal)
	}

	responseText := b.tWithData(ctx, "start.welcome", map[string]interface{}{"name": employee.Name})
	b.metrics.SentMessages.WithLabelValues("text").Inc()
	return ctx.Send(responseText, b.buildMainMenu(ctx, employee.IsAdmin))
}

// beginRegistration validates the deep-link token and asks the new
// employee for their name.
func (b *Bot) beginRegistration(ctx context.Context, tCtx telebot.Context, token string) error {
	req, err := b.rgrepo.GetRegistrationRequest(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			b.metrics.SentMessages.WithLabelValues("text").Inc()
			return tCtx.Send(b.t(tCtx, "start.token_invalid"))
		}
		b.log.ErrorContext(ctx, "Failed to get registration request", "error", err)
		b.metrics.SentMessages.WithLabelValues("error").Inc()
		return tCtx.Send(ErrInternal)
	}
	if !req.IsValid(time.Now()) {
		b.metrics.SentMessages.WithLabelValues("text").Inc()
		return tCtx.Send(b.t(tCtx, "start.token_invalid"))
	}

	b.stateManager.Set(tCtx.Sender().ID, UserState{WaitingFor: stateAwaitingName, Token: token})
	b.metrics.SentMessages.WithLabelValues("text").Inc()
	return tCtx.Send(b.t(tCtx, "start.ask_name"))
}

// routeTextHandler dispatches free-text messages: either a pending
// registration name or a pressed reply-keyboard button.
func (b *Bot) routeTextHandler(ctx telebot.Context) error {
	userID := ctx.Sender().ID

	if state, ok := b.stateManager.Get(userID); ok && state.WaitingFor == stateAwaitingName {
		return b.completeRegistration(ctx, state.Token, strings.TrimSpace(ctx.Text()))
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	employee, err := b.emrepo.GetEmployeeByTelegramID(timeoutCtx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			b.metrics.SentMessages.WithLabelValues("text").Inc()
			return ctx.Send(b.t(ctx, "auth.denied"))
		}
		b.log.Error("Failed to look up employee by telegram id", "error", err, "id", userID)
		b.metrics.SentMessages.WithLabelValues("error").Inc()
		return ctx.Send(ErrInternal)
	}

	key := b.resolveMenuKey(ctx.Text())
	if adminOnly[key] && !employee.IsAdmin {
		key = ""
	}

	switch key {
	case "menu.today":
		return b.todayHandler(ctx, employee)
	case "menu.month":
		return b.monthHandler(ctx, employee)
	case "menu.report":
		return b.reportHandler(ctx)
	case "menu.settings":
		return b.settingsHandler(ctx, employee)
	case "menu.employees":
		return b.employeesHandler(ctx)
	case "menu.sweep":
		return b.sweepHandler(ctx)
	default:
		b.metrics.SentMessages.WithLabelValues("text").Inc()
		return ctx.Send(b.t(ctx, "start.unknown_command"), b.buildMainMenu(ctx, employee.IsAdmin))
	}
}

// completeRegistration consumes the token: creates the employee, binds
// the card and links the Telegram account, all server-side in one
// transaction.
func (b *Bot) completeRegistration(ctx telebot.Context, token, name string) error {
	userID := ctx.Sender().ID
	if name == "" {
		b.stateManager.Set(userID, UserState{WaitingFor: stateAwaitingName, Token: token})
		return ctx.Send(b.t(ctx, "start.ask_name"))
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	employee, err := b.rgrepo.ConsumeRegistrationRequest(timeoutCtx, token, name, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) || errors.Is(err, repository.ErrTokenInvalid) {
			b.metrics.SentMessages.WithLabelValues("text").Inc()
			return ctx.Send(b.t(ctx, "start.token_invalid"))
		}
		b.log.Error("Failed to consume registration request", "error", err, "user", userID)
		b.metrics.SentMessages.WithLabelValues("error").Inc()
		return ctx.Send(ErrInternal)
	}

	if err = b.emrepo.LinkTelegramID(timeoutCtx, employee.ID, userID, ctx.Sender().Username); err != nil {
		b.log.Error("Failed to link telegram id", "error", err, "employee", employee.ID, "user", userID)
		b.metrics.SentMessages.WithLabelValues("error").Inc()
		return ctx.Send(ErrInternal)
	}

	b.log.Info("Employee registered", "employee", employee.ID, "name", name, "user", userID)
	responseText := b.tWithData(ctx, "start.registered", map[string]interface{}{"name": employee.Name})
	b.metrics.SentMessages.WithLabelValues("text").Inc()
	return ctx.Send(responseText, b.buildMainMenu(ctx, employee.IsAdmin))
}

// todayHandler replies with the employee's current day summary.
func (b *Bot) todayHandler(ctx telebot.Context, employee models.Employee) error {
	b.log.Info("User requested today summary", "user", ctx.Sender().ID)
	b.metrics.CommandReceived.WithLabelValues("today").Inc()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	date := time.Now().In(b.svc.Location()).Format(models.DateLayout)
	summary, err := b.svc.DaySummary(timeoutCtx, employee.ID, date)
	if err != nil {
		b.log.Error("Failed to get day summary", "error", err, "employee", employee.ID)
		b.metrics.SentMessages.WithLabelValues("error").Inc()
		return ctx.Send(ErrInternal)
	}

	b.metrics.SentMessages.WithLabelValues("text").Inc()
	return ctx.Send(b.formatDaySummary(ctx, summary), telebot.ModeMarkdown)
}

// monthHandler replies with a per-day breakdown of the current month.
func (b *Bot) monthHandler(ctx telebot.Context, employee models.Employee) error {
	b.log.Info("User requested month summary", "user", ctx.Sender().ID)
	b.metrics.CommandReceived.WithLabelValues("month").Inc()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	now := time.Now().In(b.svc.Location())
	overview, err := b.svc.Monthly(timeoutCtx, employee.ID, now.Year(), now.Month())
	if err != nil {
		b.log.Error("Failed to get monthly overview", "error", err, "employee", employee.ID)
		b.metrics.SentMessages.WithLabelValues("error").Inc()
		return ctx.Send(ErrInternal)
	}

	if overview.DaysPresent == 0 {
		b.metrics.SentMessages.WithLabelValues("text").Inc()
		return ctx.Send(b.t(ctx, "today.empty"))
	}

	var builder strings.Builder
	builder.WriteString(b.t(ctx, "month.header"))
	builder.WriteString("\n\n")

	for _, agg := range overview.Days {
		builder.WriteString(fmt.Sprintf(" • %s: %s", agg.Date, formatMinutes(agg.MinutesWorked)))
		if agg.AutoClosed {
			builder.WriteString(" 🧹")
		}
		builder.WriteString("\n")
	}

	builder.WriteString(b.tWithData(ctx, "month.total", map[string]interface{}{
		"days":  overview.DaysPresent,
		"hours": formatMinutes(overview.TotalMinutes),
	}))

	b.metrics.SentMessages.WithLabelValues("text").Inc()
	return ctx.Send(builder.String(), telebot.ModeMarkdown)
}

// settingsHandler shows the notification preference toggles.
func (b *Bot) settingsHandler(ctx telebot.Context, employee models.Employee) error {
	b.metrics.CommandReceived.WithLabelValues("settings").Inc()
	b.metrics.SentMessages.WithLabelValues("text").Inc()
	return ctx.Send(b.t(ctx, "settings.header"), b.buildSettingsMenu(ctx, employee))
}

// togglePrefHandler flips one notification preference and refreshes the
// settings keyboard in place.
func (b *Bot) togglePrefHandler(ctx telebot.Context) error {
	userID := ctx.Sender().ID
	b.metrics.CommandReceived.WithLabelValues("toggle_pref").Inc()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	employee, err := b.emrepo.GetEmployeeByTelegramID(timeoutCtx, userID)
	if err != nil {
		b.log.Error("Failed to look up employee for settings", "error", err, "user", userID)
		b.metrics.SentMessages.WithLabelValues("error").Inc()
		return ctx.Respond(&telebot.CallbackResponse{Text: ErrInternal})
	}

	switch ctx.Callback().Unique {
	case btnToggleNotifications.Unique:
		employee.NotificationsEnabled = !employee.NotificationsEnabled
	case btnToggleArrivals.Unique:
		employee.ArrivalNotifications = !employee.ArrivalNotifications
	case btnToggleDepartures.Unique:
		employee.DepartureNotifications = !employee.DepartureNotifications
	}

	err = b.emrepo.SetNotificationPrefs(
		timeoutCtx,
		employee.ID,
		employee.NotificationsEnabled,
		employee.ArrivalNotifications,
		employee.DepartureNotifications,
	)
	if err != nil {
		b.log.Error("Failed to update notification prefs", "error", err, "employee", employee.ID)
		b.metrics.SentMessages.WithLabelValues("error").Inc()
		return ctx.Respond(&telebot.CallbackResponse{Text: ErrInternal})
	}

	_ = ctx.Respond(&telebot.CallbackResponse{Text: b.t(ctx, "settings.updated")})
	b.metrics.SentMessages.WithLabelValues("edit").Inc()
	return ctx.Edit(b.t(ctx, "settings.header"), b.buildSettingsMenu(ctx, employee))
}

// formatDaySummary renders one day summary as a Telegram message.
func (b *Bot) formatDaySummary(ctx telebot.Context, summary models.DaySummary) string {
	if summary.Aggregate == nil || summary.Aggregate.FirstArrival == nil {
		return b.t(ctx, "today.empty")
	}
	agg := summary.Aggregate

	var builder strings.Builder
	builder.WriteString(b.tWithData(ctx, "today.header", map[string]interface{}{"date": summary.Date}))
	builder.WriteString("\n\n")
	builder.WriteString(b.tWithData(ctx, "today.arrival", map[string]interface{}{
		"time": agg.FirstArrival.Format("15:04"),
	}))
	builder.WriteString("\n")

	if agg.LastDeparture != nil {
		builder.WriteString(b.tWithData(ctx, "today.departure", map[string]interface{}{
			"time": agg.LastDeparture.Format("15:04"),
		}))
		builder.WriteString("\n")
		builder.WriteString(b.tWithData(ctx, "today.worked", map[string]interface{}{
			"hours": formatMinutes(agg.MinutesWorked),
		}))
	} else {
		builder.WriteString(b.t(ctx, "today.no_departure"))
	}

	if agg.AutoClosed {
		builder.WriteString("\n")
		builder.WriteString(b.t(ctx, "today.auto_closed"))
	}

	return builder.String()
}

// formatMinutes renders a minute count as "9h 30m".
func formatMinutes(minutes int) string {
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}
