package bot

import (
	"context"
	"time"

	"github.com/UnknownOlympus/janus/internal/models"
	"gopkg.in/telebot.v4"
)

// EventRecorded pushes a confirmation to the employee after their scan
// was persisted, honoring their notification preferences. It is invoked
// off the scan path, so a Telegram failure only logs.
func (b *Bot) EventRecorded(employee models.Employee, event models.AttendanceEvent) {
	if employee.TelegramID == nil || !employee.ShouldNotify(event.Kind) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	data := map[string]interface{}{"time": event.Timestamp.Format("15:04")}
	key := "notify.arrival"
	if event.Kind == models.EventDeparture {
		key = "notify.departure"
		summary, err := b.svc.DaySummary(ctx, employee.ID, event.Date)
		if err != nil {
			b.log.WarnContext(ctx, "Failed to get summary for departure notification", "error", err)
		}
		minutes := 0
		if summary.Aggregate != nil {
			minutes = summary.Aggregate.MinutesWorked
		}
		data["hours"] = formatMinutes(minutes)
	}

	message := b.localizer.GetWithData("en", key, data)
	if _, err := b.bot.Send(telebot.ChatID(*employee.TelegramID), message); err != nil {
		b.log.Warn("Failed to send scan notification", "employee", employee.ID, "error", err)
		b.metrics.NotificationsSent.WithLabelValues("error").Inc()
		return
	}
	b.metrics.NotificationsSent.WithLabelValues(string(event.Kind)).Inc()
}

// UnknownCard alerts the admin chat about a scan from an unregistered
// card and offers to start the registration flow for it.
func (b *Bot) UnknownCard(serial string, ts time.Time) {
	if b.adminChatID == 0 {
		return
	}

	message := b.localizer.GetWithData("en", "admin.unknown_card", map[string]interface{}{
		"serial": serial,
		"time":   ts.Format("15:04"),
	})

	menu := &telebot.ReplyMarkup{}
	btn := telebot.InlineButton{
		Unique: btnRegisterCard.Unique,
		Text:   b.localizer.Get("en", "admin.register_button"),
		Data:   serial,
	}
	menu.InlineKeyboard = [][]telebot.InlineButton{{btn}}

	if _, err := b.bot.Send(telebot.ChatID(b.adminChatID), message, telebot.ModeMarkdown, menu); err != nil {
		b.log.Warn("Failed to send unknown card alert", "serial", serial, "error", err)
		b.metrics.NotificationsSent.WithLabelValues("error").Inc()
		return
	}
	b.metrics.NotificationsSent.WithLabelValues("unknown_card").Inc()
}
