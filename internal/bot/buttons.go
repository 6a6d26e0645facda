package bot

import (
	"github.com/UnknownOlympus/janus/internal/models"
	"gopkg.in/telebot.v4"
)

// menu button translation keys, also used by the text router.
var menuKeys = []string{
	"menu.today",
	"menu.month",
	"menu.report",
	"menu.settings",
	"menu.employees",
	"menu.sweep",
}

// adminOnly marks the keys hidden from regular employees.
var adminOnly = map[string]bool{
	"menu.employees": true,
	"menu.sweep":     true,
}

// buildMainMenu creates the persistent reply keyboard with translated text.
func (b *Bot) buildMainMenu(tCtx telebot.Context, isAdmin bool) *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{ResizeKeyboard: true}

	btnToday := menu.Text(b.t(tCtx, "menu.today"))
	btnMonth := menu.Text(b.t(tCtx, "menu.month"))
	btnReport := menu.Text(b.t(tCtx, "menu.report"))
	btnSettings := menu.Text(b.t(tCtx, "menu.settings"))

	rows := []telebot.Row{
		menu.Row(btnToday, btnMonth),
		menu.Row(btnReport, btnSettings),
	}

	if isAdmin {
		btnEmployees := menu.Text(b.t(tCtx, "menu.employees"))
		btnSweep := menu.Text(b.t(tCtx, "menu.sweep"))
		rows = append(rows, menu.Row(btnEmployees, btnSweep))
	}

	menu.Reply(rows...)

	return menu
}

// buildSettingsMenu creates the inline keyboard reflecting the current
// notification preferences.
func (b *Bot) buildSettingsMenu(tCtx telebot.Context, employee models.Employee) *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{}

	notifKey := "settings.notifications.off"
	if employee.NotificationsEnabled {
		notifKey = "settings.notifications.on"
	}
	arrivalsKey := "settings.arrivals.off"
	if employee.ArrivalNotifications {
		arrivalsKey = "settings.arrivals.on"
	}
	departuresKey := "settings.departures.off"
	if employee.DepartureNotifications {
		departuresKey = "settings.departures.on"
	}

	menu.Inline(
		menu.Row(menu.Data(b.t(tCtx, notifKey), btnToggleNotifications.Unique)),
		menu.Row(menu.Data(b.t(tCtx, arrivalsKey), btnToggleArrivals.Unique)),
		menu.Row(menu.Data(b.t(tCtx, departuresKey), btnToggleDepartures.Unique)),
	)

	return menu
}

// resolveMenuKey maps a pressed reply-keyboard button back to its
// translation key. Labels are checked in the sender's language and in
// every other supported one, so a keyboard issued in another locale
// still routes correctly.
func (b *Bot) resolveMenuKey(text string) string {
	for _, key := range menuKeys {
		for _, lang := range []string{"en", "ru"} {
			if text == b.localizer.Get(lang, key) {
				return key
			}
		}
	}
	return ""
}
