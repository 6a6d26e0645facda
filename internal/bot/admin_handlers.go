package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/UnknownOlympus/janus/internal/models"
	"github.com/google/uuid"
	"gopkg.in/telebot.v4"
)

// registrationTTL bounds how long an issued registration link stays valid.
const registrationTTL = 24 * time.Hour

// employeesHandler lists all employees with their presence for today.
func (b *Bot) employeesHandler(ctx telebot.Context) error {
	b.log.Info("Admin requested employee list", "user", ctx.Sender().ID)
	b.metrics.CommandReceived.WithLabelValues("employees").Inc()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	employees, err := b.emrepo.ListEmployees(timeoutCtx)
	if err != nil {
		b.log.Error("Failed to list employees", "error", err)
		b.metrics.SentMessages.WithLabelValues("error").Inc()
		return ctx.Send(ErrInternal)
	}

	date := time.Now().In(b.svc.Location()).Format(models.DateLayout)
	aggs, err := b.atrepo.ListAggregatesRange(timeoutCtx, date, date)
	if err != nil {
		b.log.Error("Failed to list today aggregates", "error", err)
		b.metrics.SentMessages.WithLabelValues("error").Inc()
		return ctx.Send(ErrInternal)
	}
	today := make(map[int64]models.DayAggregate, len(aggs))
	for _, agg := range aggs {
		today[agg.EmployeeID] = agg
	}

	var builder strings.Builder
	builder.WriteString(b.tWithData(ctx, "admin.employees.header", map[string]interface{}{
		"count": len(employees),
	}))
	builder.WriteString("\n\n")

	for _, employee := range employees {
		if !employee.IsActive {
			continue
		}
		marker := b.t(ctx, "admin.employees.absent")
		detail := ""
		if agg, ok := today[employee.ID]; ok && agg.FirstArrival != nil {
			if agg.LastDeparture == nil {
				marker = b.t(ctx, "admin.employees.present")
			}
			detail = " — " + agg.FirstArrival.Format("15:04")
			if agg.LastDeparture != nil {
				detail += "…" + agg.LastDeparture.Format("15:04")
			}
		}
		builder.WriteString(fmt.Sprintf("%s %s%s\n", marker, employee.Name, detail))
	}

	b.metrics.SentMessages.WithLabelValues("text").Inc()
	return ctx.Send(builder.String(), telebot.ModeMarkdown)
}

// sweepHandler closes yesterday's open days on demand, ahead of the
// scheduled run.
func (b *Bot) sweepHandler(ctx telebot.Context) error {
	b.log.Info("Admin requested manual sweep", "user", ctx.Sender().ID)
	b.metrics.CommandReceived.WithLabelValues("sweep").Inc()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	date := time.Now().In(b.svc.Location()).AddDate(0, 0, -1).Format(models.DateLayout)
	count, err := b.svc.Sweep(timeoutCtx, date, b.cutoff)
	if err != nil {
		b.log.Error("Failed to run manual sweep", "error", err, "date", date)
		b.metrics.SentMessages.WithLabelValues("error").Inc()
		return ctx.Send(ErrInternal)
	}

	responseText := b.tWithData(ctx, "admin.sweep.done", map[string]interface{}{
		"count": count,
		"date":  date,
	})
	b.metrics.SentMessages.WithLabelValues("text").Inc()
	return ctx.Send(responseText)
}

// registerCardHandler issues a one-time registration link for the card
// serial carried in the callback data of an unknown card alert.
func (b *Bot) registerCardHandler(ctx telebot.Context) error {
	b.metrics.CommandReceived.WithLabelValues("register_card").Inc()
	serial := ctx.Data()
	b.log.Info("Admin requested card registration", "user", ctx.Sender().ID, "serial", serial)

	timeoutCtx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	token := uuid.NewString()
	if err := b.rgrepo.CreateRegistrationRequest(timeoutCtx, token, serial, time.Now().Add(registrationTTL)); err != nil {
		b.log.Error("Failed to create registration request", "error", err, "serial", serial)
		b.metrics.SentMessages.WithLabelValues("error").Inc()
		return ctx.Respond(&telebot.CallbackResponse{Text: ErrInternal})
	}

	link := fmt.Sprintf("https://t.me/%s?start=%s", b.bot.Me.Username, token)
	responseText := b.tWithData(ctx, "admin.registration_link", map[string]interface{}{"link": link})

	_ = ctx.Respond()
	b.metrics.SentMessages.WithLabelValues("text").Inc()
	return ctx.Send(responseText)
}
