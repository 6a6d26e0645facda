package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/UnknownOlympus/janus/internal/models"
	"github.com/UnknownOlympus/janus/internal/report"
	"gopkg.in/telebot.v4"
)

// reportHandler presents the period choice for an attendance report.
func (b *Bot) reportHandler(ctx telebot.Context) error {
	menu := &telebot.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.Data(b.t(ctx, "report.period.current_month"), btnReportPeriodCurrent.Unique)),
		menu.Row(menu.Data(b.t(ctx, "report.period.last_month"), btnReportPeriodLast.Unique)),
		menu.Row(menu.Data(b.t(ctx, "report.period.last_7_days"), btnReportPeriod7Days.Unique)),
	)

	b.metrics.SentMessages.WithLabelValues("text").Inc()
	return ctx.Send(b.t(ctx, "report.choose_period"), menu)
}

// generatorReportHandler builds the attendance workbook for the chosen
// period and sends it as a document. Reports are cached in redis for an
// hour keyed by user and period.
func (b *Bot) generatorReportHandler(ctx telebot.Context) error {
	b.metrics.CommandReceived.WithLabelValues("report").Inc()
	b.metrics.SentMessages.WithLabelValues("respond").Inc()
	_ = ctx.Respond(&telebot.CallbackResponse{Text: b.t(ctx, "report.generating")})

	userID := ctx.Sender().ID
	b.log.Info("User requested report", "user", userID, "data", ctx.Callback().Unique)

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	from, to, periodMetric, err := b.parseReportPeriod(ctx)
	if err != nil {
		b.metrics.SentMessages.WithLabelValues("error").Inc()
		return ctx.Edit(b.t(ctx, "report.unsupported"), ctx.Message().ReplyMarkup)
	}

	cacheKey := fmt.Sprintf("janus:report:user:%d:period:%s", userID, periodMetric)
	if sent, _ := b.sendCachedReportIfExists(timeoutCtx, ctx, userID, cacheKey, from, to); sent {
		return nil
	}

	return b.generateAndSendReport(timeoutCtx, ctx, userID, from, to, periodMetric, cacheKey)
}

func (b *Bot) parseReportPeriod(ctx telebot.Context) (time.Time, time.Time, string, error) {
	now := time.Now().In(b.svc.Location())
	switch ctx.Callback().Unique {
	case btnReportPeriodCurrent.Unique:
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return from, from.AddDate(0, 1, 0).Add(-time.Nanosecond), "current_1m", nil
	case btnReportPeriodLast.Unique:
		from := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
		return from, from.AddDate(0, 1, 0).Add(-time.Nanosecond), "last_1m", nil
	case btnReportPeriod7Days.Unique:
		return now.AddDate(0, 0, -7), now, "last_7d", nil
	default:
		return time.Time{}, time.Time{}, "", errors.New("unsupported period")
	}
}

func (b *Bot) sendCachedReportIfExists(
	ctx context.Context,
	tbCtx telebot.Context,
	userID int64,
	cacheKey string,
	from, to time.Time,
) (bool, error) {
	cachedReport, err := b.redisClient.Get(ctx, cacheKey).Bytes()
	if err != nil {
		b.metrics.CacheOps.WithLabelValues("get", "miss").Inc()
		return false, fmt.Errorf("failed to get report from cache: %w", err)
	}

	b.metrics.CacheOps.WithLabelValues("get", "hit").Inc()
	b.log.InfoContext(ctx, "Report found in cache", "user", userID, "key", cacheKey)

	b.metrics.SentMessages.WithLabelValues("edit").Inc()
	_ = tbCtx.Edit(b.reportReadyText(tbCtx, from, to), tbCtx.Message().ReplyMarkup)
	b.metrics.SentMessages.WithLabelValues("file").Inc()
	return true, tbCtx.Send(reportDocument(bytes.NewReader(cachedReport), from, to))
}

func (b *Bot) generateAndSendReport(
	ctx context.Context,
	tbCtx telebot.Context,
	userID int64,
	from, to time.Time,
	periodMetric, cacheKey string,
) error {
	b.log.InfoContext(ctx, "Report not found in cache, generating a new one", "user", userID, "key", cacheKey)

	startTime := time.Now()
	rows, err := b.buildReportRows(ctx, userID, from, to)
	if err != nil {
		b.log.ErrorContext(ctx, "Failed to collect report rows", "error", err, "user", userID)
		b.metrics.SentMessages.WithLabelValues("error").Inc()
		return tbCtx.Edit(ErrInternal, tbCtx.Message().ReplyMarkup)
	}
	reportBuffer, err := report.GenerateAttendanceReport(rows)
	b.metrics.ReportGeneration.WithLabelValues(periodMetric).Observe(time.Since(startTime).Seconds())
	if err != nil {
		if errors.Is(err, report.ErrNoRecords) {
			b.metrics.SentMessages.WithLabelValues("edit").Inc()
			return tbCtx.Edit(b.t(tbCtx, "report.empty"), tbCtx.Message().ReplyMarkup)
		}
		b.metrics.SentMessages.WithLabelValues("error").Inc()
		b.log.ErrorContext(ctx, "Failed to generate report", "error", err, "user", userID)
		return tbCtx.Edit(ErrInternal, tbCtx.Message().ReplyMarkup)
	}

	const cacheTTL = 1 * time.Hour
	if err = b.redisClient.Set(ctx, cacheKey, reportBuffer.Bytes(), cacheTTL).Err(); err != nil {
		b.metrics.CacheOps.WithLabelValues("set", "error").Inc()
		b.log.ErrorContext(ctx, "Failed to save report to cache", "error", err, "key", cacheKey)
	} else {
		b.metrics.CacheOps.WithLabelValues("set", "success").Inc()
	}

	b.log.InfoContext(ctx, "Succesfully generated report", "user", userID, "period", periodMetric)
	b.metrics.SentMessages.WithLabelValues("edit").Inc()
	_ = tbCtx.Edit(b.reportReadyText(tbCtx, from, to), tbCtx.Message().ReplyMarkup)
	b.metrics.SentMessages.WithLabelValues("file").Inc()
	return tbCtx.Send(reportDocument(reportBuffer, from, to))
}

// buildReportRows collects the aggregates for the period. Admins get
// every employee's sheet, regular employees only their own.
func (b *Bot) buildReportRows(
	ctx context.Context,
	userID int64,
	from, to time.Time,
) ([]report.Row, error) {
	requester, err := b.emrepo.GetEmployeeByTelegramID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get requester: %w", err)
	}

	employees, err := b.emrepo.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	names := make(map[int64]string, len(employees))
	for _, employee := range employees {
		names[employee.ID] = employee.Name
	}

	aggs, err := b.atrepo.ListAggregatesRange(
		ctx,
		from.Format(models.DateLayout),
		to.Format(models.DateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list aggregates: %w", err)
	}

	rows := make([]report.Row, 0, len(aggs))
	for _, agg := range aggs {
		if !requester.IsAdmin && agg.EmployeeID != requester.ID {
			continue
		}
		if agg.FirstArrival == nil {
			continue
		}
		row := report.Row{
			Employee:   names[agg.EmployeeID],
			Date:       agg.Date,
			Arrival:    agg.FirstArrival.Format("15:04"),
			Minutes:    agg.MinutesWorked,
			Weekend:    agg.Weekend,
			AutoClosed: agg.AutoClosed,
		}
		if agg.LastDeparture != nil {
			row.Departure = agg.LastDeparture.Format("15:04")
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func (b *Bot) reportReadyText(tbCtx telebot.Context, from, to time.Time) string {
	return b.tWithData(tbCtx, "report.ready", map[string]interface{}{
		"from": from.Format("02.01.2006"),
		"to":   to.Format("02.01.2006"),
	})
}

func reportDocument(reader io.Reader, from, to time.Time) *telebot.Document {
	return &telebot.Document{
		File:     telebot.FromReader(reader),
		FileName: fmt.Sprintf("attendance_%s_%s.xlsx", from.Format("2006-01-02"), to.Format("2006-01-02")),
		MIME:     "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}
}
