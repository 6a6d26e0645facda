package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/janus/internal/attendance"
	"github.com/UnknownOlympus/janus/internal/i18n"
	"github.com/UnknownOlympus/janus/internal/metrics"
	"github.com/UnknownOlympus/janus/internal/models"
	"github.com/UnknownOlympus/janus/internal/repository"
	"github.com/redis/go-redis/v9"
	"gopkg.in/telebot.v4"
)

// ErrInternal is the fallback reply when a handler fails unexpectedly.
const ErrInternal = "🚫 Internal error, please try again later"

// Attender is the slice of the attendance core the bot needs: day
// summaries for employees and the manual sweep trigger.
type Attender interface {
	DaySummary(ctx context.Context, employeeID int64, date string) (models.DaySummary, error)
	Monthly(ctx context.Context, employeeID int64, year int, month time.Month) (attendance.MonthlyOverview, error)
	Sweep(ctx context.Context, date, cutoff string) (int, error)
	Location() *time.Location
}

// Bot contains the bot API instance and other information.
type Bot struct {
	bot          *telebot.Bot
	log          *slog.Logger
	emrepo       repository.EmployeeManager
	atrepo       repository.AttendanceManager
	rgrepo       repository.RegistrationManager
	svc          Attender
	metrics      *metrics.Metrics
	redisClient  *redis.Client
	stateManager *StateManager
	localizer    *i18n.Localizer
	adminChatID  int64
	cutoff       string
}

var (
	// inline buttons for report period.
	btnReportPeriodCurrent = telebot.InlineButton{Unique: "report_period_current_month"}
	btnReportPeriodLast    = telebot.InlineButton{Unique: "report_period_last_month"}
	btnReportPeriod7Days   = telebot.InlineButton{Unique: "report_period_last_7_days"}

	// inline button on the unknown card alert.
	btnRegisterCard = telebot.InlineButton{Unique: "register_card"}

	// inline buttons for notification settings.
	btnToggleNotifications = telebot.InlineButton{Unique: "toggle_notifications"}
	btnToggleArrivals      = telebot.InlineButton{Unique: "toggle_arrivals"}
	btnToggleDepartures    = telebot.InlineButton{Unique: "toggle_departures"}
)

// NewBot creates a new bot with the given token.
func NewBot(
	log *slog.Logger,
	emrepo repository.EmployeeManager,
	atrepo repository.AttendanceManager,
	rgrepo repository.RegistrationManager,
	svc Attender,
	redisClient *redis.Client,
	metrics *metrics.Metrics,
	token string,
	poller time.Duration,
	adminChatID int64,
	cutoff string,
) (*Bot, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: poller},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	log.Info("Authorized on account", "account", bot.Me.Username)

	localizer, err := i18n.NewLocalizer()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize localizer: %w", err)
	}

	botInstance := &Bot{
		bot:          bot,
		log:          log,
		emrepo:       emrepo,
		atrepo:       atrepo,
		rgrepo:       rgrepo,
		svc:          svc,
		metrics:      metrics,
		redisClient:  redisClient,
		stateManager: NewStateManager(),
		localizer:    localizer,
		adminChatID:  adminChatID,
		cutoff:       cutoff,
	}

	botInstance.registerRoutes()

	return botInstance, nil
}

// Start launches the bot to listen for updates.
func (b *Bot) Start() {
	b.log.Info("Telegram bot is starting...")
	b.bot.Start()
}

// Stop gracefully stops the Telegram bot and logs the action.
func (b *Bot) Stop() {
	b.log.Info("Telegram bot is stopped...")
	b.bot.Stop()
}

// registerRoutes configures all routes (commands).
func (b *Bot) registerRoutes() {
	// Public routes.
	b.bot.Handle("/start", b.startHandler)
	b.bot.Handle(telebot.OnText, b.routeTextHandler)

	// Inline button callbacks.
	b.bot.Handle(&btnReportPeriodCurrent, b.AuthMiddleware(b.generatorReportHandler))
	b.bot.Handle(&btnReportPeriodLast, b.AuthMiddleware(b.generatorReportHandler))
	b.bot.Handle(&btnReportPeriod7Days, b.AuthMiddleware(b.generatorReportHandler))
	b.bot.Handle(&btnRegisterCard, b.AuthMiddleware(b.registerCardHandler))
	b.bot.Handle(&btnToggleNotifications, b.AuthMiddleware(b.togglePrefHandler))
	b.bot.Handle(&btnToggleArrivals, b.AuthMiddleware(b.togglePrefHandler))
	b.bot.Handle(&btnToggleDepartures, b.AuthMiddleware(b.togglePrefHandler))
}

// lang resolves the reply language for one update from the sender's
// Telegram client locale.
func (b *Bot) lang(tCtx telebot.Context) string {
	if tCtx == nil || tCtx.Sender() == nil {
		return "en"
	}
	return i18n.NormalizeLanguageCode(tCtx.Sender().LanguageCode)
}

// t is a shorthand method for getting translations.
func (b *Bot) t(tCtx telebot.Context, key string) string {
	return b.localizer.Get(b.lang(tCtx), key)
}

// tWithData is a shorthand method for getting translations with placeholder data.
func (b *Bot) tWithData(tCtx telebot.Context, key string, data map[string]interface{}) string {
	return b.localizer.GetWithData(b.lang(tCtx), key, data)
}
