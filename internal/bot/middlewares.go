package bot

import (
	"context"
	"errors"

	"github.com/UnknownOlympus/janus/internal/repository"
	"gopkg.in/telebot.v4"
)

// AuthMiddleware checks that the Telegram ID is linked to an employee.
func (b *Bot) AuthMiddleware(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(ctx telebot.Context) error {
		userID := ctx.Sender().ID

		timeoutCtx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
		defer cancel()

		_, err := b.emrepo.GetEmployeeByTelegramID(timeoutCtx, userID)
		if err != nil {
			if !errors.Is(err, repository.ErrEmployeeNotFound) {
				b.log.Error("Failed to authenticate telegram user from DB", "id", userID, "error", err)
				_ = ctx.Send(ErrInternal)
				return nil
			}
			b.log.Info("Access denied", "username", ctx.Sender().Username, "id", userID)
			if ctx.Callback() != nil {
				_ = ctx.Respond(&telebot.CallbackResponse{
					Text:      b.t(ctx, "auth.denied"),
					ShowAlert: true,
				})
			} else {
				_ = ctx.Send(b.t(ctx, "auth.denied"))
			}
			return nil
		}

		return next(ctx)
	}
}
