package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/ysaito/tg-lingo-circle/pkg/logger"
)

const genericApology = "Something went wrong on my side. Please try again in a moment."

// Protect wraps a handler so an unexpected panic is logged and answered
// with a generic apology instead of taking the process down. Every
// handler is registered through this wrapper.
func (h *Handlers) Protect(name string, fn bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("handler panicked", "handler", name, "panic", r)
				chatID := chatIDFromUpdate(update)
				if chatID == 0 {
					return
				}
				if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
					ChatID: chatID,
					Text:   genericApology,
				}); err != nil {
					logger.Error("failed to send apology after panic", "handler", name, "error", err)
				}
			}
		}()
		fn(ctx, b, update)
	}
}

func chatIDFromUpdate(update *models.Update) int64 {
	if update == nil {
		return 0
	}
	if update.Message != nil {
		return update.Message.Chat.ID
	}
	if update.CallbackQuery != nil {
		msg := update.CallbackQuery.Message
		if msg.Type == models.MaybeInaccessibleMessageTypeMessage && msg.Message != nil {
			return msg.Message.Chat.ID
		}
	}
	return 0
}
