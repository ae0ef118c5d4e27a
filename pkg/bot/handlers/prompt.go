package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/ysaito/tg-lingo-circle/pkg/logger"
)

// HandlePrompt triggers a broadcast manually, outside the schedule.
func (h *Handlers) HandlePrompt(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil || update.Message == nil || update.Message.Chat.ID == 0 {
		logger.Error("invalid update in HandlePrompt")
		return
	}
	if h.TriggerBroadcast == nil {
		h.reply(ctx, b, update.Message.Chat.ID, "Manual broadcasts aren't wired up in this deployment.")
		return
	}
	h.reply(ctx, b, update.Message.Chat.ID, "Sending out a fresh prompt now! 📬")
	h.TriggerBroadcast(ctx)
}
