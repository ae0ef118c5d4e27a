package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/ysaito/tg-lingo-circle/pkg/logger"
	"github.com/ysaito/tg-lingo-circle/pkg/ui"
)

const leaderboardSize = 10

func (h *Handlers) HandleLeaderboard(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil || update.Message == nil || update.Message.Chat.ID == 0 {
		logger.Error("invalid update in HandleLeaderboard")
		return
	}

	entries := h.Ledger.TopN(leaderboardSize)
	text := ui.RenderLeaderboard(entries, func(userID int64) (string, bool) {
		p, ok := h.Registry.PseudonymOf(userID)
		if !ok {
			return "", false
		}
		return p.Handle, true
	})
	h.reply(ctx, b, update.Message.Chat.ID, text)
}
