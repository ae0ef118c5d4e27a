package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/ysaito/tg-lingo-circle/pkg/logger"
	"github.com/ysaito/tg-lingo-circle/pkg/ui"
)

func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil || update.Message == nil || update.Message.From == nil || update.Message.Chat.ID == 0 {
		logger.Error("invalid update in HandleStart")
		return
	}

	userID := update.Message.From.ID
	h.Registry.GetOrCreate(userID, update.Message.Chat.ID)
	h.Ledger.Touch(userID)

	pseudonym, ok := h.Registry.PseudonymOf(userID)
	if !ok {
		logger.Error("pseudonym missing right after GetOrCreate", "user_id", userID)
		h.reply(ctx, b, update.Message.Chat.ID, genericApology)
		return
	}

	welcome := fmt.Sprintf(
		"Welcome to the language circle! 🎉\n\n"+
			"I'll DM you bilingual prompts a few times a week. Answer me here in the language you're practicing, "+
			"and I'll post your answer to the group under your anonymous handle: %s\n\n"+
			"You'll also get private writing feedback and a point per accepted answer. React with 👍 ❤️ 🔥 or 👏 in the group to earn kudos points.",
		pseudonym.Handle,
	)
	h.reply(ctx, b, update.Message.Chat.ID, welcome)

	text, keyboard, err := ui.RenderLanguageSettings(h.targetOf(userID))
	if err != nil {
		logger.Error("failed to render language settings", "user_id", userID, "error", err)
		return
	}
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        text,
		ReplyMarkup: keyboard,
	}); err != nil {
		logger.Error("failed to send language keyboard", "user_id", userID, "error", err)
	}
}
