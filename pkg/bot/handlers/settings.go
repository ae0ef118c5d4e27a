package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/ysaito/tg-lingo-circle/pkg/identity"
	"github.com/ysaito/tg-lingo-circle/pkg/lang"
	"github.com/ysaito/tg-lingo-circle/pkg/logger"
	"github.com/ysaito/tg-lingo-circle/pkg/ui"
)

func (h *Handlers) HandleSettings(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil || update.Message == nil || update.Message.From == nil || update.Message.Chat.ID == 0 {
		logger.Error("invalid update in HandleSettings")
		return
	}

	userID := update.Message.From.ID
	h.Registry.GetOrCreate(userID, update.Message.Chat.ID)
	h.Ledger.Touch(userID)

	text, keyboard, err := ui.RenderLanguageSettings(h.targetOf(userID))
	if err != nil {
		logger.Error("failed to render settings", "user_id", userID, "error", err)
		h.reply(ctx, b, update.Message.Chat.ID, genericApology)
		return
	}
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        text,
		ReplyMarkup: keyboard,
	}); err != nil {
		logger.Error("failed to send settings message", "user_id", userID, "error", err)
	}
}

func (h *Handlers) HandleSettingsCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil || update.CallbackQuery == nil {
		logger.Error("invalid update in HandleSettingsCallback")
		return
	}

	callbackID := update.CallbackQuery.ID
	answered := false
	answerCallback := func(text string) {
		if answered || callbackID == "" {
			return
		}
		if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: callbackID,
			Text:            text,
		}); err != nil {
			logger.Error("failed to answer callback query", "error", err)
		}
		answered = true
	}

	action, err := ui.ParseCallbackData(update.CallbackQuery.Data)
	if err != nil {
		logger.Error("failed to parse settings callback", "data", update.CallbackQuery.Data, "error", err)
		answerCallback("Unknown command")
		return
	}

	message := update.CallbackQuery.Message
	if message.Type != models.MaybeInaccessibleMessageTypeMessage || message.Message == nil {
		logger.Error("callback query message is inaccessible", "user_id", update.CallbackQuery.From.ID)
		answerCallback("Message is not available")
		return
	}
	msg := message.Message
	if msg.Chat.ID == 0 {
		logger.Error("callback query message chat ID is missing", "user_id", update.CallbackQuery.From.ID)
		answerCallback("Message is not available")
		return
	}

	userID := update.CallbackQuery.From.ID

	var text string
	var keyboard *models.InlineKeyboardMarkup
	switch action.Op {
	case ui.OpClose:
		text = "Settings saved ✅"
		keyboard = &models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{},
		}
	case ui.OpSetLanguage:
		h.Registry.GetOrCreate(userID, msg.Chat.ID)
		h.Ledger.Touch(userID)
		if err := h.Registry.SetTargetLanguage(userID, action.Language); err != nil {
			if errors.Is(err, identity.ErrUnsupportedLanguage) {
				answerCallback("That language is not supported")
				return
			}
			logger.Error("failed to set target language", "user_id", userID, "error", err)
			answerCallback("Failed to save settings")
			return
		}
		answerCallback(fmt.Sprintf("Practicing %s now", lang.DisplayName(lang.Language(action.Language))))
		text, keyboard, err = ui.RenderLanguageSettings(lang.Language(action.Language))
		if err != nil {
			logger.Error("failed to render settings screen", "user_id", userID, "error", err)
			return
		}
	default:
		answerCallback("Unknown command")
		return
	}

	if !answered {
		answerCallback("")
	}

	if _, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		Text:        text,
		ReplyMarkup: keyboard,
	}); err != nil {
		logger.Error("failed to edit settings message", "user_id", userID, "error", err)
	}
}
