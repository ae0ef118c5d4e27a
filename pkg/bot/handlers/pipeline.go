package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/ysaito/tg-lingo-circle/pkg/db"
	"github.com/ysaito/tg-lingo-circle/pkg/lang"
	"github.com/ysaito/tg-lingo-circle/pkg/logger"
	"github.com/ysaito/tg-lingo-circle/pkg/ui"
)

// HandleUpdate is the default handler: direct messages feed the
// response pipeline, reaction updates feed the kudos path.
func (h *Handlers) HandleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil {
		logger.Error("received nil update in HandleUpdate")
		return
	}
	if update.MessageReaction != nil {
		h.handleReaction(ctx, b, update.MessageReaction)
		return
	}
	if update.Message == nil {
		return
	}
	msg := update.Message
	if msg.From == nil || msg.Chat.ID == 0 {
		logger.Error("invalid message in HandleUpdate")
		return
	}
	// Responses are collected only over direct message; group chatter
	// never enters the pipeline.
	if msg.Chat.Type != models.ChatTypePrivate {
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		h.reply(ctx, b, msg.Chat.ID,
			"Send me your answer to today's prompt as plain text, or use /settings, /leaderboard, /start.")
		return
	}

	if word, ok := parseDefineCommand(text); ok {
		h.handleDefine(ctx, b, msg.Chat.ID, word)
		return
	}
	if sentence, ok := parseExplainCommand(text); ok {
		h.handleExplain(ctx, b, msg.Chat.ID, sentence)
		return
	}

	h.handleResponse(ctx, b, msg, text)
}

// handleResponse runs the validation pipeline for one direct response:
// language check, anonymous public post, private feedback, points.
func (h *Handlers) handleResponse(ctx context.Context, b *bot.Bot, msg *models.Message, text string) {
	userID := msg.From.ID
	user := h.Registry.GetOrCreate(userID, msg.Chat.ID)
	h.Ledger.Touch(userID)

	if user.TargetLanguage == "" {
		h.reply(ctx, b, msg.Chat.ID,
			"First pick the language you're practicing with /settings, then send your answer again.")
		return
	}

	detected := lang.Classify(text)
	if detected == lang.Unknown || detected != user.TargetLanguage {
		h.reply(ctx, b, msg.Chat.ID, fmt.Sprintf(
			"Hmm, that doesn't look like %s. You're practicing %s, so please answer in %s and send it again.",
			lang.DisplayName(user.TargetLanguage),
			lang.DisplayName(user.TargetLanguage),
			lang.DisplayName(user.TargetLanguage),
		))
		return
	}

	pseudonym, ok := h.Registry.PseudonymOf(userID)
	if !ok {
		// GetOrCreate guarantees a pseudonym; reaching here means the
		// registry was bypassed.
		logger.Error("pseudonym missing for validated submission", "user_id", userID)
		h.reply(ctx, b, msg.Chat.ID, genericApology)
		return
	}

	publicMessageID := 0
	if h.ChannelChatID == 0 {
		logger.Warn("no public channel configured, skipping public post", "user_id", userID)
	} else {
		posted, err := b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: h.ChannelChatID,
			Text:   ui.RenderPublicSubmission(pseudonym.Handle, pseudonym.Cohort, text),
		})
		if err != nil {
			logger.Error("failed to post submission to channel", "user_id", userID, "error", err)
			h.reply(ctx, b, msg.Chat.ID, genericApology)
			return
		}
		publicMessageID = posted.ID
	}

	feedback := h.Generator.GenerateFeedback(ctx, text, string(user.TargetLanguage))

	nthToday := h.Submissions.CountOnDay(userID, h.now()) + 1
	reward := h.Rewards.SubmissionReward(nthToday)
	total := h.Ledger.Increment(userID, reward)

	record := Submission{
		ID:               uuid.NewString(),
		UserID:           userID,
		Text:             text,
		DetectedLanguage: detected,
		TargetLanguage:   user.TargetLanguage,
		Feedback:         feedback,
		PublicMessageID:  publicMessageID,
		CreatedAt:        h.now(),
	}
	h.Submissions.Add(record)
	if current := h.Broadcasts.Current(); current != nil {
		current.AppendResponse(record.ID)
		h.Mirror.SaveBroadcast(current.Record())
	}
	h.Mirror.SaveSubmission(db.SubmissionRecord{
		ID:               record.ID,
		UserID:           record.UserID,
		Text:             record.Text,
		DetectedLanguage: string(record.DetectedLanguage),
		TargetLanguage:   string(record.TargetLanguage),
		Feedback:         record.Feedback,
		PublicMessageID:  record.PublicMessageID,
		CreatedAt:        record.CreatedAt,
	})

	h.reply(ctx, b, msg.Chat.ID, fmt.Sprintf(
		"✅ Posted anonymously as %s. +%d point(s), %d total.\n\n%s",
		pseudonym.Handle, reward, total, feedback,
	))
}

func (h *Handlers) reply(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}); err != nil {
		logger.Error("failed to send reply", "chat_id", chatID, "error", err)
	}
}
