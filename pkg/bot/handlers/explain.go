package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/ysaito/tg-lingo-circle/pkg/lang"
)

// parseExplainCommand recognizes "explain <sentence>" in a direct
// message. Unlike define, the argument may contain spaces.
func parseExplainCommand(text string) (string, bool) {
	lower := strings.ToLower(text)
	if !strings.HasPrefix(lower, "explain ") {
		return "", false
	}
	sentence := strings.TrimSpace(text[len("explain "):])
	if sentence == "" {
		return "", false
	}
	return sentence, true
}

// handleExplain sends a grammar walkthrough of the sentence. Japanese
// sentences additionally get a reading gloss, since kanji readings are
// the most common follow-up question.
func (h *Handlers) handleExplain(ctx context.Context, b *bot.Bot, chatID int64, sentence string) {
	target := lang.Classify(sentence)
	if target == lang.Unknown {
		target = lang.English
	}

	explanation := h.Generator.GenerateDetailedExplanation(ctx, sentence, string(target))

	var sb strings.Builder
	if target == lang.Japanese {
		annotated := h.Generator.GenerateReadingAnnotation(ctx, sentence)
		if annotated != "" && annotated != sentence {
			sb.WriteString(annotated)
			sb.WriteString("\n\n")
		}
	}
	sb.WriteString(explanation)
	h.reply(ctx, b, chatID, sb.String())
}
