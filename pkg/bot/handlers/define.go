package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/ysaito/tg-lingo-circle/pkg/lang"
	"github.com/ysaito/tg-lingo-circle/pkg/logger"
)

// parseDefineCommand recognizes "define <word>" in a direct message.
func parseDefineCommand(text string) (string, bool) {
	lower := strings.ToLower(text)
	if !strings.HasPrefix(lower, "define ") {
		return "", false
	}
	word := strings.TrimSpace(text[len("define "):])
	if word == "" || strings.ContainsAny(word, "\n") {
		return "", false
	}
	return word, true
}

func (h *Handlers) handleDefine(ctx context.Context, b *bot.Bot, chatID int64, word string) {
	if h.Dictionary == nil {
		h.reply(ctx, b, chatID, "Sorry, dictionary lookups aren't available right now.")
		return
	}

	script := lang.Classify(word)
	definitions, err := h.Dictionary.Lookup(ctx, word, script)
	if err != nil {
		logger.Error("dictionary lookup failed", "word", word, "error", err)
		h.reply(ctx, b, chatID, fmt.Sprintf("Sorry, I couldn't find a definition for %q.", word))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📖 %s\n", word))
	for _, def := range definitions {
		sb.WriteString("• ")
		sb.WriteString(def)
		sb.WriteString("\n")
	}
	h.reply(ctx, b, chatID, sb.String())
}
