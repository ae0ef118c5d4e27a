package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/ysaito/tg-lingo-circle/pkg/ai"
	"github.com/ysaito/tg-lingo-circle/pkg/lang"
	"github.com/ysaito/tg-lingo-circle/pkg/logger"
)

// kudosEmoji is the set of approving reactions that earn the reacting
// user a point.
var kudosEmoji = map[string]bool{
	"👍": true,
	"❤":  true,
	"❤️": true,
	"🔥": true,
	"👏": true,
}

// handleReaction routes a reaction update. A reaction on the member's
// own prompt DM is a help request and gets the prompt's other half in
// reply. Anywhere else, a kudos emoji credits the reacting user.
// Self-kudos is deliberately allowed, and the target language plays no
// role in crediting. Kudos are silent; no chat reply.
func (h *Handlers) handleReaction(ctx context.Context, b *bot.Bot, reaction *models.MessageReactionUpdated) {
	if reaction == nil || reaction.User == nil || reaction.User.ID == 0 {
		return
	}
	if reaction.User.IsBot {
		return
	}
	userID := reaction.User.ID

	if current := h.Broadcasts.Current(); current != nil {
		if id, ok := current.PromptMessageID(userID); ok && id == reaction.MessageID {
			h.sendPromptHelp(ctx, b, userID, current.Prompt)
			return
		}
	}

	if !hasNewKudos(reaction.OldReaction, reaction.NewReaction) {
		return
	}
	h.Registry.GetOrCreate(userID, reaction.Chat.ID)
	total := h.Ledger.Increment(userID, h.Rewards.Kudos)
	logger.Debug("kudos awarded", "user_id", userID, "total", total)
}

// sendPromptHelp replies with the half of the prompt the member did not
// receive, which for most members is their stronger language.
func (h *Handlers) sendPromptHelp(ctx context.Context, b *bot.Bot, userID int64, prompt ai.Prompt) {
	other := prompt.Ja
	if user, ok := h.Registry.User(userID); ok && user.TargetLanguage == lang.Japanese {
		other = prompt.En
	}
	h.reply(ctx, b, userID, fmt.Sprintf(
		"Need a hand with the prompt? Here it is in the other language:\n\n%s", other))
}

// hasNewKudos reports whether the update added at least one kudos emoji
// that was not present before.
func hasNewKudos(before, after []models.ReactionType) bool {
	previous := make(map[string]bool, len(before))
	for _, r := range before {
		if r.ReactionTypeEmoji != nil {
			previous[r.ReactionTypeEmoji.Emoji] = true
		}
	}
	for _, r := range after {
		if r.ReactionTypeEmoji == nil {
			continue
		}
		emoji := r.ReactionTypeEmoji.Emoji
		if kudosEmoji[emoji] && !previous[emoji] {
			return true
		}
	}
	return false
}
