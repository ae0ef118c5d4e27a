// Package broadcast generates one shared bilingual prompt and fans it
// out: an announcement in the public channel, then a per-member direct
// message with the half matching each member's target language.
package broadcast

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/ysaito/tg-lingo-circle/pkg/ai"
	"github.com/ysaito/tg-lingo-circle/pkg/config"
	"github.com/ysaito/tg-lingo-circle/pkg/db"
	"github.com/ysaito/tg-lingo-circle/pkg/identity"
	"github.com/ysaito/tg-lingo-circle/pkg/lang"
	"github.com/ysaito/tg-lingo-circle/pkg/logger"
	"github.com/ysaito/tg-lingo-circle/pkg/ui"
)

type Deps struct {
	Bot           *bot.Bot
	Registry      *identity.Registry
	Generator     ai.Generator
	Mirror        *db.Mirror
	Tracker       *Tracker
	ChannelChatID int64
	Schedule      config.BroadcastConfig
}

// StartSchedule fires Run at every configured weekday+hour slot. One
// minute tick granularity, same as the reminder loop this replaces.
func StartSchedule(ctx context.Context, deps Deps) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	// Slots that predate the process must not replay after a restart.
	lastFired := time.Now().UTC()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			slot, ok := latestDueSlot(now.UTC(), deps.Schedule, lastFired)
			if !ok {
				continue
			}
			lastFired = slot
			Run(ctx, deps)
		}
	}
}

// latestDueSlot returns the most recent schedule slot at or before now
// that has not fired yet.
func latestDueSlot(now time.Time, schedule config.BroadcastConfig, lastFired time.Time) (time.Time, bool) {
	offset := time.Duration(schedule.TimezoneOffsetHours) * time.Hour
	localNow := now.Add(offset)

	if !weekdayEnabled(localNow.Weekday(), schedule.Weekdays) {
		return time.Time{}, false
	}

	year, month, day := localNow.Date()
	var latest time.Time
	for _, hour := range schedule.Hours {
		localSlot := time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
		slotUTC := localSlot.Add(-offset)
		if now.Before(slotUTC) {
			continue
		}
		if !lastFired.Before(slotUTC) {
			continue
		}
		if latest.IsZero() || slotUTC.After(latest) {
			latest = slotUTC
		}
	}
	if latest.IsZero() {
		return time.Time{}, false
	}
	return latest, true
}

func weekdayEnabled(day time.Weekday, enabled []string) bool {
	for _, name := range enabled {
		if name == day.String() {
			return true
		}
	}
	return false
}

// Run performs one full broadcast. With no channel configured it aborts
// before any chat call; per-member delivery failures are logged and
// skipped without aborting the rest of the fan-out.
func Run(ctx context.Context, deps Deps) {
	if deps.ChannelChatID == 0 {
		logger.Warn("broadcast aborted: no public channel configured")
		return
	}

	prompt := deps.Generator.GeneratePrompt(ctx)

	announcementID := 0
	announced, err := deps.Bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: deps.ChannelChatID,
		Text:   ui.RenderPromptAnnouncement(prompt.Category, prompt.En, prompt.Ja),
	})
	if err != nil {
		logger.Error("failed to announce prompt to channel", "error", err)
	} else {
		announcementID = announced.ID
	}

	current := deps.Tracker.Begin(prompt, announcementID)

	for _, user := range deps.Registry.All() {
		if user.ID == 0 {
			continue
		}
		sendMemberPrompt(ctx, deps, user, prompt, current)
	}

	record := current.Record()
	record.CreatedAt = time.Now()
	deps.Mirror.SaveBroadcast(record)
	logger.Info("prompt broadcast complete", "category", prompt.Category)
}

func sendMemberPrompt(ctx context.Context, deps Deps, user identity.User, prompt ai.Prompt, current *Broadcast) {
	if user.TargetLanguage == "" {
		if _, err := deps.Bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: user.ID,
			Text:   "A new prompt just went out, but you haven't picked a practice language yet. Use /settings and you'll get the next one!",
		}); err != nil {
			logger.Error("failed to send setup reminder", "user_id", user.ID, "error", err)
		}
		return
	}

	half := prompt.En
	if user.TargetLanguage == lang.Japanese {
		half = prompt.Ja
	}
	text := fmt.Sprintf("📝 Today's prompt (%s)\n\n%s\n\nReply here with your answer and I'll post it anonymously.", prompt.Category, half)

	msg, err := deps.Bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: user.ID,
		Text:   text,
	})
	if err != nil {
		// DMs disabled or blocked bot: skip this member only.
		logger.Error("failed to send prompt to member", "user_id", user.ID, "error", err)
		return
	}
	current.RememberPromptMessage(user.ID, msg.ID)
}
