package ui

import (
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"
	"github.com/ysaito/tg-lingo-circle/pkg/lang"
	"github.com/ysaito/tg-lingo-circle/pkg/points"
)

// RenderLanguageSettings builds the settings message with the language
// selection keyboard.
func RenderLanguageSettings(current lang.Language) (string, *models.InlineKeyboardMarkup, error) {
	enCallback, err := BuildLanguageCallback("en")
	if err != nil {
		return "", nil, err
	}
	jaCallback, err := BuildLanguageCallback("ja")
	if err != nil {
		return "", nil, err
	}
	closeCallback, err := BuildCloseCallback()
	if err != nil {
		return "", nil, err
	}

	var text string
	if current == "" {
		text = "Which language are you practicing? Your responses will be checked against this choice."
	} else {
		text = fmt.Sprintf("You are practicing %s. Pick a language to change it.", lang.DisplayName(current))
	}

	keyboard := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: markSelected("English 🇬🇧", current == lang.English), CallbackData: enCallback},
				{Text: markSelected("日本語 🇯🇵", current == lang.Japanese), CallbackData: jaCallback},
			},
			{
				{Text: "Close", CallbackData: closeCallback},
			},
		},
	}
	return text, keyboard, nil
}

func markSelected(label string, selected bool) string {
	if selected {
		return "✅ " + label
	}
	return label
}

// RenderLeaderboard formats the top entries with pseudonym handles.
// resolve maps a user id to its display handle; unknown users are
// shown under a placeholder so the board never leaks a real id.
func RenderLeaderboard(entries []points.Entry, resolve func(userID int64) (string, bool)) string {
	if len(entries) == 0 {
		return "No points on the board yet. Send your first response to get started!"
	}

	var sb strings.Builder
	sb.WriteString("🏆 Leaderboard\n\n")
	for i, entry := range entries {
		handle, ok := resolve(entry.UserID)
		if !ok {
			handle = "(mystery member)"
		}
		sb.WriteString(fmt.Sprintf("%d. %s: %d pt", i+1, handle, entry.Total))
		if entry.Total != 1 {
			sb.WriteString("s")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderPublicSubmission formats an accepted response for the public
// channel, attributed only to the pseudonym.
func RenderPublicSubmission(handle, cohort, text string) string {
	header := handle
	if cohort != "" {
		header = fmt.Sprintf("%s (%s)", handle, cohort)
	}
	return fmt.Sprintf("💬 %s\n\n%s", header, text)
}

// RenderPromptAnnouncement formats the broadcast announcement for the
// public channel with both language halves.
func RenderPromptAnnouncement(category, en, ja string) string {
	return fmt.Sprintf("📝 Today's prompt (%s)\n\n🇬🇧 %s\n\n🇯🇵 %s\n\nReply to me in a direct message. Your answer is posted anonymously!", category, en, ja)
}
