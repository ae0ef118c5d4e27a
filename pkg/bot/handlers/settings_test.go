package handlers

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/ysaito/tg-lingo-circle/pkg/ui"
)

func languageCallback(t *testing.T, userID, chatID int64, code string) *models.Update {
	t.Helper()
	data, err := ui.BuildLanguageCallback(code)
	if err != nil {
		t.Fatalf("BuildLanguageCallback failed: %v", err)
	}
	return callbackUpdate(userID, chatID, data)
}

func callbackUpdate(userID, chatID int64, data string) *models.Update {
	return &models.Update{
		CallbackQuery: &models.CallbackQuery{
			ID:   "cb-1",
			From: models.User{ID: userID},
			Data: data,
			Message: models.MaybeInaccessibleMessage{
				Type: models.MaybeInaccessibleMessageTypeMessage,
				Message: &models.Message{
					ID:   42,
					Chat: models.Chat{ID: chatID, Type: models.ChatTypePrivate},
				},
			},
		},
	}
}

func TestSettingsCallbackSetsLanguage(t *testing.T) {
	h := newTestHandlers()
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	h.HandleSettingsCallback(context.Background(), b, languageCallback(t, testUserID, testChatID, "ja"))

	user, ok := h.Registry.User(testUserID)
	if !ok {
		t.Fatal("user was not created by the callback")
	}
	if user.TargetLanguage != "ja" {
		t.Errorf("target language = %q, want ja", user.TargetLanguage)
	}

	var answered, edited bool
	for _, req := range client.requests {
		switch {
		case strings.HasSuffix(req.path, "/answerCallbackQuery"):
			answered = true
			if text := multipartField(t, req, "text"); !strings.Contains(text, "Japanese") {
				t.Errorf("callback answer %q does not name the language", text)
			}
		case strings.HasSuffix(req.path, "/editMessageText"):
			edited = true
			if got := multipartField(t, req, "message_id"); got != "42" {
				t.Errorf("edited message %s, want 42", got)
			}
		}
	}
	if !answered {
		t.Error("callback query was never answered")
	}
	if !edited {
		t.Error("settings message was never re-rendered")
	}
}

func TestSettingsCallbackClose(t *testing.T) {
	h := newTestHandlers()
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	data, err := ui.BuildCloseCallback()
	if err != nil {
		t.Fatalf("BuildCloseCallback failed: %v", err)
	}
	h.HandleSettingsCallback(context.Background(), b, callbackUpdate(testUserID, testChatID, data))

	var edited bool
	for _, req := range client.requests {
		if strings.HasSuffix(req.path, "/editMessageText") {
			edited = true
			if text := multipartField(t, req, "text"); !strings.Contains(text, "Settings saved") {
				t.Errorf("close edit text = %q", text)
			}
		}
	}
	if !edited {
		t.Error("close did not edit the settings message")
	}
}

func TestSettingsCallbackMalformedData(t *testing.T) {
	h := newTestHandlers()
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	h.HandleSettingsCallback(context.Background(), b, callbackUpdate(testUserID, testChatID, "p:bogus:zz"))

	if _, ok := h.Registry.User(testUserID); ok {
		t.Error("malformed callback must not create a user")
	}
	for _, req := range client.requests {
		if strings.HasSuffix(req.path, "/editMessageText") {
			t.Error("malformed callback must not edit the message")
		}
	}
}

func TestStartWelcomesWithPseudonym(t *testing.T) {
	h := newTestHandlers()
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	h.HandleStart(context.Background(), b, directMessage(testUserID, testChatID, "/start"))

	sent := client.sentMessages(t)
	if len(sent) != 2 {
		t.Fatalf("expected welcome + language keyboard, got %d messages", len(sent))
	}
	pseudonym, ok := h.Registry.PseudonymOf(testUserID)
	if !ok {
		t.Fatal("start did not create a pseudonym")
	}
	welcome := multipartField(t, sent[0], "text")
	if !strings.Contains(welcome, pseudonym.Handle) {
		t.Errorf("welcome %q does not reveal the member's own handle", welcome)
	}
	if h.Ledger.Get(testUserID) != 0 {
		t.Error("joining must not award points")
	}
}

func TestLeaderboardRendersPseudonyms(t *testing.T) {
	h := newTestHandlers()
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	h.Registry.GetOrCreate(testUserID, testChatID)
	h.Ledger.Increment(testUserID, 3)
	h.Ledger.Increment(2000, 1) // never registered, no pseudonym

	h.HandleLeaderboard(context.Background(), b, directMessage(testUserID, testChatID, "/leaderboard"))

	sent := client.sentMessages(t)
	if len(sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sent))
	}
	text := multipartField(t, sent[0], "text")
	pseudonym, _ := h.Registry.PseudonymOf(testUserID)
	if !strings.Contains(text, pseudonym.Handle) {
		t.Errorf("leaderboard %q missing handle %q", text, pseudonym.Handle)
	}
	if !strings.Contains(text, "mystery member") {
		t.Errorf("leaderboard %q missing placeholder for unknown user", text)
	}
	if strings.Contains(text, strconv.FormatInt(testUserID, 10)) {
		t.Errorf("leaderboard leaks a real user id: %q", text)
	}
}

func TestProtectRecoversFromPanic(t *testing.T) {
	h := newTestHandlers()
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	wrapped := h.Protect("boom", func(ctx context.Context, b *bot.Bot, update *models.Update) {
		panic("boom")
	})
	wrapped(context.Background(), b, directMessage(testUserID, testChatID, "hi"))

	sent := client.sentMessages(t)
	if len(sent) != 1 {
		t.Fatalf("expected 1 apology message, got %d", len(sent))
	}
	if text := multipartField(t, sent[0], "text"); text != genericApology {
		t.Errorf("apology text = %q", text)
	}
}
