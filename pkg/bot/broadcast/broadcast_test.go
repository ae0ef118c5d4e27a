package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"
	"time"

	telegram "github.com/go-telegram/bot"
	"github.com/ysaito/tg-lingo-circle/pkg/ai"
	"github.com/ysaito/tg-lingo-circle/pkg/config"
	"github.com/ysaito/tg-lingo-circle/pkg/identity"
)

type recordedRequest struct {
	path        string
	contentType string
	body        []byte
}

type mockClient struct {
	requests []recordedRequest
}

func (m *mockClient) Do(req *http.Request) (*http.Response, error) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	req.Body.Close()
	m.requests = append(m.requests, recordedRequest{
		path:        req.URL.Path,
		contentType: req.Header.Get("Content-Type"),
		body:        body,
	})
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(`{"ok":true,"result":{}}`)),
		Header:     make(http.Header),
	}, nil
}

func (m *mockClient) field(t *testing.T, index int, name string) string {
	t.Helper()
	if index >= len(m.requests) {
		t.Fatalf("request %d not recorded (have %d)", index, len(m.requests))
	}
	req := m.requests[index]
	mediaType, params, err := mime.ParseMediaType(req.contentType)
	if err != nil {
		t.Fatalf("failed to parse media type: %v", err)
	}
	if !strings.HasPrefix(mediaType, "multipart/") {
		t.Fatalf("unexpected media type: %s", mediaType)
	}
	reader := multipart.NewReader(strings.NewReader(string(req.body)), params["boundary"])
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to read multipart part: %v", err)
		}
		if part.FormName() == name {
			data, err := io.ReadAll(part)
			if err != nil {
				t.Fatalf("failed to read multipart field: %v", err)
			}
			return string(data)
		}
	}
	return ""
}

func newTestDeps(t *testing.T, client *mockClient, channelID int64) Deps {
	t.Helper()
	b, err := telegram.New("test-token",
		telegram.WithSkipGetMe(),
		telegram.WithHTTPClient(time.Second, client),
	)
	if err != nil {
		t.Fatalf("failed to create test bot: %v", err)
	}
	return Deps{
		Bot:           b,
		Registry:      identity.NewRegistry(nil, rand.New(rand.NewSource(3))),
		Generator:     ai.NewCanned(),
		Tracker:       NewTracker(),
		ChannelChatID: channelID,
	}
}

func TestRunAbortsWithoutChannel(t *testing.T) {
	client := &mockClient{}
	deps := newTestDeps(t, client, 0)
	deps.Registry.GetOrCreate(1, 1)

	Run(context.Background(), deps)

	if len(client.requests) != 0 {
		t.Fatalf("broadcast with no channel made %d chat calls", len(client.requests))
	}
}

func TestRunFansOutPerTargetLanguage(t *testing.T) {
	client := &mockClient{}
	deps := newTestDeps(t, client, -100500)

	deps.Registry.GetOrCreate(10, 10)
	if err := deps.Registry.SetTargetLanguage(10, "ja"); err != nil {
		t.Fatalf("SetTargetLanguage failed: %v", err)
	}
	deps.Registry.GetOrCreate(20, 20)
	if err := deps.Registry.SetTargetLanguage(20, "en"); err != nil {
		t.Fatalf("SetTargetLanguage failed: %v", err)
	}
	deps.Registry.GetOrCreate(30, 30) // language unset

	Run(context.Background(), deps)

	// Announcement plus one DM per registered member.
	if len(client.requests) != 4 {
		t.Fatalf("expected 4 sendMessage calls, got %d", len(client.requests))
	}
	if got := client.field(t, 0, "chat_id"); got != "-100500" {
		t.Errorf("first message went to %s, want the channel", got)
	}
	announcement := client.field(t, 0, "text")
	if !strings.Contains(announcement, "🇬🇧") || !strings.Contains(announcement, "🇯🇵") {
		t.Errorf("announcement missing bilingual halves: %q", announcement)
	}

	prompt := deps.Tracker.Current().Prompt
	byChat := map[string]string{}
	for i := 1; i < 4; i++ {
		byChat[client.field(t, i, "chat_id")] = client.field(t, i, "text")
	}
	if text := byChat["10"]; !strings.Contains(text, prompt.Ja) {
		t.Errorf("ja member got %q, want the Japanese half", text)
	}
	if text := byChat["20"]; !strings.Contains(text, prompt.En) {
		t.Errorf("en member got %q, want the English half", text)
	}
	if text := byChat["30"]; !strings.Contains(text, "/settings") {
		t.Errorf("unset member got %q, want a setup reminder", text)
	}
}

func TestLatestDueSlot(t *testing.T) {
	schedule := config.BroadcastConfig{
		Weekdays: []string{"Monday", "Wednesday", "Friday"},
		Hours:    []int{9, 13, 19},
	}

	// 2025-06-02 is a Monday.
	monday10 := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	slot, ok := latestDueSlot(monday10, schedule, time.Time{})
	if !ok {
		t.Fatal("expected a due slot Monday 10:00")
	}
	if slot.Hour() != 9 {
		t.Errorf("due slot hour = %d, want 9", slot.Hour())
	}

	// Already fired at 09:00: nothing due until 13:00.
	if _, ok := latestDueSlot(monday10, schedule, slot); ok {
		t.Error("slot reported due again after firing")
	}
	monday14 := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)
	next, ok := latestDueSlot(monday14, schedule, slot)
	if !ok || next.Hour() != 13 {
		t.Errorf("next slot = %v ok=%v, want 13:00", next, ok)
	}

	// Tuesday is not scheduled.
	tuesday := time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC)
	if _, ok := latestDueSlot(tuesday, schedule, time.Time{}); ok {
		t.Error("unscheduled weekday reported a due slot")
	}
}

func TestLatestDueSlotRestartDoesNotReplay(t *testing.T) {
	schedule := config.BroadcastConfig{
		Weekdays: []string{"Monday"},
		Hours:    []int{9, 13},
	}

	// Process started at 10:00, after the 09:00 slot. Seeding lastFired
	// with the startup time must keep that slot from replaying.
	startup := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	if _, ok := latestDueSlot(startup.Add(5*time.Minute), schedule, startup); ok {
		t.Error("pre-startup slot replayed after restart")
	}

	// The next scheduled slot still fires normally.
	afternoon := time.Date(2025, 6, 2, 13, 2, 0, 0, time.UTC)
	slot, ok := latestDueSlot(afternoon, schedule, startup)
	if !ok || slot.Hour() != 13 {
		t.Errorf("post-startup slot = %v ok=%v, want 13:00", slot, ok)
	}
}

func TestLatestDueSlotTimezoneOffset(t *testing.T) {
	schedule := config.BroadcastConfig{
		Weekdays:            []string{"Monday"},
		Hours:               []int{9},
		TimezoneOffsetHours: 9, // JST
	}

	// 01:00 UTC Monday is 10:00 JST Monday: the 09:00 JST slot is due.
	utc1 := time.Date(2025, 6, 2, 1, 0, 0, 0, time.UTC)
	slot, ok := latestDueSlot(utc1, schedule, time.Time{})
	if !ok {
		t.Fatal("expected due slot for 09:00 JST")
	}
	if got := slot.UTC().Hour(); got != 0 {
		t.Errorf("slot UTC hour = %d, want 0 (09:00 JST)", got)
	}
}

func TestTrackerResponses(t *testing.T) {
	tracker := NewTracker()
	if tracker.Current() != nil {
		t.Fatal("tracker should start empty")
	}

	b := tracker.Begin(ai.Prompt{Category: "x", En: "e", Ja: "j"}, 7)
	if b.ID == "" {
		t.Error("Begin did not assign a broadcast id")
	}
	if rec := b.Record(); string(rec.ResponseMessageIDs) != "[]" {
		t.Errorf("fresh record response ids = %s, want []", rec.ResponseMessageIDs)
	}

	b.RememberPromptMessage(10, 99)
	b.AppendResponse("sub-1")
	b.AppendResponse("sub-2")

	if id, ok := b.PromptMessageID(10); !ok || id != 99 {
		t.Errorf("PromptMessageID = %d/%v, want 99/true", id, ok)
	}
	if got := b.ResponseIDs(); len(got) != 2 || got[0] != "sub-1" {
		t.Errorf("ResponseIDs = %v", got)
	}

	rec := b.Record()
	if rec.ID != b.ID || rec.TextEn != "e" || rec.AnnouncementMessageID != 7 {
		t.Errorf("record fields wrong: %+v", rec)
	}
	var ids []string
	if err := json.Unmarshal(rec.ResponseMessageIDs, &ids); err != nil {
		t.Fatalf("record response ids not valid JSON: %v", err)
	}
	if len(ids) != 2 || ids[1] != "sub-2" {
		t.Errorf("record response ids = %v", ids)
	}

	// Unrelated code holding a nil broadcast must not panic.
	var none *Broadcast
	none.AppendResponse("sub-3")
	if _, ok := none.PromptMessageID(1); ok {
		t.Error("nil broadcast returned a message id")
	}
}
