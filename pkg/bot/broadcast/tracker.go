package broadcast

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/ysaito/tg-lingo-circle/pkg/ai"
	"github.com/ysaito/tg-lingo-circle/pkg/db"
	"gorm.io/datatypes"
)

// Broadcast is the in-memory record of the prompt currently in flight.
// After distribution it only ever grows its response list.
type Broadcast struct {
	mu                    sync.Mutex
	ID                    string
	Prompt                ai.Prompt
	AnnouncementMessageID int
	promptMessageIDs      map[int64]int
	responseIDs           []string
}

// RememberPromptMessage records the DM message id delivered to a
// member, so a later reaction on that exact message can be correlated
// back to this prompt.
func (b *Broadcast) RememberPromptMessage(userID int64, messageID int) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.promptMessageIDs[userID] = messageID
}

func (b *Broadcast) PromptMessageID(userID int64) (int, bool) {
	if b == nil {
		return 0, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.promptMessageIDs[userID]
	return id, ok
}

// AppendResponse links an accepted submission to this prompt.
func (b *Broadcast) AppendResponse(submissionID string) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.responseIDs = append(b.responseIDs, submissionID)
}

func (b *Broadcast) ResponseIDs() []string {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.responseIDs))
	copy(out, b.responseIDs)
	return out
}

// Record renders the broadcast for the persistence mirror. The accepted
// response ids go into the JSON column, so re-saving after each
// AppendResponse keeps the stored row current.
func (b *Broadcast) Record() db.PromptBroadcastRecord {
	if b == nil {
		return db.PromptBroadcastRecord{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	ids := []byte("[]")
	if len(b.responseIDs) > 0 {
		if marshaled, err := json.Marshal(b.responseIDs); err == nil {
			ids = marshaled
		}
	}
	return db.PromptBroadcastRecord{
		ID:                    b.ID,
		Category:              b.Prompt.Category,
		TextEn:                b.Prompt.En,
		TextJa:                b.Prompt.Ja,
		AnnouncementMessageID: b.AnnouncementMessageID,
		ResponseMessageIDs:    datatypes.JSON(ids),
	}
}

// Tracker holds the current broadcast so the response pipeline can
// attach accepted submissions to it.
type Tracker struct {
	mu      sync.Mutex
	current *Broadcast
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Begin replaces the current broadcast with a fresh one.
func (t *Tracker) Begin(prompt ai.Prompt, announcementMessageID int) *Broadcast {
	b := &Broadcast{
		ID:                    uuid.NewString(),
		Prompt:                prompt,
		AnnouncementMessageID: announcementMessageID,
		promptMessageIDs:      make(map[int64]int),
	}
	if t == nil {
		return b
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = b
	return b
}

// Current returns the broadcast in flight, nil before the first one.
func (t *Tracker) Current() *Broadcast {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}
