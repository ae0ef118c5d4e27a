// Package handlers wires inbound chat events to the identity, points
// and response-validation logic.
package handlers

import (
	"context"
	"time"

	"github.com/ysaito/tg-lingo-circle/pkg/ai"
	"github.com/ysaito/tg-lingo-circle/pkg/bot/broadcast"
	"github.com/ysaito/tg-lingo-circle/pkg/config"
	"github.com/ysaito/tg-lingo-circle/pkg/db"
	"github.com/ysaito/tg-lingo-circle/pkg/dict"
	"github.com/ysaito/tg-lingo-circle/pkg/identity"
	"github.com/ysaito/tg-lingo-circle/pkg/lang"
	"github.com/ysaito/tg-lingo-circle/pkg/points"
)

// Handlers holds every collaborator an event handler may touch. All
// state is owned here and injected, never reached through package
// globals, so tests can build an isolated instance.
type Handlers struct {
	Registry    *identity.Registry
	Ledger      *points.Ledger
	Submissions *SubmissionLog
	Generator   ai.Generator
	Dictionary  *dict.Client
	Mirror      *db.Mirror
	Broadcasts  *broadcast.Tracker

	ChannelChatID int64
	Rewards       config.RewardsConfig

	// TriggerBroadcast runs a manual prompt broadcast; wired by main.
	TriggerBroadcast func(ctx context.Context)

	now func() time.Time
}

func New(registry *identity.Registry, ledger *points.Ledger, generator ai.Generator) *Handlers {
	if registry == nil {
		registry = identity.DefaultRegistry
	}
	if ledger == nil {
		ledger = points.DefaultLedger
	}
	if generator == nil {
		generator = ai.NewCanned()
	}
	return &Handlers{
		Registry:    registry,
		Ledger:      ledger,
		Submissions: NewSubmissionLog(),
		Generator:   generator,
		Rewards:     config.RewardsConfig{Submission: 1, Kudos: 1},
		now:         time.Now,
	}
}

// SetClock overrides the handler clock, for tests.
func (h *Handlers) SetClock(now func() time.Time) {
	if now != nil {
		h.now = now
	}
}

func (h *Handlers) targetOf(userID int64) lang.Language {
	user, ok := h.Registry.User(userID)
	if !ok {
		return ""
	}
	return user.TargetLanguage
}
