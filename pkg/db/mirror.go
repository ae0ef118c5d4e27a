package db

import (
	"context"
	"time"

	"github.com/ysaito/tg-lingo-circle/pkg/identity"
	"github.com/ysaito/tg-lingo-circle/pkg/lang"
	"github.com/ysaito/tg-lingo-circle/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const mirrorQueueSize = 256

// Mirror is the asynchronous write-behind persistence layer. Core
// mutations enqueue an upsert and return immediately; one background
// goroutine applies them in order. Every write is best-effort: failures
// are logged and dropped, never surfaced to event handling. A nil
// *Mirror is valid and inert, which is how memory-only mode works.
type Mirror struct {
	db    *gorm.DB
	tasks chan mirrorTask
}

type mirrorTask struct {
	name string
	fn   func(*gorm.DB) error
}

func NewMirror(gdb *gorm.DB) *Mirror {
	if gdb == nil {
		return nil
	}
	return &Mirror{
		db:    gdb,
		tasks: make(chan mirrorTask, mirrorQueueSize),
	}
}

// Run drains the task queue until ctx is cancelled.
func (m *Mirror) Run(ctx context.Context) {
	if m == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-m.tasks:
			m.apply(task)
		}
	}
}

func (m *Mirror) apply(task mirrorTask) {
	if err := task.fn(m.db); err != nil {
		logger.Error("mirror write failed", "task", task.name, "error", err)
	}
}

func (m *Mirror) enqueue(task mirrorTask) {
	if m == nil {
		return
	}
	select {
	case m.tasks <- task:
	default:
		logger.Warn("mirror queue full, dropping write", "task", task.name)
	}
}

// Flush applies every queued task inline and returns once the queue is
// empty or ctx expires. Used by tests and graceful shutdown.
func (m *Mirror) Flush(ctx context.Context) error {
	if m == nil {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case task := <-m.tasks:
			m.apply(task)
		default:
			return nil
		}
	}
}

func (m *Mirror) UpsertUser(user identity.User, pseudonym identity.Pseudonym) {
	m.enqueue(mirrorTask{name: "upsert_user", fn: func(gdb *gorm.DB) error {
		profile := UserProfile{
			UserID:         user.ID,
			TeamID:         user.TeamID,
			TargetLanguage: string(user.TargetLanguage),
			FirstSeenAt:    user.CreatedAt,
		}
		if err := gdb.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"team_id", "target_language"}),
		}).Create(&profile).Error; err != nil {
			return err
		}
		if pseudonym.Handle == "" {
			return nil
		}
		record := PseudonymRecord{
			UserID:   user.ID,
			Handle:   pseudonym.Handle,
			Creature: pseudonym.Creature,
			Plant:    pseudonym.Plant,
			Cohort:   pseudonym.Cohort,
		}
		return gdb.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"handle", "creature", "plant", "cohort"}),
		}).Create(&record).Error
	}})
}

func (m *Mirror) UpsertPoints(userID int64, total int) {
	m.enqueue(mirrorTask{name: "upsert_points", fn: func(gdb *gorm.DB) error {
		entry := PointsEntry{UserID: userID, Total: total}
		return gdb.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"total"}),
		}).Create(&entry).Error
	}})
}

func (m *Mirror) SaveSubmission(record SubmissionRecord) {
	m.enqueue(mirrorTask{name: "save_submission", fn: func(gdb *gorm.DB) error {
		return gdb.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"feedback", "public_message_id"}),
		}).Create(&record).Error
	}})
}

func (m *Mirror) SaveBroadcast(record PromptBroadcastRecord) {
	m.enqueue(mirrorTask{name: "save_broadcast", fn: func(gdb *gorm.DB) error {
		if record.CreatedAt.IsZero() {
			record.CreatedAt = time.Now()
		}
		return gdb.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"announcement_message_id", "response_message_ids"}),
		}).Create(&record).Error
	}})
}

// MirrorState is the bulk read-all performed once at startup.
type MirrorState struct {
	Users      []identity.User
	Pseudonyms map[int64]identity.Pseudonym
	Points     map[int64]int
}

// LoadAll reads every mirror table for registry and ledger rehydration.
// A nil Mirror yields an empty state.
func (m *Mirror) LoadAll() (MirrorState, error) {
	state := MirrorState{
		Pseudonyms: make(map[int64]identity.Pseudonym),
		Points:     make(map[int64]int),
	}
	if m == nil {
		return state, nil
	}

	var profiles []UserProfile
	if err := m.db.Find(&profiles).Error; err != nil {
		return state, err
	}
	for _, p := range profiles {
		state.Users = append(state.Users, identity.User{
			ID:             p.UserID,
			TeamID:         p.TeamID,
			TargetLanguage: lang.Language(p.TargetLanguage),
			CreatedAt:      p.FirstSeenAt,
		})
	}

	var pseudonyms []PseudonymRecord
	if err := m.db.Find(&pseudonyms).Error; err != nil {
		return state, err
	}
	for _, p := range pseudonyms {
		state.Pseudonyms[p.UserID] = identity.Pseudonym{
			Handle:   p.Handle,
			Creature: p.Creature,
			Plant:    p.Plant,
			Cohort:   p.Cohort,
		}
	}

	var entries []PointsEntry
	if err := m.db.Find(&entries).Error; err != nil {
		return state, err
	}
	for _, e := range entries {
		state.Points[e.UserID] = e.Total
	}
	return state, nil
}
