package handlers

import (
	"sync"
	"time"

	"github.com/ysaito/tg-lingo-circle/pkg/lang"
)

// Submission is one validated response. Records are immutable once
// added and live for the session unless mirrored to storage.
type Submission struct {
	ID               string
	UserID           int64
	Text             string
	DetectedLanguage lang.Language
	TargetLanguage   lang.Language
	Feedback         string
	PublicMessageID  int
	CreatedAt        time.Time
}

// SubmissionLog is the in-memory submission registry.
type SubmissionLog struct {
	mu      sync.Mutex
	records []Submission
}

func NewSubmissionLog() *SubmissionLog {
	return &SubmissionLog{}
}

func (s *SubmissionLog) Add(record Submission) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
}

func (s *SubmissionLog) Len() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// ByUser returns the user's submissions in insertion order.
func (s *SubmissionLog) ByUser(userID int64) []Submission {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Submission
	for _, r := range s.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}

// CountOnDay counts the user's accepted submissions on the given day,
// used to index into a tiered reward table.
func (s *SubmissionLog) CountOnDay(userID int64, day time.Time) int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	y, m, d := day.Date()
	count := 0
	for _, r := range s.records {
		ry, rm, rd := r.CreatedAt.Date()
		if r.UserID == userID && ry == y && rm == m && rd == d {
			count++
		}
	}
	return count
}
