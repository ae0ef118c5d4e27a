package db

import (
	"time"

	"gorm.io/datatypes"
)

// The mirror tables are flat per-user copies of the in-memory
// registries, upserted by user id. They are read once at startup and
// never consulted on the hot path.

type UserProfile struct {
	ID             uint   `gorm:"primaryKey"`
	UserID         int64  `gorm:"uniqueIndex"`
	TeamID         int64  `gorm:"index"`
	TargetLanguage string `gorm:"not null;default:''"`
	FirstSeenAt    time.Time
}

type PseudonymRecord struct {
	ID       uint   `gorm:"primaryKey"`
	UserID   int64  `gorm:"uniqueIndex"`
	Handle   string `gorm:"not null"`
	Creature string `gorm:"not null"`
	Plant    string `gorm:"not null"`
	Cohort   string `gorm:"not null;default:''"`
}

type PointsEntry struct {
	ID     uint  `gorm:"primaryKey"`
	UserID int64 `gorm:"uniqueIndex"`
	Total  int   `gorm:"not null;default:0"`
}

type SubmissionRecord struct {
	ID               string `gorm:"primaryKey"`
	UserID           int64  `gorm:"index"`
	Text             string `gorm:"not null"`
	DetectedLanguage string `gorm:"not null"`
	TargetLanguage   string `gorm:"not null"`
	Feedback         string
	PublicMessageID  int
	CreatedAt        time.Time
}

type PromptBroadcastRecord struct {
	ID                    string `gorm:"primaryKey"`
	Category              string `gorm:"not null"`
	TextEn                string `gorm:"not null"`
	TextJa                string `gorm:"not null"`
	AnnouncementMessageID int
	ResponseMessageIDs    datatypes.JSON
	CreatedAt             time.Time
}
