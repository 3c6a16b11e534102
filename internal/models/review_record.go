package models

import "time"

// ReviewDecision is the terminal outcome recorded for a moderation decision.
type ReviewDecision string

const (
	ReviewDecisionApproved ReviewDecision = "approved"
	ReviewDecisionRejected ReviewDecision = "rejected"
)

// ReviewRecord is an immutable audit entry written alongside every terminal
// moderation decision. Records are append-only: they are never updated or
// deleted, even when the seller resubmits and the listing is decided again.
//
// RecordKey is a caller-generated UUID; its unique index makes the append
// idempotent if a decision is ever replayed.
type ReviewRecord struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	RecordKey  string         `gorm:"size:36;uniqueIndex;not null" json:"record_key"`
	ItemID     uint           `gorm:"not null;index" json:"item_id"`
	Decision   ReviewDecision `gorm:"type:varchar(20);not null" json:"decision"`
	ReviewerID uint           `gorm:"not null;index" json:"reviewer_id"`
	Reviewer   *User          `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	Notes      string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
