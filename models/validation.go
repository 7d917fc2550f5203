package models

import "time"

// ValidationOutcome records how a validation ended. Only approved outcomes
// exist today; the column is kept explicit so rejected flows can be added
// without a schema change.
type ValidationOutcome string

const (
	ValidationApproved ValidationOutcome = "approved"
)

// ValidationRecord is the idempotency guard against double-rewarding: at most
// one row may exist per (mission, member). For unit missions the member is
// the unit leader who triggered the validation.
type ValidationRecord struct {
	ID          string            `gorm:"primaryKey;type:uuid" json:"id"`
	MissionID   string            `gorm:"type:uuid;not null;uniqueIndex:idx_validation_pair" json:"mission_id"`
	MemberID    string            `gorm:"type:uuid;not null;uniqueIndex:idx_validation_pair" json:"member_id"`
	ValidatorID string            `gorm:"type:uuid;not null" json:"validator_id"`
	Outcome     ValidationOutcome `gorm:"type:varchar(16);not null;default:'approved'" json:"outcome"`
	ValidatedAt time.Time         `gorm:"autoCreateTime" json:"validated_at"`
}

// RankingEntry is a cached point counter per member or per unit. Points only
// grow through successful validations; they are never user-settable.
type RankingEntry struct {
	ID       string  `gorm:"primaryKey;type:uuid" json:"id"`
	MemberID *string `gorm:"type:uuid;uniqueIndex" json:"member_id,omitempty"`
	UnitID   *string `gorm:"type:uuid;uniqueIndex" json:"unit_id,omitempty"`
	Points   int64   `gorm:"not null;default:0" json:"points"`
	Level    int     `gorm:"not null;default:1" json:"level"`

	Timestamps
}
