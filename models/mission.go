package models

import "time"

// Mission is a task that can be assigned to individual members and/or whole
// units. The reward triple is applied by the validation engine when the
// mission is validated.
type Mission struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Slug        string `gorm:"index" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	Type        string `gorm:"type:varchar(32);index" json:"type"`
	Difficulty  string `gorm:"type:varchar(16);default:'normal'" json:"difficulty"`

	// Reward triple
	XP    int64 `gorm:"not null;default:0" json:"xp"`
	Coins int64 `gorm:"not null;default:0" json:"coins"`
	Gems  int64 `gorm:"not null;default:0" json:"gems"`

	MaxAttempts int        `gorm:"not null;default:1" json:"max_attempts"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"` // mission window [StartsAt, EndsAt)
	Active      bool       `gorm:"not null;default:true" json:"active"`
	SeasonID    *string    `gorm:"type:uuid;index" json:"season_id,omitempty"`

	Timestamps
}

// AssignmentState is the per-member mission lifecycle.
type AssignmentState string

const (
	AssignmentPending   AssignmentState = "pending"
	AssignmentCompleted AssignmentState = "completed"
)

// MissionAssignment tracks one member's progress on one mission.
// Unique per (mission, member); duplicate assignment attempts are no-ops.
type MissionAssignment struct {
	ID          string          `gorm:"primaryKey;type:uuid" json:"id"`
	MissionID   string          `gorm:"type:uuid;not null;uniqueIndex:idx_mission_member" json:"mission_id"`
	MemberID    string          `gorm:"type:uuid;not null;uniqueIndex:idx_mission_member" json:"member_id"`
	State       AssignmentState `gorm:"type:varchar(16);not null;default:'pending'" json:"state"`
	Attempts    int             `gorm:"not null;default:0" json:"attempts"`
	AssignedAt  time.Time       `gorm:"autoCreateTime" json:"assigned_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// UnitMission links a mission to a unit. Its presence makes the mission
// unit-scoped: one leader validation rewards the whole roster.
type UnitMission struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	MissionID  string    `gorm:"type:uuid;not null;uniqueIndex:idx_mission_unit" json:"mission_id"`
	UnitID     string    `gorm:"type:uuid;not null;uniqueIndex:idx_mission_unit" json:"unit_id"`
	AssignedAt time.Time `gorm:"autoCreateTime" json:"assigned_at"`
}
