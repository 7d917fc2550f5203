package models

import (
	"time"

	"gorm.io/gorm"
)

// MemberRole separates ordinary club members from administrators.
// Administrators never receive missions or rewards.
type MemberRole string

const (
	RoleMember        MemberRole = "member"
	RoleAdministrator MemberRole = "administrator"
)

// Member is a club member with their live progression balances.
// XP is lifetime-within-season; Level is always derived from XP by the
// ledger and must never drift from it.
type Member struct {
	ID    string     `gorm:"primaryKey;type:uuid" json:"id"`
	Name  string     `gorm:"not null;index" json:"name"`
	Email string     `gorm:"uniqueIndex;not null" json:"email"`
	Role  MemberRole `gorm:"type:varchar(16);not null;default:'member'" json:"role"`

	XP    int64 `gorm:"not null;default:0" json:"xp"`
	Level int   `gorm:"not null;default:1" json:"level"`
	Coins int64 `gorm:"not null;default:0" json:"coins"`
	Gems  int64 `gorm:"not null;default:0" json:"gems"`

	AvatarURL string `gorm:"type:text" json:"avatar_url,omitempty"`
	Active    bool   `gorm:"not null;default:true" json:"active"` // soft-deactivated, never hard-deleted

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
