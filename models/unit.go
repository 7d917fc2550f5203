package models

import "time"

// Unit is a group of members with a designated leader. Units exist
// independently of missions; rosters are capacity-bounded.
type Unit struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Name     string `gorm:"uniqueIndex;not null" json:"name"`
	Slug     string `gorm:"index" json:"slug"`
	Capacity int    `gorm:"not null;default:0" json:"capacity"`
	LeaderID string `gorm:"type:uuid;index" json:"leader_id"` // the only member allowed to validate unit missions
	Active   bool   `gorm:"not null;default:true" json:"active"`

	Timestamps
}

// UnitMember is a roster row (many-to-many between units and members).
type UnitMember struct {
	ID       string    `gorm:"primaryKey;type:uuid" json:"id"`
	UnitID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_unit_member" json:"unit_id"`
	MemberID string    `gorm:"type:uuid;not null;uniqueIndex:idx_unit_member" json:"member_id"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}
