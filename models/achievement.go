package models

import "time"

// Achievement is a named accolade defined by administrators and granted
// outside the mission reward loop (camp milestones, service projects, ...).
type Achievement struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Code        string `gorm:"uniqueIndex;not null" json:"code"`
	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	IconURL     string `gorm:"type:text" json:"icon_url,omitempty"`
	Rarity      string `gorm:"type:varchar(16);default:'common'" json:"rarity"`

	Timestamps
}

// MemberAchievement is an awarded instance. Unique per (achievement, member);
// granting the same achievement twice is a no-op.
type MemberAchievement struct {
	ID            string    `gorm:"primaryKey;type:uuid" json:"id"`
	AchievementID string    `gorm:"type:uuid;not null;uniqueIndex:idx_achievement_member" json:"achievement_id"`
	MemberID      string    `gorm:"type:uuid;not null;uniqueIndex:idx_achievement_member" json:"member_id"`
	GrantedBy     string    `gorm:"type:uuid" json:"granted_by,omitempty"`
	AwardedAt     time.Time `gorm:"autoCreateTime" json:"awarded_at"`
}

// Rank is a named tier of the level ladder. Level is the minimum display
// level for the tier; admins may define their own ladder, otherwise a
// built-in one applies.
type Rank struct {
	ID    string `gorm:"primaryKey;type:uuid" json:"id"`
	Name  string `gorm:"not null" json:"name"`
	Level int    `gorm:"not null;uniqueIndex" json:"level"`
	MinXP int64  `gorm:"not null;default:0" json:"min_xp"`

	Timestamps
}
