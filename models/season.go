package models

import "time"

// Season is a scoring cycle. Closing is terminal and one-way: rankings are
// snapshotted and every member's live balances reset to zero.
type Season struct {
	ID       string     `gorm:"primaryKey;type:uuid" json:"id"`
	Name     string     `gorm:"not null" json:"name"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
	ClosedAt *time.Time `gorm:"index" json:"closed_at,omitempty"`

	Timestamps
}

// SeasonRanking snapshots one member's points for a season. Live XP is
// written here when the season closes; admins may also upsert points during
// the season.
type SeasonRanking struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	SeasonID string `gorm:"type:uuid;not null;uniqueIndex:idx_season_member" json:"season_id"`
	MemberID string `gorm:"type:uuid;not null;uniqueIndex:idx_season_member" json:"member_id"`
	Points   int64  `gorm:"not null;default:0" json:"points"`
	Position int    `json:"position"`

	Timestamps
}

// SeasonReward is a prize emitted for a season, e.g. the coin prizes for the
// top three members at close.
type SeasonReward struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	SeasonID    string `gorm:"type:uuid;not null;index" json:"season_id"`
	MemberID    string `gorm:"type:uuid;index" json:"member_id,omitempty"`
	Description string `gorm:"type:text;not null" json:"description"`
	Kind        string `gorm:"type:varchar(32)" json:"kind"`
	Value       int64  `gorm:"not null;default:0" json:"value"`
	Position    int    `json:"position"`

	Timestamps
}
