package models

import "time"

// AuditLog is a best-effort trail of who did what. Writes happen outside the
// business transaction; a failed audit write never rolls anything back.
type AuditLog struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	ActorID    *string   `gorm:"type:uuid;index" json:"actor_id,omitempty"`
	Action     string    `gorm:"type:text;not null" json:"action"`
	ActionType string    `gorm:"type:varchar(16);not null;default:'GENERAL'" json:"action_type"` // CREATE, UPDATE, DELETE, ...
	EntityKind string    `gorm:"type:varchar(64)" json:"entity_kind,omitempty"`
	EntityID   string    `gorm:"type:varchar(64);index" json:"entity_id,omitempty"`
	Details    string    `gorm:"type:jsonb" json:"details,omitempty"` // free-form JSON payload
	IP         string    `gorm:"type:varchar(64)" json:"ip,omitempty"`
	Device     string    `gorm:"type:text" json:"device,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
