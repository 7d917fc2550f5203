package models

import "time"

// ShopItem is something members spend coins/gems on. Stock is decremented on
// purchase and never auto-replenished.
type ShopItem struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Slug        string `gorm:"index" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	CostCoins   int64  `gorm:"not null;default:0" json:"cost_coins"`
	CostGems    int64  `gorm:"not null;default:0" json:"cost_gems"`
	Stock       int64  `gorm:"not null;default:0" json:"stock"`
	ImageURL    string `gorm:"type:text" json:"image_url,omitempty"`

	Timestamps
}

// Purchase is an immutable append-only record of a committed shop
// transaction: member, item, quantity and amounts actually charged.
type Purchase struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	MemberID   string    `gorm:"type:uuid;not null;index" json:"member_id"`
	ItemID     string    `gorm:"type:uuid;not null;index" json:"item_id"`
	Quantity   int64     `gorm:"not null" json:"quantity"`
	TotalCoins int64     `gorm:"not null;default:0" json:"total_coins"`
	TotalGems  int64     `gorm:"not null;default:0" json:"total_gems"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
