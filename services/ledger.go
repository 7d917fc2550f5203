package services

import (
	"fmt"
	"log"

	"clubquest/models"

	"gorm.io/gorm"
)

// BaseLevelThreshold is the XP needed to go from level 1 to level 2. Each
// later level costs 20% more, rounded down: 1000, 1200, 1440, 1728, ...
const BaseLevelThreshold = 1000

// LevelForXP returns the display level for a lifetime XP total: the number of
// fully consumed thresholds plus one. Level is always recomputed from XP and
// never incremented in place.
func LevelForXP(xp int64) int {
	level, _, _ := LevelProgress(xp)
	return level
}

// LevelProgress returns the level, XP already spent inside the current level,
// and the threshold for the next level-up.
// e.g. LevelProgress(2500) = (3, 300, 1440): 1000 and 1200 consumed, 300
// toward the next 1440.
func LevelProgress(xp int64) (level int, within int64, next int64) {
	level = 1
	next = BaseLevelThreshold
	for xp >= next {
		xp -= next
		level++
		next = next * 12 / 10
	}
	return level, xp, next
}

// ResourceLedger owns every mutation of a member's XP, coins and gems. All
// writes go through a caller-supplied transaction so they commit or roll back
// together with assignment and validation changes.
type ResourceLedger struct {
	DB *gorm.DB
}

func NewResourceLedger(db *gorm.DB) *ResourceLedger {
	return &ResourceLedger{DB: db}
}

// Credit atomically adds a reward triple to one member and re-derives their
// level from the new lifetime XP. Returns the updated member.
func (l *ResourceLedger) Credit(tx *gorm.DB, memberID string, xp, coins, gems int64) (*models.Member, error) {
	var member models.Member
	if err := lockForUpdate(tx).Where("id = ?", memberID).First(&member).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("credit member %s: %w", memberID, ErrNotFound)
		}
		return nil, err
	}

	member.XP += xp
	member.Coins += coins
	member.Gems += gems
	member.Level = LevelForXP(member.XP)

	if err := tx.Model(&models.Member{}).Where("id = ?", member.ID).
		Updates(map[string]interface{}{
			"xp":    member.XP,
			"coins": member.Coins,
			"gems":  member.Gems,
			"level": member.Level,
		}).Error; err != nil {
		return nil, err
	}

	return &member, nil
}

// CreditAll applies one reward triple to a whole member set with a single
// set-oriented UPDATE, then fixes up levels for members whose new XP crossed
// a threshold. Used by unit-mission fan-out.
func (l *ResourceLedger) CreditAll(tx *gorm.DB, memberIDs []string, xp, coins, gems int64) error {
	if len(memberIDs) == 0 {
		return nil
	}

	if err := tx.Model(&models.Member{}).Where("id IN ?", memberIDs).
		Updates(map[string]interface{}{
			"xp":    gorm.Expr("xp + ?", xp),
			"coins": gorm.Expr("coins + ?", coins),
			"gems":  gorm.Expr("gems + ?", gems),
		}).Error; err != nil {
		return err
	}

	// Re-derive levels from the new totals.
	var members []models.Member
	if err := tx.Select("id", "xp", "level").Where("id IN ?", memberIDs).Find(&members).Error; err != nil {
		return err
	}
	for _, m := range members {
		if newLevel := LevelForXP(m.XP); newLevel != m.Level {
			if err := tx.Model(&models.Member{}).Where("id = ?", m.ID).
				Update("level", newLevel).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// Debit atomically removes coins and gems from a member. It fails with
// ErrInsufficientFunds if either balance would go negative and applies
// nothing in that case.
func (l *ResourceLedger) Debit(tx *gorm.DB, memberID string, coins, gems int64) (*models.Member, error) {
	if coins < 0 || gems < 0 {
		return nil, fmt.Errorf("debit amounts must be non-negative: %w", ErrInvalidInput)
	}

	var member models.Member
	if err := lockForUpdate(tx).Where("id = ?", memberID).First(&member).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("debit member %s: %w", memberID, ErrNotFound)
		}
		return nil, err
	}

	if member.Coins < coins || member.Gems < gems {
		log.Printf("❌ [LEDGER] Debit rejected for %s: have %d/%d, need %d/%d",
			memberID, member.Coins, member.Gems, coins, gems)
		return nil, ErrInsufficientFunds
	}

	member.Coins -= coins
	member.Gems -= gems

	if err := tx.Model(&models.Member{}).Where("id = ?", member.ID).
		Updates(map[string]interface{}{
			"coins": member.Coins,
			"gems":  member.Gems,
		}).Error; err != nil {
		return nil, err
	}

	return &member, nil
}
