package services

import (
	"fmt"
	"strings"

	"clubquest/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MemberService owns member registration and profile data. Members are never
// hard-deleted, only deactivated. Identity/session issuance lives at the
// gateway; this service only keeps the club-side record.
type MemberService struct {
	DB     *gorm.DB
	Ledger *ResourceLedger
	Audit  *AuditService
}

func NewMemberService(db *gorm.DB, ledger *ResourceLedger, audit *AuditService) *MemberService {
	return &MemberService{DB: db, Ledger: ledger, Audit: audit}
}

// Register creates a member. Email must be unique; duplicates fail with
// ErrConflict.
func (s *MemberService) Register(actorID, name, email string, role models.MemberRole) (*models.Member, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, fmt.Errorf("name and email are required: %w", ErrInvalidInput)
	}
	if role == "" {
		role = models.RoleMember
	}
	if role != models.RoleMember && role != models.RoleAdministrator {
		return nil, fmt.Errorf("unknown role %q: %w", role, ErrInvalidInput)
	}

	member := models.Member{
		ID:     uuid.NewString(),
		Name:   name,
		Email:  email,
		Role:   role,
		Level:  1,
		Active: true,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Member{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("email %s already registered: %w", email, ErrConflict)
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, err
	}

	s.Audit.Record(actorID, fmt.Sprintf("Registered member %s", email), "CREATE", "Member", member.ID,
		map[string]interface{}{"name": name, "role": role})
	return &member, nil
}

// Get fetches a member by id.
func (s *MemberService) Get(memberID string) (*models.Member, error) {
	var member models.Member
	if err := s.DB.Where("id = ?", memberID).First(&member).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("member %s: %w", memberID, ErrNotFound)
		}
		return nil, err
	}
	return &member, nil
}

// List returns active club members (non-administrators) ordered by name.
func (s *MemberService) List() ([]models.Member, error) {
	var members []models.Member
	err := s.DB.Where("active = ? AND role <> ?", true, models.RoleAdministrator).
		Order("name ASC").Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// Deactivate soft-disables a member. Their history stays.
func (s *MemberService) Deactivate(actorID, memberID string) error {
	res := s.DB.Model(&models.Member{}).Where("id = ?", memberID).Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("member %s: %w", memberID, ErrNotFound)
	}

	s.Audit.Record(actorID, fmt.Sprintf("Deactivated member %s", memberID), "UPDATE", "Member", memberID, nil)
	return nil
}

// SetAvatarURL stores the member's uploaded avatar location.
func (s *MemberService) SetAvatarURL(memberID, url string) error {
	res := s.DB.Model(&models.Member{}).Where("id = ?", memberID).Update("avatar_url", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("member %s: %w", memberID, ErrNotFound)
	}
	return nil
}

// GrantResources is the admin escape hatch for crediting XP, coins and gems
// outside a mission, e.g. corrections. It goes through the ledger so leveling
// stays consistent.
func (s *MemberService) GrantResources(actorID, memberID string, xp, coins, gems int64) (*models.Member, error) {
	if xp < 0 || coins < 0 || gems < 0 {
		return nil, fmt.Errorf("granted amounts must be non-negative: %w", ErrInvalidInput)
	}

	var before models.Member
	if err := s.DB.Where("id = ?", memberID).First(&before).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("member %s: %w", memberID, ErrNotFound)
		}
		return nil, err
	}

	var updated *models.Member
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		updated, err = s.Ledger.Credit(tx, memberID, xp, coins, gems)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Audit.Record(actorID, fmt.Sprintf("Granted resources to member %s", memberID), "UPDATE", "Member", memberID,
		map[string]interface{}{
			"previous": map[string]int64{"xp": before.XP, "coins": before.Coins, "gems": before.Gems},
			"granted":  map[string]int64{"xp": xp, "coins": coins, "gems": gems},
			"new":      map[string]int64{"xp": updated.XP, "coins": updated.Coins, "gems": updated.Gems},
		})
	return updated, nil
}
