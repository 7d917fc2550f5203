package services

import (
	"fmt"
	"strings"

	"clubquest/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// UnitService owns units and their rosters. Rosters are capacity-bounded;
// replacing a roster swaps the whole membership set like the original club
// tooling did.
type UnitService struct {
	DB    *gorm.DB
	Audit *AuditService
}

func NewUnitService(db *gorm.DB, audit *AuditService) *UnitService {
	return &UnitService{DB: db, Audit: audit}
}

// UnitInput carries user-supplied unit fields.
type UnitInput struct {
	Name      string   `json:"name"`
	Capacity  int      `json:"capacity"`
	LeaderID  string   `json:"leader_id"`
	MemberIDs []string `json:"member_ids"`
}

func (in *UnitInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("unit name is required: %w", ErrInvalidInput)
	}
	if in.Capacity <= 0 {
		return fmt.Errorf("unit capacity must be positive: %w", ErrInvalidInput)
	}
	if len(in.MemberIDs) > in.Capacity {
		return fmt.Errorf("roster exceeds capacity %d: %w", in.Capacity, ErrInvalidInput)
	}
	return nil
}

// CreateUnit creates a unit with an optional initial roster.
func (s *UnitService) CreateUnit(actorID string, in UnitInput) (*models.Unit, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	unit := models.Unit{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(in.Name),
		Slug:     slug.Make(in.Name),
		Capacity: in.Capacity,
		LeaderID: in.LeaderID,
		Active:   true,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Unit{}).Where("name = ?", unit.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("unit %q already exists: %w", unit.Name, ErrConflict)
		}
		if err := tx.Create(&unit).Error; err != nil {
			return err
		}
		return replaceRoster(tx, unit.ID, in.MemberIDs)
	})
	if err != nil {
		return nil, err
	}

	s.Audit.Record(actorID, fmt.Sprintf("Created unit %s", unit.Name), "CREATE", "Unit", unit.ID,
		map[string]interface{}{"capacity": in.Capacity, "leader_id": in.LeaderID, "members": in.MemberIDs})
	return &unit, nil
}

// UpdateUnit edits unit fields and, when MemberIDs is non-nil, replaces the
// roster.
func (s *UnitService) UpdateUnit(actorID, unitID string, in UnitInput) (*models.Unit, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var unit models.Unit
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", unitID).First(&unit).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("unit %s: %w", unitID, ErrNotFound)
			}
			return err
		}

		// When the roster is not being replaced, the new capacity still has
		// to hold the members already in the unit.
		if in.MemberIDs == nil {
			var current int64
			if err := tx.Model(&models.UnitMember{}).Where("unit_id = ?", unitID).
				Count(&current).Error; err != nil {
				return err
			}
			if current > int64(in.Capacity) {
				return fmt.Errorf("capacity %d is below the current roster of %d: %w",
					in.Capacity, current, ErrInvalidInput)
			}
		}

		unit.Name = strings.TrimSpace(in.Name)
		unit.Slug = slug.Make(in.Name)
		unit.Capacity = in.Capacity
		unit.LeaderID = in.LeaderID
		if err := tx.Save(&unit).Error; err != nil {
			return err
		}

		if in.MemberIDs != nil {
			if err := tx.Where("unit_id = ?", unitID).Delete(&models.UnitMember{}).Error; err != nil {
				return err
			}
			return replaceRoster(tx, unitID, in.MemberIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Audit.Record(actorID, fmt.Sprintf("Updated unit %s", unit.Name), "UPDATE", "Unit", unit.ID, nil)
	return &unit, nil
}

// Deactivate soft-disables a unit.
func (s *UnitService) Deactivate(actorID, unitID string) error {
	res := s.DB.Model(&models.Unit{}).Where("id = ?", unitID).Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("unit %s: %w", unitID, ErrNotFound)
	}

	s.Audit.Record(actorID, fmt.Sprintf("Deactivated unit %s", unitID), "UPDATE", "Unit", unitID, nil)
	return nil
}

func replaceRoster(tx *gorm.DB, unitID string, memberIDs []string) error {
	if len(memberIDs) == 0 {
		return nil
	}
	rows := make([]models.UnitMember, 0, len(memberIDs))
	for _, memberID := range memberIDs {
		if memberID == "" {
			continue
		}
		rows = append(rows, models.UnitMember{
			ID:       uuid.NewString(),
			UnitID:   unitID,
			MemberID: memberID,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

// UnitWithRoster is a unit joined with its member summaries.
type UnitWithRoster struct {
	models.Unit
	Members []RosterMember `json:"members"`
}

// RosterMember is the member summary shown inside a unit listing.
type RosterMember struct {
	MemberID string `json:"member_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	XP       int64  `json:"xp"`
	Level    int    `json:"level"`
}

// ListUnits returns active units with their current rosters.
func (s *UnitService) ListUnits() ([]UnitWithRoster, error) {
	var units []models.Unit
	if err := s.DB.Where("active = ?", true).Order("name ASC").Find(&units).Error; err != nil {
		return nil, err
	}

	out := make([]UnitWithRoster, 0, len(units))
	for _, unit := range units {
		var roster []RosterMember
		if err := s.DB.Model(&models.UnitMember{}).
			Select("members.id AS member_id, members.name, members.email, members.xp, members.level").
			Joins("JOIN members ON members.id = unit_members.member_id").
			Where("unit_members.unit_id = ? AND members.active = ?", unit.ID, true).
			Order("members.name ASC").
			Scan(&roster).Error; err != nil {
			return nil, err
		}
		out = append(out, UnitWithRoster{Unit: unit, Members: roster})
	}
	return out, nil
}

// GetUnit fetches one unit by id.
func (s *UnitService) GetUnit(unitID string) (*models.Unit, error) {
	var unit models.Unit
	if err := s.DB.Where("id = ?", unitID).First(&unit).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("unit %s: %w", unitID, ErrNotFound)
		}
		return nil, err
	}
	return &unit, nil
}
