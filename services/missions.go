package services

import (
	"fmt"
	"time"

	"clubquest/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MissionService owns mission CRUD and the assignment store. Completing an
// assignment is reserved for the validation engine; nothing here transitions
// a pending row to completed.
type MissionService struct {
	DB    *gorm.DB
	Audit *AuditService
}

func NewMissionService(db *gorm.DB, audit *AuditService) *MissionService {
	return &MissionService{DB: db, Audit: audit}
}

// MissionInput carries the user-supplied mission fields plus the initial
// assignee lists. Unit fan-out is captured once here; later roster changes
// only reach the mission through explicit reassignment.
type MissionInput struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	Difficulty  string     `json:"difficulty"`
	XP          int64      `json:"xp"`
	Coins       int64      `json:"coins"`
	Gems        int64      `json:"gems"`
	MaxAttempts int        `json:"max_attempts"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	SeasonID    *string    `json:"season_id"`
	MemberIDs   []string   `json:"member_ids"`
	UnitIDs     []string   `json:"unit_ids"`
}

func (in *MissionInput) validate() error {
	if in.Name == "" {
		return fmt.Errorf("mission name is required: %w", ErrInvalidInput)
	}
	if in.XP < 0 || in.Coins < 0 || in.Gems < 0 {
		return fmt.Errorf("reward values must be non-negative: %w", ErrInvalidInput)
	}
	return nil
}

// CreateMission creates the mission and fans out the initial assignments in
// one transaction.
func (s *MissionService) CreateMission(actorID string, in MissionInput) (*models.Mission, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	mission := models.Mission{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Slug:        slug.Make(in.Name),
		Description: in.Description,
		Type:        in.Type,
		Difficulty:  in.Difficulty,
		XP:          in.XP,
		Coins:       in.Coins,
		Gems:        in.Gems,
		MaxAttempts: in.MaxAttempts,
		SeasonID:    in.SeasonID,
		Active:      true,
	}
	if mission.Difficulty == "" {
		mission.Difficulty = "normal"
	}
	if mission.MaxAttempts <= 0 {
		mission.MaxAttempts = 1
	}
	if in.StartsAt != nil {
		mission.StartsAt = *in.StartsAt
	} else {
		mission.StartsAt = time.Now()
	}
	mission.EndsAt = in.EndsAt

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&mission).Error; err != nil {
			return err
		}
		if err := s.assignMembers(tx, mission.ID, in.MemberIDs); err != nil {
			return err
		}
		for _, unitID := range in.UnitIDs {
			if err := s.assignUnit(tx, mission.ID, unitID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Audit.Record(actorID, fmt.Sprintf("Created mission %s", mission.Name), "CREATE", "Mission", mission.ID,
		map[string]interface{}{"xp": in.XP, "coins": in.Coins, "gems": in.Gems, "members": in.MemberIDs, "units": in.UnitIDs})
	return &mission, nil
}

// UpdateMission edits mission fields and replaces its unit links. Existing
// member assignments are left alone; reconciliation with roster changes only
// happens via explicit reassignment.
func (s *MissionService) UpdateMission(actorID, missionID string, in MissionInput) (*models.Mission, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var mission models.Mission
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", missionID).First(&mission).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("mission %s: %w", missionID, ErrNotFound)
			}
			return err
		}

		mission.Name = in.Name
		mission.Slug = slug.Make(in.Name)
		mission.Description = in.Description
		mission.Type = in.Type
		if in.Difficulty != "" {
			mission.Difficulty = in.Difficulty
		}
		mission.XP = in.XP
		mission.Coins = in.Coins
		mission.Gems = in.Gems
		if in.MaxAttempts > 0 {
			mission.MaxAttempts = in.MaxAttempts
		}
		if in.StartsAt != nil {
			mission.StartsAt = *in.StartsAt
		}
		mission.EndsAt = in.EndsAt
		mission.SeasonID = in.SeasonID

		if err := tx.Save(&mission).Error; err != nil {
			return err
		}

		if in.UnitIDs != nil {
			if err := tx.Where("mission_id = ?", missionID).Delete(&models.UnitMission{}).Error; err != nil {
				return err
			}
			for _, unitID := range in.UnitIDs {
				if err := s.assignUnit(tx, missionID, unitID); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Audit.Record(actorID, fmt.Sprintf("Updated mission %s", mission.Name), "UPDATE", "Mission", mission.ID, nil)
	return &mission, nil
}

// DeleteMission removes the mission and everything hanging off it.
func (s *MissionService) DeleteMission(actorID, missionID string) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var mission models.Mission
		if err := tx.Where("id = ?", missionID).First(&mission).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("mission %s: %w", missionID, ErrNotFound)
			}
			return err
		}
		if err := tx.Where("mission_id = ?", missionID).Delete(&models.MissionAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("mission_id = ?", missionID).Delete(&models.ValidationRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("mission_id = ?", missionID).Delete(&models.UnitMission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&mission).Error
	})
	if err != nil {
		return err
	}

	s.Audit.Record(actorID, fmt.Sprintf("Deleted mission %s", missionID), "DELETE", "Mission", missionID, nil)
	return nil
}

// Assign creates a pending assignment for one member. Duplicate assignment
// attempts are no-ops; administrators cannot receive missions.
func (s *MissionService) Assign(actorID, missionID, memberID string) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := missionExists(tx, missionID); err != nil {
			return err
		}
		return s.assignMembers(tx, missionID, []string{memberID})
	})
	if err != nil {
		return err
	}

	s.Audit.Record(actorID, fmt.Sprintf("Assigned mission %s to member %s", missionID, memberID),
		"UPDATE", "MissionAssignment", missionID, nil)
	return nil
}

// AssignUnit marks the mission unit-scoped and assigns every current active
// roster member.
func (s *MissionService) AssignUnit(actorID, missionID, unitID string) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := missionExists(tx, missionID); err != nil {
			return err
		}
		return s.assignUnit(tx, missionID, unitID)
	})
	if err != nil {
		return err
	}

	s.Audit.Record(actorID, fmt.Sprintf("Assigned mission %s to unit %s", missionID, unitID),
		"UPDATE", "UnitMission", missionID, nil)
	return nil
}

func missionExists(tx *gorm.DB, missionID string) error {
	var count int64
	if err := tx.Model(&models.Mission{}).Where("id = ?", missionID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("mission %s: %w", missionID, ErrNotFound)
	}
	return nil
}

// assignMembers inserts pending assignments for the given members, skipping
// administrators and inactive members. Conflicts with existing rows are
// ignored.
func (s *MissionService) assignMembers(tx *gorm.DB, missionID string, memberIDs []string) error {
	if len(memberIDs) == 0 {
		return nil
	}

	var eligible []string
	if err := tx.Model(&models.Member{}).
		Where("id IN ? AND active = ? AND role <> ?", memberIDs, true, models.RoleAdministrator).
		Pluck("id", &eligible).Error; err != nil {
		return err
	}
	if len(eligible) < len(memberIDs) {
		// Unknown, inactive or administrator IDs in the request.
		if len(eligible) == 0 {
			return fmt.Errorf("no assignable members in request: %w", ErrInvalidInput)
		}
	}

	assignments := make([]models.MissionAssignment, 0, len(eligible))
	for _, memberID := range eligible {
		assignments = append(assignments, models.MissionAssignment{
			ID:        uuid.NewString(),
			MissionID: missionID,
			MemberID:  memberID,
			State:     models.AssignmentPending,
		})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&assignments).Error
}

func (s *MissionService) assignUnit(tx *gorm.DB, missionID, unitID string) error {
	var unit models.Unit
	if err := tx.Where("id = ?", unitID).First(&unit).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("unit %s: %w", unitID, ErrNotFound)
		}
		return err
	}

	link := models.UnitMission{ID: uuid.NewString(), MissionID: missionID, UnitID: unitID}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
		return err
	}

	roster, err := activeRosterIDs(tx, unitID)
	if err != nil {
		return err
	}
	if len(roster) == 0 {
		return nil
	}

	assignments := make([]models.MissionAssignment, 0, len(roster))
	for _, memberID := range roster {
		assignments = append(assignments, models.MissionAssignment{
			ID:        uuid.NewString(),
			MissionID: missionID,
			MemberID:  memberID,
			State:     models.AssignmentPending,
		})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&assignments).Error
}

// activeRosterIDs returns the unit's current active non-administrator
// members. The roster is always re-derived at call time.
func activeRosterIDs(tx *gorm.DB, unitID string) ([]string, error) {
	var ids []string
	err := tx.Model(&models.UnitMember{}).
		Joins("JOIN members ON members.id = unit_members.member_id").
		Where("unit_members.unit_id = ? AND members.active = ? AND members.role <> ?",
			unitID, true, models.RoleAdministrator).
		Pluck("unit_members.member_id", &ids).Error
	return ids, err
}

// MemberMission is a member-facing view of one assignment joined with its
// mission.
type MemberMission struct {
	MissionID   string                 `json:"mission_id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Type        string                 `json:"type"`
	Difficulty  string                 `json:"difficulty"`
	XP          int64                  `json:"xp"`
	Coins       int64                  `json:"coins"`
	Gems        int64                  `json:"gems"`
	State       models.AssignmentState `json:"state"`
	Attempts    int                    `json:"attempts"`
	AssignedAt  time.Time              `json:"assigned_at"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	UnitScoped  bool                   `json:"unit_scoped"`
}

// ListMemberMissions returns everything currently assigned to a member.
func (s *MissionService) ListMemberMissions(memberID string) ([]MemberMission, error) {
	var rows []MemberMission
	err := s.DB.Model(&models.MissionAssignment{}).
		Select(`missions.id AS mission_id, missions.name, missions.description, missions.type,
			missions.difficulty, missions.xp, missions.coins, missions.gems,
			mission_assignments.state, mission_assignments.attempts,
			mission_assignments.assigned_at, mission_assignments.completed_at,
			EXISTS(SELECT 1 FROM unit_missions WHERE unit_missions.mission_id = missions.id) AS unit_scoped`).
		Joins("JOIN missions ON missions.id = mission_assignments.mission_id").
		Where("mission_assignments.member_id = ?", memberID).
		Order("mission_assignments.assigned_at ASC").
		Scan(&rows).Error
	return rows, err
}

// ListMissions returns missions with optional type/season filters.
func (s *MissionService) ListMissions(missionType, seasonID string) ([]models.Mission, error) {
	q := s.DB.Order("starts_at DESC")
	if missionType != "" {
		q = q.Where("type = ?", missionType)
	}
	if seasonID != "" {
		q = q.Where("season_id = ?", seasonID)
	}
	var missions []models.Mission
	if err := q.Find(&missions).Error; err != nil {
		return nil, err
	}
	return missions, nil
}

// GetMission fetches one mission by id.
func (s *MissionService) GetMission(missionID string) (*models.Mission, error) {
	var mission models.Mission
	if err := s.DB.Where("id = ?", missionID).First(&mission).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("mission %s: %w", missionID, ErrNotFound)
		}
		return nil, err
	}
	return &mission, nil
}
