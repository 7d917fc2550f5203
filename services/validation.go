package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"clubquest/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ValidationService is the orchestrator for mission completion. One Validate
// call decides between the individual and unit paths, moves assignments to
// completed, credits rewards through the ledger and leaves exactly one
// validation record behind. Everything runs in a single transaction: on any
// failure no balance, assignment or record change survives.
type ValidationService struct {
	DB     *gorm.DB
	Ledger *ResourceLedger
	Audit  *AuditService
}

func NewValidationService(db *gorm.DB, ledger *ResourceLedger, audit *AuditService) *ValidationService {
	return &ValidationService{DB: db, Ledger: ledger, Audit: audit}
}

// ValidationResult reports what one Validate call did.
type ValidationResult struct {
	MissionID       string         `json:"mission_id"`
	MemberID        string         `json:"member_id"`
	UnitScoped      bool           `json:"unit_scoped"`
	RewardedMembers []string       `json:"rewarded_members"`
	Member          *models.Member `json:"member,omitempty"` // updated balances for the individual path
}

// Validate completes a mission for a member (individual path) or, when the
// mission is unit-scoped and the member is the unit leader, for the whole
// current roster (unit path). A second call for the same (mission, member)
// pair fails with ErrAlreadyValidated and changes nothing.
func (s *ValidationService) Validate(missionID, memberID, validatorID string) (*ValidationResult, error) {
	if missionID == "" || memberID == "" || validatorID == "" {
		return nil, fmt.Errorf("mission, member and validator ids are required: %w", ErrInvalidInput)
	}

	result := &ValidationResult{MissionID: missionID, MemberID: memberID}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var mission models.Mission
		if err := tx.Where("id = ?", missionID).First(&mission).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("mission %s: %w", missionID, ErrNotFound)
			}
			return err
		}

		var member models.Member
		if err := lockForUpdate(tx).Where("id = ?", memberID).First(&member).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("member %s: %w", memberID, ErrNotFound)
			}
			return err
		}

		// Idempotency guard: at most one validation per (mission, member).
		var existing int64
		if err := tx.Model(&models.ValidationRecord{}).
			Where("mission_id = ? AND member_id = ?", missionID, memberID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyValidated
		}

		var link models.UnitMission
		err := tx.Where("mission_id = ?", missionID).First(&link).Error
		switch err {
		case nil:
			result.UnitScoped = true
			return s.validateUnit(tx, &mission, &member, &link, validatorID, result)
		case gorm.ErrRecordNotFound:
			return s.validateIndividual(tx, &mission, &member, validatorID, result)
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	s.Audit.Record(validatorID,
		fmt.Sprintf("Validated mission %s for member %s", missionID, memberID),
		"UPDATE", "Mission", missionID,
		map[string]interface{}{
			"unit_scoped":      result.UnitScoped,
			"rewarded_members": result.RewardedMembers,
		})

	log.Printf("🎖️ [VALIDATION] mission=%s member=%s unit=%t rewarded=%d",
		missionID, memberID, result.UnitScoped, len(result.RewardedMembers))
	return result, nil
}

// validateIndividual requires an existing pending assignment, completes it,
// credits the single member and bumps their ranking counter by one.
func (s *ValidationService) validateIndividual(tx *gorm.DB, mission *models.Mission, member *models.Member, validatorID string, result *ValidationResult) error {
	now := time.Now()
	res := tx.Model(&models.MissionAssignment{}).
		Where("mission_id = ? AND member_id = ? AND state = ?",
			mission.ID, member.ID, models.AssignmentPending).
		Updates(map[string]interface{}{
			"state":        models.AssignmentCompleted,
			"attempts":     gorm.Expr("attempts + 1"),
			"completed_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotAssigned
	}

	updated, err := s.Ledger.Credit(tx, member.ID, mission.XP, mission.Coins, mission.Gems)
	if err != nil {
		return err
	}
	result.Member = updated
	result.RewardedMembers = []string{member.ID}

	record := models.ValidationRecord{
		ID:          uuid.NewString(),
		MissionID:   mission.ID,
		MemberID:    member.ID,
		ValidatorID: validatorID,
		Outcome:     models.ValidationApproved,
	}
	if err := createValidationRecord(tx, &record); err != nil {
		return err
	}

	return bumpMemberRanking(tx, member.ID, updated.Level)
}

// validateUnit rewards the unit's current roster from one leader action.
// The roster is re-derived at validation time, so members who joined after
// the original fan-out are rewarded and members removed before it are not.
// Exactly one validation record is written, keyed by the leader, and the
// unit's ranking counter moves by one, not one per member.
func (s *ValidationService) validateUnit(tx *gorm.DB, mission *models.Mission, member *models.Member, link *models.UnitMission, validatorID string, result *ValidationResult) error {
	var unit models.Unit
	if err := tx.Where("id = ?", link.UnitID).First(&unit).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("unit %s: %w", link.UnitID, ErrNotFound)
		}
		return err
	}

	if member.ID != unit.LeaderID {
		return fmt.Errorf("only the unit leader may validate this mission: %w", ErrForbidden)
	}

	roster, err := activeRosterIDs(tx, unit.ID)
	if err != nil {
		return err
	}
	if len(roster) == 0 {
		return fmt.Errorf("unit %s has no eligible members: %w", unit.ID, ErrInvalidInput)
	}

	if err := s.Ledger.CreditAll(tx, roster, mission.XP, mission.Coins, mission.Gems); err != nil {
		return err
	}
	result.RewardedMembers = roster

	// Upsert every roster assignment to completed; members who joined after
	// the original fan-out get a row created here.
	now := time.Now()
	assignments := make([]models.MissionAssignment, 0, len(roster))
	for _, id := range roster {
		assignments = append(assignments, models.MissionAssignment{
			ID:          uuid.NewString(),
			MissionID:   mission.ID,
			MemberID:    id,
			State:       models.AssignmentCompleted,
			Attempts:    1,
			CompletedAt: &now,
		})
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "mission_id"}, {Name: "member_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"state":        models.AssignmentCompleted,
			"attempts":     gorm.Expr("mission_assignments.attempts + 1"),
			"completed_at": now,
		}),
	}).Create(&assignments).Error; err != nil {
		return err
	}

	record := models.ValidationRecord{
		ID:          uuid.NewString(),
		MissionID:   mission.ID,
		MemberID:    member.ID,
		ValidatorID: validatorID,
		Outcome:     models.ValidationApproved,
	}
	if err := createValidationRecord(tx, &record); err != nil {
		return err
	}

	return bumpUnitRanking(tx, unit.ID)
}

// createValidationRecord inserts the idempotency record. Two validations
// racing past the count guard collide on the (mission, member) unique index;
// the loser surfaces ErrAlreadyValidated instead of a raw storage error.
func createValidationRecord(tx *gorm.DB, record *models.ValidationRecord) error {
	if err := tx.Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyValidated
		}
		return err
	}
	return nil
}

func bumpMemberRanking(tx *gorm.DB, memberID string, level int) error {
	var entry models.RankingEntry
	err := lockForUpdate(tx).Where("member_id = ?", memberID).First(&entry).Error
	switch err {
	case nil:
		return tx.Model(&entry).Updates(map[string]interface{}{
			"points": gorm.Expr("points + 1"),
			"level":  level,
		}).Error
	case gorm.ErrRecordNotFound:
		entry = models.RankingEntry{ID: uuid.NewString(), MemberID: &memberID, Points: 1, Level: level}
		return tx.Create(&entry).Error
	default:
		return err
	}
}

func bumpUnitRanking(tx *gorm.DB, unitID string) error {
	var entry models.RankingEntry
	err := lockForUpdate(tx).Where("unit_id = ?", unitID).First(&entry).Error
	switch err {
	case nil:
		return tx.Model(&entry).Update("points", gorm.Expr("points + 1")).Error
	case gorm.ErrRecordNotFound:
		entry = models.RankingEntry{ID: uuid.NewString(), UnitID: &unitID, Points: 1}
		return tx.Create(&entry).Error
	default:
		return err
	}
}
