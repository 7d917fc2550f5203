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

// AchievementService owns the achievement catalogue and manual grants.
// Achievements are awarded by administrators rather than earned through
// mission validation, so a grant carries no resource side effects.
type AchievementService struct {
	DB    *gorm.DB
	Audit *AuditService
}

func NewAchievementService(db *gorm.DB, audit *AuditService) *AchievementService {
	return &AchievementService{DB: db, Audit: audit}
}

// AchievementInput carries user-supplied achievement fields.
type AchievementInput struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IconURL     string `json:"icon_url"`
	Rarity      string `json:"rarity"`
}

func (in *AchievementInput) validate() error {
	if in.Code == "" || in.Name == "" {
		return fmt.Errorf("achievement code and name are required: %w", ErrInvalidInput)
	}
	return nil
}

// CreateAchievement adds an achievement to the catalogue. Codes are unique.
func (s *AchievementService) CreateAchievement(actorID string, in AchievementInput) (*models.Achievement, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.Rarity == "" {
		in.Rarity = "common"
	}

	ach := models.Achievement{
		ID:          uuid.NewString(),
		Code:        in.Code,
		Name:        in.Name,
		Description: in.Description,
		IconURL:     in.IconURL,
		Rarity:      in.Rarity,
	}
	if err := s.DB.Create(&ach).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("achievement code %s already exists: %w", in.Code, ErrConflict)
		}
		return nil, err
	}

	s.Audit.Record(actorID, fmt.Sprintf("Created achievement %s", ach.Name), "CREATE", "Achievement", ach.ID,
		map[string]interface{}{"code": ach.Code, "rarity": ach.Rarity})
	return &ach, nil
}

// ListAchievements returns the catalogue ordered by name.
func (s *AchievementService) ListAchievements() ([]models.Achievement, error) {
	var achs []models.Achievement
	if err := s.DB.Order("name ASC").Find(&achs).Error; err != nil {
		return nil, err
	}
	return achs, nil
}

// Grant awards an achievement to a member. Granting one the member already
// holds is a no-op and reports success.
func (s *AchievementService) Grant(actorID, achievementID, memberID string) error {
	var ach models.Achievement
	if err := s.DB.Where("id = ?", achievementID).First(&ach).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("achievement %s: %w", achievementID, ErrNotFound)
		}
		return err
	}
	var member models.Member
	if err := s.DB.Where("id = ? AND active = ?", memberID, true).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("member %s: %w", memberID, ErrNotFound)
		}
		return err
	}

	grant := models.MemberAchievement{
		ID:            uuid.NewString(),
		AchievementID: ach.ID,
		MemberID:      member.ID,
		GrantedBy:     actorID,
	}
	res := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "achievement_id"}, {Name: "member_id"}},
		DoNothing: true,
	}).Create(&grant)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}

	s.Audit.Record(actorID, fmt.Sprintf("Granted achievement %s to member %s", ach.Name, member.Name),
		"CREATE", "MemberAchievement", grant.ID,
		map[string]interface{}{"achievement_id": ach.ID, "member_id": member.ID})
	log.Printf("🏅 [ACHIEVEMENT] member=%s achievement=%s granted_by=%s", member.ID, ach.Code, actorID)
	return nil
}

// MemberAchievementRow joins a grant with its achievement for listings.
type MemberAchievementRow struct {
	models.Achievement
	AwardedAt time.Time `json:"awarded_at"`
}

// ListMemberAchievements lists the achievements a member holds, newest first.
func (s *AchievementService) ListMemberAchievements(memberID string) ([]MemberAchievementRow, error) {
	var rows []MemberAchievementRow
	err := s.DB.Model(&models.MemberAchievement{}).
		Select("achievements.*, member_achievements.awarded_at").
		Joins("JOIN achievements ON achievements.id = member_achievements.achievement_id").
		Where("member_achievements.member_id = ?", memberID).
		Order("member_achievements.awarded_at DESC").
		Scan(&rows).Error
	return rows, err
}
