package services

import (
	"errors"
	"fmt"

	"clubquest/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// defaultRankLadder names the built-in level tiers, index 0 = level 1. Levels
// past the ladder keep the last name.
var defaultRankLadder = []string{
	"Novice", "Recruit", "Soldier", "Warrior", "Veteran",
	"Hero", "Champion", "Master", "Elite", "Legend",
}

// RankService owns the rank ladder. Administrators may define their own
// tiers; levels without a defined rank fall back to the built-in ladder.
type RankService struct {
	DB    *gorm.DB
	Audit *AuditService
}

func NewRankService(db *gorm.DB, audit *AuditService) *RankService {
	return &RankService{DB: db, Audit: audit}
}

// RankInput carries user-supplied rank fields.
type RankInput struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
	MinXP int64  `json:"min_xp"`
}

func (in *RankInput) validate() error {
	if in.Name == "" {
		return fmt.Errorf("rank name is required: %w", ErrInvalidInput)
	}
	if in.Level < 1 {
		return fmt.Errorf("rank level must be at least 1: %w", ErrInvalidInput)
	}
	if in.MinXP < 0 {
		return fmt.Errorf("rank min_xp must be non-negative: %w", ErrInvalidInput)
	}
	return nil
}

// CreateRank defines a rank tier. One rank per level.
func (s *RankService) CreateRank(actorID string, in RankInput) (*models.Rank, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	rank := models.Rank{
		ID:    uuid.NewString(),
		Name:  in.Name,
		Level: in.Level,
		MinXP: in.MinXP,
	}
	if err := s.DB.Create(&rank).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("rank for level %d already exists: %w", in.Level, ErrConflict)
		}
		return nil, err
	}

	s.Audit.Record(actorID, fmt.Sprintf("Created rank %s", rank.Name), "CREATE", "Rank", rank.ID,
		map[string]interface{}{"level": rank.Level, "min_xp": rank.MinXP})
	return &rank, nil
}

// ListRanks returns the defined ladder ordered by level.
func (s *RankService) ListRanks() ([]models.Rank, error) {
	var ranks []models.Rank
	if err := s.DB.Order("level ASC").Find(&ranks).Error; err != nil {
		return nil, err
	}
	return ranks, nil
}

// RankForLevel names the rank a level belongs to: the highest defined rank
// whose level does not exceed it, else the built-in ladder.
func (s *RankService) RankForLevel(level int) (string, error) {
	if level < 1 {
		level = 1
	}

	var rank models.Rank
	err := s.DB.Where("level <= ?", level).Order("level DESC").First(&rank).Error
	if err == nil {
		return rank.Name, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	if level > len(defaultRankLadder) {
		level = len(defaultRankLadder)
	}
	return defaultRankLadder[level-1], nil
}
