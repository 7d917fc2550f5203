package services

import (
	"clubquest/models"

	"gorm.io/gorm"
)

// RankingService is the read side of progression: it derives standings from
// member balances and completed assignments on demand. Queries here never
// lock rows; a slightly stale snapshot is acceptable.
type RankingService struct {
	DB *gorm.DB
}

func NewRankingService(db *gorm.DB) *RankingService {
	return &RankingService{DB: db}
}

// MemberRankingRow is one line of the individual ranking.
type MemberRankingRow struct {
	MemberID          string `json:"member_id"`
	Name              string `json:"name"`
	XP                int64  `json:"xp"`
	Level             int    `json:"level"`
	Coins             int64  `json:"coins"`
	Gems              int64  `json:"gems"`
	MissionsCompleted int64  `json:"missions_completed"`
}

// IndividualRanking orders active non-administrator members by XP, then
// level. Members with zero completions are included with a 0 count.
func (s *RankingService) IndividualRanking(limit int) ([]MemberRankingRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	var rows []MemberRankingRow
	err := s.DB.Model(&models.Member{}).
		Select(`members.id AS member_id, members.name, members.xp, members.level,
			members.coins, members.gems,
			COUNT(mission_assignments.id) AS missions_completed`).
		Joins(`LEFT JOIN mission_assignments ON mission_assignments.member_id = members.id
			AND mission_assignments.state = ?`, models.AssignmentCompleted).
		Where("members.active = ? AND members.role <> ?", true, models.RoleAdministrator).
		Group("members.id, members.name, members.xp, members.level, members.coins, members.gems").
		Order("members.xp DESC, members.level DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// UnitRankingRow is one line of the unit ranking.
type UnitRankingRow struct {
	UnitID            string `json:"unit_id"`
	Name              string `json:"name"`
	MissionsCompleted int64  `json:"missions_completed"`
	Points            int64  `json:"points"`
}

// UnitRanking orders active units by completed missions across their current
// active non-administrator roster. Units with nothing completed still appear
// with count 0.
func (s *RankingService) UnitRanking(limit int) ([]UnitRankingRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	var rows []UnitRankingRow
	err := s.DB.Model(&models.Unit{}).
		Select(`units.id AS unit_id, units.name,
			COUNT(mission_assignments.id) AS missions_completed,
			COALESCE(MAX(ranking_entries.points), 0) AS points`).
		Joins("LEFT JOIN unit_members ON unit_members.unit_id = units.id").
		Joins(`LEFT JOIN members ON members.id = unit_members.member_id
			AND members.active = ? AND members.role <> ?`, true, models.RoleAdministrator).
		Joins(`LEFT JOIN mission_assignments ON mission_assignments.member_id = members.id
			AND mission_assignments.state = ?`, models.AssignmentCompleted).
		Joins("LEFT JOIN ranking_entries ON ranking_entries.unit_id = units.id").
		Where("units.active = ?", true).
		Group("units.id, units.name").
		Order("missions_completed DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// MemberPoints returns the cached validation point counter for one member.
func (s *RankingService) MemberPoints(memberID string) (int64, error) {
	var entry models.RankingEntry
	err := s.DB.Where("member_id = ?", memberID).First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return entry.Points, nil
}

// UnitPoints returns the cached validation point counter for one unit.
func (s *RankingService) UnitPoints(unitID string) (int64, error) {
	var entry models.RankingEntry
	err := s.DB.Where("unit_id = ?", unitID).First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return entry.Points, nil
}
