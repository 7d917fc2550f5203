package services

import (
	"fmt"
	"log"
	"time"

	"clubquest/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// closeBatchSize bounds how many members one season-close batch touches, so a
// mid-run failure only needs the remaining batches replayed, not the cohort.
const closeBatchSize = 200

// SeasonService owns the season lifecycle, including the one-way close that
// snapshots rankings and zeroes live balances.
type SeasonService struct {
	DB    *gorm.DB
	Audit *AuditService
}

func NewSeasonService(db *gorm.DB, audit *AuditService) *SeasonService {
	return &SeasonService{DB: db, Audit: audit}
}

// CreateSeason opens a new scoring cycle.
func (s *SeasonService) CreateSeason(actorID, name string, startsAt, endsAt *time.Time) (*models.Season, error) {
	if name == "" {
		return nil, fmt.Errorf("season name is required: %w", ErrInvalidInput)
	}

	season := models.Season{
		ID:       uuid.NewString(),
		Name:     name,
		StartsAt: startsAt,
		EndsAt:   endsAt,
	}
	if err := s.DB.Create(&season).Error; err != nil {
		return nil, err
	}

	s.Audit.Record(actorID, fmt.Sprintf("Created season %s", name), "CREATE", "Season", season.ID, nil)
	return &season, nil
}

// AddSeasonPoints upserts a member's season point counter, incrementing on
// conflict. Admin-only; used for manual adjustments during a season. A closed
// season's snapshot is frozen: grants after close fail with ErrConflict.
func (s *SeasonService) AddSeasonPoints(actorID, seasonID, memberID string, points int64) error {
	if seasonID == "" || memberID == "" {
		return fmt.Errorf("season and member ids are required: %w", ErrInvalidInput)
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var season models.Season
		if err := lockForUpdate(tx).Where("id = ?", seasonID).First(&season).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("season %s: %w", seasonID, ErrNotFound)
			}
			return err
		}
		if season.ClosedAt != nil {
			return fmt.Errorf("season %s is closed: %w", seasonID, ErrConflict)
		}

		row := models.SeasonRanking{
			ID:       uuid.NewString(),
			SeasonID: seasonID,
			MemberID: memberID,
			Points:   points,
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "season_id"}, {Name: "member_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"points": gorm.Expr("season_rankings.points + ?", points),
			}),
		}).Create(&row).Error
	})
	if err != nil {
		return err
	}

	s.Audit.Record(actorID,
		fmt.Sprintf("Granted %d season points to member %s", points, memberID),
		"UPDATE", "SeasonRanking", seasonID, nil)
	return nil
}

// CreateReward attaches a custom reward to a season.
func (s *SeasonService) CreateReward(actorID, seasonID, description, kind string, value int64) (*models.SeasonReward, error) {
	if seasonID == "" || description == "" {
		return nil, fmt.Errorf("season id and description are required: %w", ErrInvalidInput)
	}

	reward := models.SeasonReward{
		ID:          uuid.NewString(),
		SeasonID:    seasonID,
		Description: description,
		Kind:        kind,
		Value:       value,
	}
	if err := s.DB.Create(&reward).Error; err != nil {
		return nil, err
	}

	s.Audit.Record(actorID, fmt.Sprintf("Created reward for season %s", seasonID), "CREATE", "SeasonReward", reward.ID, nil)
	return &reward, nil
}

// CloseSeason is the terminal season operation: snapshot every non-admin
// member's XP into the season ranking, emit coin prizes for the top three,
// then reset XP, coins and gems to zero for the whole cohort.
//
// Closing a fully processed season again fails with ErrConflict. Phasing:
// the close marker, the top-3 computation and the reward rows commit first in
// one transaction (so a reward failure can never leave balances reset); the
// snapshot+reset then runs over the cohort in bounded batches, each batch
// atomic on its own. If a batch fails mid-run, the marker is already set but
// part of the cohort has no snapshot row yet; calling CloseSeason again
// finishes exactly those members without re-marking or re-emitting prizes.
// We accept batch-level rather than cohort-wide locking; validations that
// race a close land in whichever side of the batch boundary they hit and are
// visible in the audit trail.
func (s *SeasonService) CloseSeason(actorID, seasonID string) error {
	var rewards []models.SeasonReward
	resuming := false

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var season models.Season
		if err := lockForUpdate(tx).Where("id = ?", seasonID).First(&season).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("season %s: %w", seasonID, ErrNotFound)
			}
			return err
		}
		if season.ClosedAt != nil {
			var stranded int64
			if err := tx.Model(&models.Member{}).
				Where("active = ? AND role <> ?", true, models.RoleAdministrator).
				Where("id NOT IN (?)", tx.Model(&models.SeasonRanking{}).
					Select("member_id").Where("season_id = ?", seasonID)).
				Count(&stranded).Error; err != nil {
				return err
			}
			if stranded == 0 {
				return fmt.Errorf("season %s already closed: %w", seasonID, ErrConflict)
			}
			resuming = true
			return nil
		}

		now := time.Now()
		if err := tx.Model(&season).Update("closed_at", now).Error; err != nil {
			return err
		}

		// Top 3 by live XP, before anything is reset.
		var top []models.Member
		if err := tx.Where("active = ? AND role <> ?", true, models.RoleAdministrator).
			Order("xp DESC").Limit(3).Find(&top).Error; err != nil {
			return err
		}

		for i, m := range top {
			position := i + 1
			rewards = append(rewards, models.SeasonReward{
				ID:          uuid.NewString(),
				SeasonID:    seasonID,
				MemberID:    m.ID,
				Description: fmt.Sprintf("Prize for position %d", position),
				Kind:        "coins",
				Value:       int64(4-position) * 100,
				Position:    position,
			})
		}
		if len(rewards) > 0 {
			if err := tx.Create(&rewards).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Snapshot + reset in bounded batches, walking the cohort by id cursor.
	// Each batch is atomic; the two phases for any given member always land
	// together.
	lastID := ""
	for {
		q := s.DB.Select("id", "xp").
			Where("active = ? AND role <> ?", true, models.RoleAdministrator).
			Where("id > ?", lastID).
			Order("id").Limit(closeBatchSize)
		if resuming {
			// Only the members a failed earlier run never snapshotted.
			q = q.Where("id NOT IN (?)", s.DB.Model(&models.SeasonRanking{}).
				Select("member_id").Where("season_id = ?", seasonID))
		}
		var batch []models.Member
		if err := q.Find(&batch).Error; err != nil {
			return err
		}
		if len(batch) == 0 {
			break
		}
		lastID = batch[len(batch)-1].ID

		err := s.DB.Transaction(func(tx *gorm.DB) error {
			rows := make([]models.SeasonRanking, 0, len(batch))
			ids := make([]string, 0, len(batch))
			for _, m := range batch {
				rows = append(rows, models.SeasonRanking{
					ID:       uuid.NewString(),
					SeasonID: seasonID,
					MemberID: m.ID,
					Points:   m.XP,
				})
				ids = append(ids, m.ID)
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "season_id"}, {Name: "member_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"points": gorm.Expr("excluded.points"),
				}),
			}).Create(&rows).Error; err != nil {
				return err
			}

			return tx.Model(&models.Member{}).Where("id IN ?", ids).
				Updates(map[string]interface{}{
					"xp":    0,
					"coins": 0,
					"gems":  0,
					"level": 1,
				}).Error
		})
		if err != nil {
			return err
		}
	}

	s.Audit.Record(actorID, fmt.Sprintf("Closed season %s", seasonID), "UPDATE", "Season", seasonID,
		map[string]interface{}{"rewards": len(rewards), "resumed": resuming})

	log.Printf("🏁 [SEASON] closed season=%s rewards=%d resumed=%t", seasonID, len(rewards), resuming)
	return nil
}

// SeasonStanding is one member's line inside a season listing.
type SeasonStanding struct {
	MemberID   string `json:"member_id"`
	MemberName string `json:"member_name"`
	Points     int64  `json:"points"`
	Position   int    `json:"position"`
}

// SeasonSummary is a season with its ranking rows.
type SeasonSummary struct {
	models.Season
	Standings []SeasonStanding `json:"standings"`
}

// ListSeasons returns all seasons, newest first, each with its standings
// ordered by points.
func (s *SeasonService) ListSeasons() ([]SeasonSummary, error) {
	var seasons []models.Season
	if err := s.DB.Order("created_at DESC").Find(&seasons).Error; err != nil {
		return nil, err
	}

	summaries := make([]SeasonSummary, 0, len(seasons))
	for _, season := range seasons {
		var standings []SeasonStanding
		if err := s.DB.Model(&models.SeasonRanking{}).
			Select("season_rankings.member_id, members.name AS member_name, season_rankings.points, season_rankings.position").
			Joins("JOIN members ON members.id = season_rankings.member_id").
			Where("season_rankings.season_id = ?", season.ID).
			Order("season_rankings.points DESC").
			Scan(&standings).Error; err != nil {
			return nil, err
		}
		summaries = append(summaries, SeasonSummary{Season: season, Standings: standings})
	}
	return summaries, nil
}

// ListRewards returns a season's reward records ordered by position.
func (s *SeasonService) ListRewards(seasonID string) ([]models.SeasonReward, error) {
	var rewards []models.SeasonReward
	if err := s.DB.Where("season_id = ?", seasonID).Order("position ASC, created_at ASC").
		Find(&rewards).Error; err != nil {
		return nil, err
	}
	return rewards, nil
}
