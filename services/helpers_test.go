package services

import (
	"testing"

	"clubquest/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory sqlite database with the full schema.
// A single connection keeps every query on the same memory instance.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Member{},
		&models.Unit{},
		&models.UnitMember{},
		&models.Mission{},
		&models.MissionAssignment{},
		&models.UnitMission{},
		&models.ValidationRecord{},
		&models.RankingEntry{},
		&models.Season{},
		&models.SeasonRanking{},
		&models.SeasonReward{},
		&models.ShopItem{},
		&models.Purchase{},
		&models.Achievement{},
		&models.MemberAchievement{},
		&models.Rank{},
		&models.AuditLog{},
	))
	return db
}

func seedMember(t *testing.T, db *gorm.DB, name string, role models.MemberRole, xp, coins, gems int64) *models.Member {
	t.Helper()

	member := models.Member{
		ID:     uuid.NewString(),
		Name:   name,
		Email:  name + "@club.test",
		Role:   role,
		XP:     xp,
		Level:  LevelForXP(xp),
		Coins:  coins,
		Gems:   gems,
		Active: true,
	}
	require.NoError(t, db.Create(&member).Error)
	return &member
}

func seedUnit(t *testing.T, db *gorm.DB, name, leaderID string, memberIDs ...string) *models.Unit {
	t.Helper()

	unit := models.Unit{
		ID:       uuid.NewString(),
		Name:     name,
		Capacity: 10,
		LeaderID: leaderID,
		Active:   true,
	}
	require.NoError(t, db.Create(&unit).Error)
	for _, memberID := range memberIDs {
		require.NoError(t, db.Create(&models.UnitMember{
			ID:       uuid.NewString(),
			UnitID:   unit.ID,
			MemberID: memberID,
		}).Error)
	}
	return &unit
}

func seedMission(t *testing.T, db *gorm.DB, name string, xp, coins, gems int64) *models.Mission {
	t.Helper()

	mission := models.Mission{
		ID:          uuid.NewString(),
		Name:        name,
		XP:          xp,
		Coins:       coins,
		Gems:        gems,
		MaxAttempts: 1,
		Active:      true,
	}
	require.NoError(t, db.Create(&mission).Error)
	return &mission
}

func reloadMember(t *testing.T, db *gorm.DB, id string) *models.Member {
	t.Helper()

	var member models.Member
	require.NoError(t, db.Where("id = ?", id).First(&member).Error)
	return &member
}
