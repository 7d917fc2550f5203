package services

import (
	"testing"
	"time"

	"clubquest/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func completeAssignment(t *testing.T, db *gorm.DB, missionID, memberID string) {
	t.Helper()

	now := time.Now()
	require.NoError(t, db.Create(&models.MissionAssignment{
		ID:          uuid.NewString(),
		MissionID:   missionID,
		MemberID:    memberID,
		State:       models.AssignmentCompleted,
		Attempts:    1,
		CompletedAt: &now,
	}).Error)
}

func TestIndividualRankingOrder(t *testing.T) {
	db := newTestDB(t)
	svc := NewRankingService(db)

	seedMember(t, db, "admin", models.RoleAdministrator, 9999, 0, 0)
	first := seedMember(t, db, "gema", models.RoleMember, 1200, 0, 0)
	second := seedMember(t, db, "hector", models.RoleMember, 500, 0, 0)
	third := seedMember(t, db, "ines", models.RoleMember, 0, 0, 0)
	inactive := seedMember(t, db, "javi", models.RoleMember, 5000, 0, 0)
	require.NoError(t, db.Model(&models.Member{}).Where("id = ?", inactive.ID).
		Update("active", false).Error)

	mission := seedMission(t, db, "Tracking", 100, 0, 0)
	completeAssignment(t, db, mission.ID, first.ID)
	other := seedMission(t, db, "Signals", 100, 0, 0)
	completeAssignment(t, db, other.ID, first.ID)

	rows, err := svc.IndividualRanking(10)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, first.ID, rows[0].MemberID)
	assert.Equal(t, int64(2), rows[0].MissionsCompleted)
	assert.Equal(t, second.ID, rows[1].MemberID)

	// Zero completions still earns a line.
	assert.Equal(t, third.ID, rows[2].MemberID)
	assert.Zero(t, rows[2].MissionsCompleted)
}

func TestIndividualRankingDefaultsLimit(t *testing.T) {
	db := newTestDB(t)
	svc := NewRankingService(db)

	seedMember(t, db, "kevin", models.RoleMember, 100, 0, 0)
	rows, err := svc.IndividualRanking(-5)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestUnitRankingCountsRosterCompletions(t *testing.T) {
	db := newTestDB(t)
	svc := NewRankingService(db)

	leaderA := seedMember(t, db, "laura", models.RoleMember, 0, 0, 0)
	mateA := seedMember(t, db, "mario", models.RoleMember, 0, 0, 0)
	busy := seedUnit(t, db, "Wolves", leaderA.ID, leaderA.ID, mateA.ID)

	leaderB := seedMember(t, db, "nuria", models.RoleMember, 0, 0, 0)
	idle := seedUnit(t, db, "Bears", leaderB.ID, leaderB.ID)

	mission := seedMission(t, db, "Pioneering", 100, 0, 0)
	completeAssignment(t, db, mission.ID, leaderA.ID)
	completeAssignment(t, db, mission.ID, mateA.ID)

	unitID := busy.ID
	require.NoError(t, db.Create(&models.RankingEntry{
		ID:     uuid.NewString(),
		UnitID: &unitID,
		Points: 1,
	}).Error)

	rows, err := svc.UnitRanking(10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, busy.ID, rows[0].UnitID)
	assert.Equal(t, int64(2), rows[0].MissionsCompleted)
	assert.Equal(t, int64(1), rows[0].Points)

	assert.Equal(t, idle.ID, rows[1].UnitID)
	assert.Zero(t, rows[1].MissionsCompleted)
	assert.Zero(t, rows[1].Points)
}

func TestMemberAndUnitPointsDefaultZero(t *testing.T) {
	db := newTestDB(t)
	svc := NewRankingService(db)

	points, err := svc.MemberPoints("nobody")
	require.NoError(t, err)
	assert.Zero(t, points)

	points, err = svc.UnitPoints("no-unit")
	require.NoError(t, err)
	assert.Zero(t, points)
}
