package services

import (
	"testing"
	"time"

	"clubquest/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSeasonFixture(t *testing.T) (*SeasonService, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	return NewSeasonService(db, NewAuditService(db, nil)), db
}

func TestCloseSeasonSnapshotsAndResets(t *testing.T) {
	svc, db := newSeasonFixture(t)

	admin := seedMember(t, db, "admin", models.RoleAdministrator, 0, 0, 0)
	mid := seedMember(t, db, "ana", models.RoleMember, 500, 30, 2)
	top := seedMember(t, db, "bea", models.RoleMember, 1200, 10, 0)
	low := seedMember(t, db, "carlos", models.RoleMember, 300, 5, 1)

	season, err := svc.CreateSeason(admin.ID, "Spring 2026", nil, nil)
	require.NoError(t, err)

	require.NoError(t, svc.CloseSeason(admin.ID, season.ID))

	// Snapshot holds the pre-reset XP totals.
	expected := map[string]int64{mid.ID: 500, top.ID: 1200, low.ID: 300}
	var rows []models.SeasonRanking
	require.NoError(t, db.Where("season_id = ?", season.ID).Find(&rows).Error)
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Equal(t, expected[row.MemberID], row.Points)
	}

	// Coin prizes for the top three, best first.
	rewards, err := svc.ListRewards(season.ID)
	require.NoError(t, err)
	require.Len(t, rewards, 3)
	assert.Equal(t, top.ID, rewards[0].MemberID)
	assert.Equal(t, int64(300), rewards[0].Value)
	assert.Equal(t, mid.ID, rewards[1].MemberID)
	assert.Equal(t, int64(200), rewards[1].Value)
	assert.Equal(t, low.ID, rewards[2].MemberID)
	assert.Equal(t, int64(100), rewards[2].Value)
	for _, reward := range rewards {
		assert.Equal(t, "coins", reward.Kind)
	}

	// Every member starts the next season from zero at level one.
	for _, id := range []string{mid.ID, top.ID, low.ID} {
		after := reloadMember(t, db, id)
		assert.Zero(t, after.XP)
		assert.Zero(t, after.Coins)
		assert.Zero(t, after.Gems)
		assert.Equal(t, 1, after.Level)
	}

	// Administrators are not part of the cohort.
	var adminRows int64
	require.NoError(t, db.Model(&models.SeasonRanking{}).
		Where("member_id = ?", admin.ID).Count(&adminRows).Error)
	assert.Zero(t, adminRows)
}

func TestCloseSeasonTwice(t *testing.T) {
	svc, db := newSeasonFixture(t)

	admin := seedMember(t, db, "admin", models.RoleAdministrator, 0, 0, 0)
	seedMember(t, db, "diana", models.RoleMember, 800, 0, 0)

	season, err := svc.CreateSeason(admin.ID, "Summer 2026", nil, nil)
	require.NoError(t, err)
	require.NoError(t, svc.CloseSeason(admin.ID, season.ID))

	err = svc.CloseSeason(admin.ID, season.ID)
	assert.ErrorIs(t, err, ErrConflict)

	// The snapshot survives the rejected second close untouched.
	var rows int64
	require.NoError(t, db.Model(&models.SeasonRanking{}).
		Where("season_id = ?", season.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestCloseSeasonOverwritesManualPoints(t *testing.T) {
	svc, db := newSeasonFixture(t)

	admin := seedMember(t, db, "admin", models.RoleAdministrator, 0, 0, 0)
	member := seedMember(t, db, "eva", models.RoleMember, 900, 50, 0)

	season, err := svc.CreateSeason(admin.ID, "Autumn 2026", nil, nil)
	require.NoError(t, err)

	// Manual adjustments during the season are replaced by the close
	// snapshot, and the member still gets reset.
	require.NoError(t, svc.AddSeasonPoints(admin.ID, season.ID, member.ID, 40))
	require.NoError(t, svc.CloseSeason(admin.ID, season.ID))

	var row models.SeasonRanking
	require.NoError(t, db.Where("season_id = ? AND member_id = ?", season.ID, member.ID).
		First(&row).Error)
	assert.Equal(t, int64(900), row.Points)

	after := reloadMember(t, db, member.ID)
	assert.Zero(t, after.XP)
	assert.Zero(t, after.Coins)
}

func TestAddSeasonPointsAfterCloseRejected(t *testing.T) {
	svc, db := newSeasonFixture(t)

	admin := seedMember(t, db, "admin", models.RoleAdministrator, 0, 0, 0)
	member := seedMember(t, db, "gabriel", models.RoleMember, 700, 0, 0)

	season, err := svc.CreateSeason(admin.ID, "Frozen 2026", nil, nil)
	require.NoError(t, err)
	require.NoError(t, svc.CloseSeason(admin.ID, season.ID))

	err = svc.AddSeasonPoints(admin.ID, season.ID, member.ID, 9999)
	assert.ErrorIs(t, err, ErrConflict)

	// The snapshot is frozen at the close-time XP.
	var row models.SeasonRanking
	require.NoError(t, db.Where("season_id = ? AND member_id = ?", season.ID, member.ID).
		First(&row).Error)
	assert.Equal(t, int64(700), row.Points)
}

func TestCloseSeasonResumesStrandedMembers(t *testing.T) {
	svc, db := newSeasonFixture(t)

	admin := seedMember(t, db, "admin", models.RoleAdministrator, 0, 0, 0)
	done := seedMember(t, db, "hilda", models.RoleMember, 0, 0, 0)
	stranded := seedMember(t, db, "ignacio", models.RoleMember, 650, 30, 2)

	// A close that died between batches: the marker is set and one member
	// is snapshotted and reset, the other was never reached.
	now := time.Now()
	season := models.Season{ID: "season-partial", Name: "Interrupted 2026", ClosedAt: &now}
	require.NoError(t, db.Create(&season).Error)
	require.NoError(t, db.Create(&models.SeasonRanking{
		ID:       "row-done",
		SeasonID: season.ID,
		MemberID: done.ID,
		Points:   400,
	}).Error)

	require.NoError(t, svc.CloseSeason(admin.ID, season.ID))

	// The stranded member is snapshotted and reset; the finished one keeps
	// their original snapshot.
	var row models.SeasonRanking
	require.NoError(t, db.Where("season_id = ? AND member_id = ?", season.ID, stranded.ID).
		First(&row).Error)
	assert.Equal(t, int64(650), row.Points)

	after := reloadMember(t, db, stranded.ID)
	assert.Zero(t, after.XP)
	assert.Zero(t, after.Coins)
	assert.Zero(t, after.Gems)

	// Fresh destination: reusing row would make gorm add its primary key as
	// an extra condition and miss the record.
	var doneRow models.SeasonRanking
	require.NoError(t, db.Where("id = ?", "row-done").First(&doneRow).Error)
	assert.Equal(t, int64(400), doneRow.Points)

	// No prizes are re-emitted on resume, and once the cohort is complete
	// the season is terminal again.
	var prizes int64
	require.NoError(t, db.Model(&models.SeasonReward{}).
		Where("season_id = ?", season.ID).Count(&prizes).Error)
	assert.Zero(t, prizes)

	assert.ErrorIs(t, svc.CloseSeason(admin.ID, season.ID), ErrConflict)
}

func TestCloseUnknownSeason(t *testing.T) {
	svc, db := newSeasonFixture(t)

	admin := seedMember(t, db, "admin", models.RoleAdministrator, 0, 0, 0)
	err := svc.CloseSeason(admin.ID, "no-such-season")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddSeasonPointsAccumulates(t *testing.T) {
	svc, db := newSeasonFixture(t)

	admin := seedMember(t, db, "admin", models.RoleAdministrator, 0, 0, 0)
	member := seedMember(t, db, "fran", models.RoleMember, 0, 0, 0)
	season, err := svc.CreateSeason(admin.ID, "Winter 2026", nil, nil)
	require.NoError(t, err)

	require.NoError(t, svc.AddSeasonPoints(admin.ID, season.ID, member.ID, 10))
	require.NoError(t, svc.AddSeasonPoints(admin.ID, season.ID, member.ID, 15))

	var row models.SeasonRanking
	require.NoError(t, db.Where("season_id = ? AND member_id = ?", season.ID, member.ID).
		First(&row).Error)
	assert.Equal(t, int64(25), row.Points)
}
