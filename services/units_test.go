package services

import (
	"testing"

	"clubquest/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUnitFixture(t *testing.T) (*UnitService, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	return NewUnitService(db, NewAuditService(db, nil)), db
}

func TestCreateUnitWithRoster(t *testing.T) {
	svc, db := newUnitFixture(t)

	leader := seedMember(t, db, "silvia", models.RoleMember, 0, 0, 0)
	mate := seedMember(t, db, "teo", models.RoleMember, 0, 0, 0)

	unit, err := svc.CreateUnit("", UnitInput{
		Name:      "Red Panthers",
		Capacity:  8,
		LeaderID:  leader.ID,
		MemberIDs: []string{leader.ID, mate.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "red-panthers", unit.Slug)

	var roster int64
	require.NoError(t, db.Model(&models.UnitMember{}).
		Where("unit_id = ?", unit.ID).Count(&roster).Error)
	assert.Equal(t, int64(2), roster)
}

func TestCreateUnitDuplicateName(t *testing.T) {
	svc, db := newUnitFixture(t)

	leader := seedMember(t, db, "uma", models.RoleMember, 0, 0, 0)
	_, err := svc.CreateUnit("", UnitInput{Name: "Condors", Capacity: 5, LeaderID: leader.ID})
	require.NoError(t, err)

	_, err = svc.CreateUnit("", UnitInput{Name: "Condors", Capacity: 5, LeaderID: leader.ID})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateUnitValidatesCapacity(t *testing.T) {
	svc, _ := newUnitFixture(t)

	_, err := svc.CreateUnit("", UnitInput{Name: "Tiny", Capacity: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateUnit("", UnitInput{
		Name:      "Overfull",
		Capacity:  1,
		MemberIDs: []string{"a", "b"},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateUnitReplacesRoster(t *testing.T) {
	svc, db := newUnitFixture(t)

	leader := seedMember(t, db, "vera", models.RoleMember, 0, 0, 0)
	old := seedMember(t, db, "walter", models.RoleMember, 0, 0, 0)
	next := seedMember(t, db, "xavi", models.RoleMember, 0, 0, 0)

	unit, err := svc.CreateUnit("", UnitInput{
		Name:      "Herons",
		Capacity:  6,
		LeaderID:  leader.ID,
		MemberIDs: []string{leader.ID, old.ID},
	})
	require.NoError(t, err)

	_, err = svc.UpdateUnit("", unit.ID, UnitInput{
		Name:      "Herons",
		Capacity:  6,
		LeaderID:  leader.ID,
		MemberIDs: []string{leader.ID, next.ID},
	})
	require.NoError(t, err)

	var ids []string
	require.NoError(t, db.Model(&models.UnitMember{}).
		Where("unit_id = ?", unit.ID).Pluck("member_id", &ids).Error)
	assert.ElementsMatch(t, []string{leader.ID, next.ID}, ids)
}

func TestUpdateUnitCapacityBelowCurrentRoster(t *testing.T) {
	svc, db := newUnitFixture(t)

	leader := seedMember(t, db, "zoe", models.RoleMember, 0, 0, 0)
	mate := seedMember(t, db, "adrian", models.RoleMember, 0, 0, 0)

	unit, err := svc.CreateUnit("", UnitInput{
		Name:      "Badgers",
		Capacity:  4,
		LeaderID:  leader.ID,
		MemberIDs: []string{leader.ID, mate.ID},
	})
	require.NoError(t, err)

	// Shrinking capacity without touching the roster must not leave the
	// existing roster over the limit.
	_, err = svc.UpdateUnit("", unit.ID, UnitInput{
		Name:     "Badgers",
		Capacity: 1,
		LeaderID: leader.ID,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	var stored models.Unit
	require.NoError(t, db.Where("id = ?", unit.ID).First(&stored).Error)
	assert.Equal(t, 4, stored.Capacity)

	// Shrinking together with a fitting roster replacement is fine.
	_, err = svc.UpdateUnit("", unit.ID, UnitInput{
		Name:      "Badgers",
		Capacity:  1,
		LeaderID:  leader.ID,
		MemberIDs: []string{leader.ID},
	})
	require.NoError(t, err)
}

func TestListUnitsSkipsInactive(t *testing.T) {
	svc, db := newUnitFixture(t)

	leader := seedMember(t, db, "yolanda", models.RoleMember, 0, 0, 0)
	kept, err := svc.CreateUnit("", UnitInput{Name: "Storks", Capacity: 5, LeaderID: leader.ID, MemberIDs: []string{leader.ID}})
	require.NoError(t, err)
	dropped, err := svc.CreateUnit("", UnitInput{Name: "Ants", Capacity: 5, LeaderID: leader.ID})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate("", dropped.ID))

	units, err := svc.ListUnits()
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, kept.ID, units[0].ID)
	require.Len(t, units[0].Members, 1)
	assert.Equal(t, leader.ID, units[0].Members[0].MemberID)
}
