package services

import (
	"testing"

	"clubquest/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMemberFixture(t *testing.T) (*MemberService, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	audit := NewAuditService(db, nil)
	return NewMemberService(db, NewResourceLedger(db), audit), db
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc, _ := newMemberFixture(t)

	member, err := svc.Register("", "  Lucia  ", " Lucia@Club.Test ", "")
	require.NoError(t, err)
	assert.Equal(t, "Lucia", member.Name)
	assert.Equal(t, "lucia@club.test", member.Email)
	assert.Equal(t, models.RoleMember, member.Role)
	assert.Equal(t, 1, member.Level)
	assert.True(t, member.Active)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newMemberFixture(t)

	_, err := svc.Register("", "Mateo", "mateo@club.test", models.RoleMember)
	require.NoError(t, err)

	_, err = svc.Register("", "Other Mateo", "MATEO@club.test", models.RoleMember)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc, _ := newMemberFixture(t)

	_, err := svc.Register("", "Nadia", "nadia@club.test", "superuser")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListExcludesAdminsAndInactive(t *testing.T) {
	svc, db := newMemberFixture(t)

	seedMember(t, db, "admin", models.RoleAdministrator, 0, 0, 0)
	active := seedMember(t, db, "oscar", models.RoleMember, 0, 0, 0)
	gone := seedMember(t, db, "pablo", models.RoleMember, 0, 0, 0)
	require.NoError(t, svc.Deactivate("", gone.ID))

	members, err := svc.List()
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, active.ID, members[0].ID)
}

func TestDeactivateUnknownMember(t *testing.T) {
	svc, _ := newMemberFixture(t)

	assert.ErrorIs(t, svc.Deactivate("", "missing"), ErrNotFound)
}

func TestGrantResourcesLevelsUp(t *testing.T) {
	svc, db := newMemberFixture(t)

	admin := seedMember(t, db, "admin", models.RoleAdministrator, 0, 0, 0)
	member := seedMember(t, db, "raquel", models.RoleMember, 900, 0, 0)

	updated, err := svc.GrantResources(admin.ID, member.ID, 400, 25, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1300), updated.XP)
	assert.Equal(t, 2, updated.Level)
	assert.Equal(t, int64(25), updated.Coins)
	assert.Equal(t, int64(3), updated.Gems)

	_, err = svc.GrantResources(admin.ID, member.ID, -10, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	// The grant leaves an audit trail behind.
	audit := NewAuditService(db, nil)
	entries, err := audit.ListAuditLog(admin.ID, 10)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "Member", entries[0].EntityKind)
	assert.Contains(t, entries[0].Details, "granted")
}
