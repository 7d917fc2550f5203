package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRankFixture(t *testing.T) *RankService {
	t.Helper()
	db := newTestDB(t)
	return NewRankService(db, NewAuditService(db, nil))
}

func TestRankForLevelBuiltinLadder(t *testing.T) {
	svc := newRankFixture(t)

	for _, tc := range []struct {
		level int
		name  string
	}{
		{1, "Novice"},
		{5, "Veteran"},
		{10, "Legend"},
		{25, "Legend"}, // past the ladder keeps the last tier
		{0, "Novice"},
	} {
		name, err := svc.RankForLevel(tc.level)
		require.NoError(t, err)
		assert.Equal(t, tc.name, name, "level %d", tc.level)
	}
}

func TestRankForLevelPrefersDefinedRanks(t *testing.T) {
	svc := newRankFixture(t)

	_, err := svc.CreateRank("admin", RankInput{Name: "Pathfinder", Level: 1})
	require.NoError(t, err)
	_, err = svc.CreateRank("admin", RankInput{Name: "Guide", Level: 4, MinXP: 3000})
	require.NoError(t, err)

	name, err := svc.RankForLevel(2)
	require.NoError(t, err)
	assert.Equal(t, "Pathfinder", name)

	name, err = svc.RankForLevel(9)
	require.NoError(t, err)
	assert.Equal(t, "Guide", name)
}

func TestCreateRankDuplicateLevel(t *testing.T) {
	svc := newRankFixture(t)

	_, err := svc.CreateRank("admin", RankInput{Name: "Scout", Level: 2})
	require.NoError(t, err)

	_, err = svc.CreateRank("admin", RankInput{Name: "Tracker", Level: 2})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateRankValidation(t *testing.T) {
	svc := newRankFixture(t)

	_, err := svc.CreateRank("admin", RankInput{Level: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateRank("admin", RankInput{Name: "Ghost", Level: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateRank("admin", RankInput{Name: "Debt", Level: 3, MinXP: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
