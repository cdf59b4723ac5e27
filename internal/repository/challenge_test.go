package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Fazich/ore-hq-server/pkg/errors"
)

func testChallenge(b byte) []byte {
	challenge := make([]byte, 32)
	challenge[0] = b
	return challenge
}

func TestChallengeFinalizeExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	pool := createTestPool(t, db, "authority")
	repo := NewChallengeRepository(db)

	challenge := testChallenge(1)
	require.NoError(t, repo.Create(testCtx(), pool.ID, challenge))

	require.NoError(t, repo.Finalize(testCtx(), challenge, 42, 9000))

	got, err := repo.GetByChallenge(testCtx(), challenge)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.SubmissionID)
	require.NotNil(t, got.RewardsEarned)
	assert.Equal(t, int64(42), *got.SubmissionID)
	assert.Equal(t, uint64(9000), *got.RewardsEarned)

	// 已结算的轮次不允许再写
	err = repo.Finalize(testCtx(), challenge, 43, 1)
	assert.ErrorIs(t, err, apperrors.ErrRowNotAffected)

	got, err = repo.GetByChallenge(testCtx(), challenge)
	require.NoError(t, err)
	assert.Equal(t, int64(42), *got.SubmissionID)
	assert.Equal(t, uint64(9000), *got.RewardsEarned)
}

func TestChallengeFinalizeUnknownChallenge(t *testing.T) {
	db := newTestDB(t)
	repo := NewChallengeRepository(db)

	err := repo.Finalize(testCtx(), testChallenge(9), 1, 1)
	assert.ErrorIs(t, err, apperrors.ErrRowNotAffected)
}

func TestChallengeListRecentOnlyFinalized(t *testing.T) {
	db := newTestDB(t)
	pool := createTestPool(t, db, "authority")
	repo := NewChallengeRepository(db)

	for b := byte(1); b <= 3; b++ {
		require.NoError(t, repo.Create(testCtx(), pool.ID, testChallenge(b)))
	}
	require.NoError(t, repo.Finalize(testCtx(), testChallenge(1), 1, 100))
	require.NoError(t, repo.Finalize(testCtx(), testChallenge(3), 3, 300))

	challenges, err := repo.ListRecent(testCtx(), 0)
	require.NoError(t, err)
	require.Len(t, challenges, 2)
	// 最近的轮次在前
	assert.Equal(t, testChallenge(3), challenges[0].Challenge)
	assert.Equal(t, testChallenge(1), challenges[1].Challenge)
}

func TestChallengeGetByChallengeNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewChallengeRepository(db)

	got, err := repo.GetByChallenge(testCtx(), testChallenge(7))
	require.NoError(t, err)
	assert.Nil(t, got)
}
