package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Fazich/ore-hq-server/pkg/errors"
)

func TestPoolIncrementCounters(t *testing.T) {
	db := newTestDB(t)
	createTestPool(t, db, "authority")

	repo := NewPoolRepository(db)

	require.NoError(t, repo.IncrementTotalRewards(testCtx(), "authority", 1000))
	require.NoError(t, repo.IncrementTotalRewards(testCtx(), "authority", 500))
	require.NoError(t, repo.IncrementClaimedRewards(testCtx(), "authority", 300))

	pool, err := repo.GetByAuthority(testCtx(), "authority")
	require.NoError(t, err)
	require.NotNil(t, pool)
	assert.Equal(t, uint64(1500), pool.TotalRewards)
	assert.Equal(t, uint64(300), pool.ClaimedRewards)
}

func TestPoolIncrementUnknownAuthority(t *testing.T) {
	db := newTestDB(t)
	repo := NewPoolRepository(db)

	err := repo.IncrementTotalRewards(testCtx(), "missing", 1)
	assert.ErrorIs(t, err, apperrors.ErrRowNotAffected)
}

func TestPoolGetByAuthorityNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewPoolRepository(db)

	pool, err := repo.GetByAuthority(testCtx(), "missing")
	require.NoError(t, err)
	assert.Nil(t, pool)
}
