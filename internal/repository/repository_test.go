package repository

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Fazich/ore-hq-server/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Pool{},
		&models.Miner{},
		&models.Challenge{},
		&models.Submission{},
		&models.Reward{},
		&models.StakeAccount{},
		&models.Claim{},
		&models.Txn{},
	))
	return db
}

func createTestPool(t *testing.T, db *gorm.DB, authority string) *models.Pool {
	t.Helper()

	pool := &models.Pool{
		AuthorityPubkey: authority,
		ProofPubkey:     "proof-" + authority,
	}
	require.NoError(t, db.Create(pool).Error)
	return pool
}

func createTestMiner(t *testing.T, db *gorm.DB, poolID int32, pubkey string, balance uint64) *models.Miner {
	t.Helper()

	miner := &models.Miner{Pubkey: pubkey, Enabled: true}
	require.NoError(t, db.Create(miner).Error)
	require.NoError(t, db.Create(&models.Reward{
		MinerID: miner.ID,
		PoolID:  poolID,
		Balance: balance,
	}).Error)
	return miner
}

func rewardBalance(t *testing.T, db *gorm.DB, minerID int32) uint64 {
	t.Helper()

	var reward models.Reward
	require.NoError(t, db.Where("miner_id = ?", minerID).First(&reward).Error)
	return reward.Balance
}

func testCtx() context.Context {
	return context.Background()
}
