package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Fazich/ore-hq-server/internal/config"
	"github.com/Fazich/ore-hq-server/internal/models"
	"github.com/Fazich/ore-hq-server/internal/repository"
)

const testAuthority = "authority"

type testEnv struct {
	db          *gorm.DB
	pool        *models.Pool
	poolCfg     *config.PoolConfig
	pools       *repository.PoolRepository
	miners      *repository.MinerRepository
	challenges  *repository.ChallengeRepository
	submissions *repository.SubmissionRepository
	rewards     *repository.RewardRepository
	stakes      *repository.StakeAccountRepository
	claims      *repository.ClaimRepository
	txns        *repository.TxnRepository
}

func newTestEnv(t *testing.T) *testEnv {
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

	pool := &models.Pool{AuthorityPubkey: testAuthority, ProofPubkey: "proof"}
	require.NoError(t, db.Create(pool).Error)

	return &testEnv{
		db:   db,
		pool: pool,
		poolCfg: &config.PoolConfig{
			AuthorityPubkey:   testAuthority,
			MinimumDifficulty: 18,
		},
		pools:       repository.NewPoolRepository(db),
		miners:      repository.NewMinerRepository(db),
		challenges:  repository.NewChallengeRepository(db),
		submissions: repository.NewSubmissionRepository(db),
		rewards:     repository.NewRewardRepository(db),
		stakes:      repository.NewStakeAccountRepository(db),
		claims:      repository.NewClaimRepository(db),
		txns:        repository.NewTxnRepository(db),
	}
}

func (e *testEnv) pipeline() *AccountingPipeline {
	return NewAccountingPipeline(e.poolCfg, e.pools, e.challenges, e.submissions, e.rewards, e.stakes)
}

func (e *testEnv) createMiner(t *testing.T, pubkey string, balance uint64) *models.Miner {
	t.Helper()

	miner := &models.Miner{Pubkey: pubkey, Enabled: true}
	require.NoError(t, e.db.Create(miner).Error)
	require.NoError(t, e.db.Create(&models.Reward{
		MinerID: miner.ID,
		PoolID:  e.pool.ID,
		Balance: balance,
	}).Error)
	return miner
}

func (e *testEnv) minerBalance(t *testing.T, minerID int32) uint64 {
	t.Helper()

	var reward models.Reward
	require.NoError(t, e.db.Where("miner_id = ?", minerID).First(&reward).Error)
	return reward.Balance
}

func testCtx() context.Context {
	return context.Background()
}
