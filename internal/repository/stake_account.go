package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Fazich/ore-hq-server/internal/models"
	apperrors "github.com/Fazich/ore-hq-server/pkg/errors"
)

type StakeAccountRepository struct {
	db *gorm.DB
}

func NewStakeAccountRepository(db *gorm.DB) *StakeAccountRepository {
	return &StakeAccountRepository{db: db}
}

// GetForStaker 按 (矿池, 质押者, mint) 唯一三元组查质押账户
func (r *StakeAccountRepository) GetForStaker(ctx context.Context, poolID int32, stakerPubkey, mintPubkey string) (*models.StakeAccount, error) {
	var account models.StakeAccount
	err := r.db.WithContext(ctx).
		Where("pool_id = ? AND staker_pubkey = ? AND mint_pubkey = ?", poolID, stakerPubkey, mintPubkey).
		Order("id ASC").
		Limit(1).
		Take(&account).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err)
	}
	return &account, nil
}

// ListForStaker 一个质押者在矿池内的全部质押账户
func (r *StakeAccountRepository) ListForStaker(ctx context.Context, poolID int32, stakerPubkey string) ([]models.StakeAccount, error) {
	var accounts []models.StakeAccount
	err := r.db.WithContext(ctx).
		Where("pool_id = ? AND staker_pubkey = ?", poolID, stakerPubkey).
		Order("id ASC").
		Find(&accounts).Error

	if err != nil {
		return nil, classify(err)
	}
	return accounts, nil
}

// ListAfter 按 id 升序分页扫描矿池的质押账户
func (r *StakeAccountRepository) ListAfter(ctx context.Context, poolID, lastID int32) ([]models.StakeAccount, error) {
	var accounts []models.StakeAccount
	err := r.db.WithContext(ctx).
		Where("pool_id = ? AND id > ?", poolID, lastID).
		Order("id ASC").
		Limit(pageSize).
		Find(&accounts).Error

	if err != nil {
		return nil, classify(err)
	}
	return accounts, nil
}

// ListForMintAbove 某个 boost mint 下质押量达到下限的账户，分页
func (r *StakeAccountRepository) ListForMintAbove(ctx context.Context, poolID int32, mintPubkey string, lastID int32, minimumBalance uint64) ([]models.StakeAccount, error) {
	var accounts []models.StakeAccount
	err := r.db.WithContext(ctx).
		Where("pool_id = ? AND mint_pubkey = ? AND id > ? AND staked_balance >= ?",
			poolID, mintPubkey, lastID, minimumBalance).
		Order("id ASC").
		Limit(pageSize).
		Find(&accounts).Error

	if err != nil {
		return nil, classify(err)
	}
	return accounts, nil
}

// CreateBatch 插入链上新发现的质押账户，已存在的行跳过
func (r *StakeAccountRepository) CreateBatch(ctx context.Context, accounts []models.StakeAccount) error {
	if len(accounts) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&accounts)

	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrRowNotAffected
	}
	return nil
}

// SetStakedBalances 用链上真实值覆盖 staked_balance，单条语句批量生效
func (r *StakeAccountRepository) SetStakedBalances(ctx context.Context, updates []models.StakeBalanceUpdate) error {
	if len(updates) == 0 {
		return errors.New("empty stake balance batch")
	}

	rows := make([]batchRow, len(updates))
	for i, u := range updates {
		rows[i] = batchRow{key: u.StakePda, values: []interface{}{u.StakedBalance}}
	}

	sql, args := buildCaseUpdate("stake_accounts", "stake_pda", []batchSet{
		{column: "staked_balance", expr: "?"},
	}, rows)

	result := r.db.WithContext(ctx).Exec(sql, args...)
	if result.Error != nil {
		return classify(result.Error)
	}
	return nil
}

// AddRewardsBatch 质押奖励入账
// rewards_balance 与 total_rewards_earned 在同一条语句里一起累加
func (r *StakeAccountRepository) AddRewardsBatch(ctx context.Context, deltas []models.StakeRewardDelta) error {
	if len(deltas) == 0 {
		return errors.New("empty stake reward batch")
	}

	rows := make([]batchRow, len(deltas))
	for i, d := range deltas {
		rows[i] = batchRow{key: d.StakePda, values: []interface{}{d.Amount, d.Amount}}
	}

	sql, args := buildCaseUpdate("stake_accounts", "stake_pda", []batchSet{
		{column: "rewards_balance", expr: "rewards_balance + ?"},
		{column: "total_rewards_earned", expr: "total_rewards_earned + ?"},
	}, rows)

	result := r.db.WithContext(ctx).Exec(sql, args...)
	if result.Error != nil {
		return classify(result.Error)
	}
	return nil
}

// DecreaseRewards 领取质押奖励时扣减，带下限保护
func (r *StakeAccountRepository) DecreaseRewards(ctx context.Context, stakeAccountID int32, amount uint64) error {
	result := r.db.WithContext(ctx).
		Model(&models.StakeAccount{}).
		Where("id = ? AND rewards_balance >= ?", stakeAccountID, amount).
		UpdateColumn("rewards_balance", gorm.Expr("rewards_balance - ?", amount))

	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected != 1 {
		return apperrors.ErrRowNotAffected
	}
	return nil
}
