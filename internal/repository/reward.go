package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Fazich/ore-hq-server/internal/models"
	apperrors "github.com/Fazich/ore-hq-server/pkg/errors"
)

type RewardRepository struct {
	db *gorm.DB
}

func NewRewardRepository(db *gorm.DB) *RewardRepository {
	return &RewardRepository{db: db}
}

// GetByMinerPubkey 按矿工钱包地址查可领取余额
func (r *RewardRepository) GetByMinerPubkey(ctx context.Context, pubkey string) (*models.Reward, error) {
	var reward models.Reward
	err := r.db.WithContext(ctx).
		Joins("JOIN miners ON miners.id = rewards.miner_id").
		Where("miners.pubkey = ?", pubkey).
		First(&reward).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err)
	}
	return &reward, nil
}

// AddBatch 一个结算周期的矿工奖励增量，单条语句一次往返全部生效
// 重复提交同一批增量会重复累加，调用方保证每周期只算一次
func (r *RewardRepository) AddBatch(ctx context.Context, deltas []models.RewardDelta) error {
	if len(deltas) == 0 {
		return errors.New("empty reward delta batch")
	}

	rows := make([]batchRow, len(deltas))
	for i, d := range deltas {
		rows[i] = batchRow{key: d.MinerID, values: []interface{}{d.Amount}}
	}

	sql, args := buildCaseUpdate("rewards", "miner_id", []batchSet{
		{column: "balance", expr: "balance + ?"},
	}, rows)

	result := r.db.WithContext(ctx).Exec(sql, args...)
	if result.Error != nil {
		return classify(result.Error)
	}
	return nil
}

// Decrease 领取时扣减余额
// WHERE 带余额下限防止扣成负数，扣不动视为失败而不是回绕
func (r *RewardRepository) Decrease(ctx context.Context, minerID int32, amount uint64) error {
	result := r.db.WithContext(ctx).
		Model(&models.Reward{}).
		Where("miner_id = ? AND balance >= ?", minerID, amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))

	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected != 1 {
		return apperrors.ErrRowNotAffected
	}
	return nil
}

// Create 注册时为矿工建零余额记录
func (r *RewardRepository) Create(ctx context.Context, minerID, poolID int32) error {
	reward := &models.Reward{
		MinerID: minerID,
		PoolID:  poolID,
	}

	result := r.db.WithContext(ctx).Create(reward)
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected != 1 {
		return apperrors.ErrRowNotAffected
	}
	return nil
}

// ListAfter 按 id 升序分页扫描奖励账户
func (r *RewardRepository) ListAfter(ctx context.Context, lastID int32) ([]models.Reward, error) {
	var rewards []models.Reward
	err := r.db.WithContext(ctx).
		Where("id > ?", lastID).
		Order("id ASC").
		Limit(pageSize).
		Find(&rewards).Error

	if err != nil {
		return nil, classify(err)
	}
	return rewards, nil
}
