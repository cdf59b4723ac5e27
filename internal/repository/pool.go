package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Fazich/ore-hq-server/internal/models"
	apperrors "github.com/Fazich/ore-hq-server/pkg/errors"
)

type PoolRepository struct {
	db *gorm.DB
}

func NewPoolRepository(db *gorm.DB) *PoolRepository {
	return &PoolRepository{db: db}
}

// GetByAuthority 按矿池管理地址查找矿池
func (r *PoolRepository) GetByAuthority(ctx context.Context, authorityPubkey string) (*models.Pool, error) {
	var pool models.Pool
	err := r.db.WithContext(ctx).
		Where("authority_pubkey = ?", authorityPubkey).
		First(&pool).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err)
	}
	return &pool, nil
}

// Create 创建矿池记录，只在启动引导时调用一次
func (r *PoolRepository) Create(ctx context.Context, authorityPubkey, proofPubkey string) error {
	pool := &models.Pool{
		AuthorityPubkey: authorityPubkey,
		ProofPubkey:     proofPubkey,
	}

	result := r.db.WithContext(ctx).Create(pool)
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected != 1 {
		return apperrors.ErrRowNotAffected
	}
	return nil
}

// IncrementTotalRewards 累加矿池累计奖励，计数器单调不减
func (r *PoolRepository) IncrementTotalRewards(ctx context.Context, authorityPubkey string, earned uint64) error {
	result := r.db.WithContext(ctx).
		Model(&models.Pool{}).
		Where("authority_pubkey = ?", authorityPubkey).
		UpdateColumn("total_rewards", gorm.Expr("total_rewards + ?", earned))

	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected != 1 {
		return apperrors.ErrRowNotAffected
	}
	return nil
}

// IncrementClaimedRewards 累加矿池已领取奖励
func (r *PoolRepository) IncrementClaimedRewards(ctx context.Context, authorityPubkey string, claimed uint64) error {
	result := r.db.WithContext(ctx).
		Model(&models.Pool{}).
		Where("authority_pubkey = ?", authorityPubkey).
		UpdateColumn("claimed_rewards", gorm.Expr("claimed_rewards + ?", claimed))

	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected != 1 {
		return apperrors.ErrRowNotAffected
	}
	return nil
}
