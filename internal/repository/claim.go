package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Fazich/ore-hq-server/internal/models"
	apperrors "github.com/Fazich/ore-hq-server/pkg/errors"
)

type ClaimRepository struct {
	db *gorm.DB
}

func NewClaimRepository(db *gorm.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// Create 记录一次领取，作为只追加的审计记录
func (r *ClaimRepository) Create(ctx context.Context, claim *models.Claim) error {
	result := r.db.WithContext(ctx).Create(claim)
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected != 1 {
		return apperrors.ErrRowNotAffected
	}
	return nil
}

// CreateWithSettlement 领取入账的完整落账
// 交易记录、余额扣减、领取记录和矿池计数放在同一个事务里，
// 任何一步失败整体回滚，签名唯一键不会被失败的领取占住
func (r *ClaimRepository) CreateWithSettlement(ctx context.Context, minerID, poolID int32, amount uint64, txn *models.Txn) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(txn); result.Error != nil {
			return result.Error
		}

		result := tx.Model(&models.Reward{}).
			Where("miner_id = ? AND balance >= ?", minerID, amount).
			UpdateColumn("balance", gorm.Expr("balance - ?", amount))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return apperrors.ErrRowNotAffected
		}

		claim := &models.Claim{
			MinerID: minerID,
			PoolID:  poolID,
			TxnID:   txn.ID,
			Amount:  amount,
		}
		if result := tx.Create(claim); result.Error != nil {
			return result.Error
		}

		result = tx.Model(&models.Pool{}).
			Where("id = ?", poolID).
			UpdateColumn("claimed_rewards", gorm.Expr("claimed_rewards + ?", amount))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return apperrors.ErrRowNotAffected
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, apperrors.ErrRowNotAffected) {
			return err
		}
		return classify(err)
	}
	return nil
}

// CreateStakeSettlement 质押奖励领取的完整落账，与 CreateWithSettlement 同样的事务边界
func (r *ClaimRepository) CreateStakeSettlement(ctx context.Context, stakeAccountID, poolID int32, amount uint64, txn *models.Txn) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(txn); result.Error != nil {
			return result.Error
		}

		result := tx.Model(&models.StakeAccount{}).
			Where("id = ? AND rewards_balance >= ?", stakeAccountID, amount).
			UpdateColumn("rewards_balance", gorm.Expr("rewards_balance - ?", amount))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return apperrors.ErrRowNotAffected
		}

		result = tx.Model(&models.Pool{}).
			Where("id = ?", poolID).
			UpdateColumn("claimed_rewards", gorm.Expr("claimed_rewards + ?", amount))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return apperrors.ErrRowNotAffected
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, apperrors.ErrRowNotAffected) {
			return err
		}
		return classify(err)
	}
	return nil
}

// GetLastForMiner 矿工最近一次领取
func (r *ClaimRepository) GetLastForMiner(ctx context.Context, minerID int32) (*models.Claim, error) {
	var claim models.Claim
	err := r.db.WithContext(ctx).
		Where("miner_id = ?", minerID).
		Order("id DESC").
		Limit(1).
		Take(&claim).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err)
	}
	return &claim, nil
}
