package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Fazich/ore-hq-server/internal/models"
)

type MinerRepository struct {
	db *gorm.DB
}

func NewMinerRepository(db *gorm.DB) *MinerRepository {
	return &MinerRepository{db: db}
}

// GetByPubkey 按钱包地址查找矿工
func (r *MinerRepository) GetByPubkey(ctx context.Context, pubkey string) (*models.Miner, error) {
	var miner models.Miner
	err := r.db.WithContext(ctx).
		Where("pubkey = ?", pubkey).
		First(&miner).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err)
	}
	return &miner, nil
}

// Signup 注册矿工
// 建矿工、查矿池、建零余额奖励记录放在同一个事务里，失败整体回滚
func (r *MinerRepository) Signup(ctx context.Context, minerPubkey, poolAuthorityPubkey string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		miner := &models.Miner{
			Pubkey:  minerPubkey,
			Enabled: true,
		}
		if result := tx.Create(miner); result.Error != nil {
			return result.Error
		} else if result.RowsAffected != 1 {
			return gorm.ErrInvalidData
		}

		var pool models.Pool
		if err := tx.Where("authority_pubkey = ?", poolAuthorityPubkey).First(&pool).Error; err != nil {
			return err
		}

		reward := &models.Reward{
			MinerID: miner.ID,
			PoolID:  pool.ID,
		}
		if result := tx.Create(reward); result.Error != nil {
			return result.Error
		} else if result.RowsAffected != 1 {
			return gorm.ErrInvalidData
		}
		return nil
	})

	if err != nil {
		return classify(err)
	}
	return nil
}

// ListAfter 按 id 升序分页扫描矿工
// lastID 为上一页最后一行的 id，返回不足 500 行表示已到末尾
func (r *MinerRepository) ListAfter(ctx context.Context, lastID int32) ([]models.Miner, error) {
	var miners []models.Miner
	err := r.db.WithContext(ctx).
		Where("id > ?", lastID).
		Order("id ASC").
		Limit(pageSize).
		Find(&miners).Error

	if err != nil {
		return nil, classify(err)
	}
	return miners, nil
}
