package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Fazich/ore-hq-server/internal/models"
	apperrors "github.com/Fazich/ore-hq-server/pkg/errors"
)

type TxnRepository struct {
	db *gorm.DB
}

func NewTxnRepository(db *gorm.DB) *TxnRepository {
	return &TxnRepository{db: db}
}

// Create 记录一笔链上交易
// signature 有唯一键，重复签名返回 ErrDuplicateRecord 而不是悄悄重复
func (r *TxnRepository) Create(ctx context.Context, txn *models.Txn) error {
	result := r.db.WithContext(ctx).Create(txn)
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected != 1 {
		return apperrors.ErrRowNotAffected
	}
	return nil
}

// GetIDBySignature 按链上签名查交易 id，签名是外部天然键
func (r *TxnRepository) GetIDBySignature(ctx context.Context, signature string) (int32, error) {
	var txn models.Txn
	err := r.db.WithContext(ctx).
		Select("id").
		Where("signature = ?", signature).
		Take(&txn).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperrors.ErrRecordNotFound
	}
	if err != nil {
		return 0, classify(err)
	}
	return txn.ID, nil
}
