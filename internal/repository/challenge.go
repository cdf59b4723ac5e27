package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Fazich/ore-hq-server/internal/models"
	apperrors "github.com/Fazich/ore-hq-server/pkg/errors"
)

type ChallengeRepository struct {
	db *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

// GetByChallenge 按链上挑战值查找轮次
func (r *ChallengeRepository) GetByChallenge(ctx context.Context, challenge []byte) (*models.Challenge, error) {
	var c models.Challenge
	err := r.db.WithContext(ctx).
		Where("challenge = ?", challenge).
		First(&c).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err)
	}
	return &c, nil
}

// Create 新一轮开始时插入挑战
func (r *ChallengeRepository) Create(ctx context.Context, poolID int32, challenge []byte) error {
	c := &models.Challenge{
		PoolID:    poolID,
		Challenge: challenge,
	}

	result := r.db.WithContext(ctx).Create(c)
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected != 1 {
		return apperrors.ErrRowNotAffected
	}
	return nil
}

// Finalize 结算时写入获胜提交与本轮奖励，二者一起写且只允许写一次
// submission_id 已有值的行不再匹配，重复结算返回 ErrRowNotAffected
func (r *ChallengeRepository) Finalize(ctx context.Context, challenge []byte, submissionID int64, rewards uint64) error {
	result := r.db.WithContext(ctx).
		Model(&models.Challenge{}).
		Where("challenge = ? AND submission_id IS NULL", challenge).
		Updates(map[string]interface{}{
			"submission_id":  submissionID,
			"rewards_earned": rewards,
		})

	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected != 1 {
		return apperrors.ErrRowNotAffected
	}
	return nil
}

// ListRecent 最近的轮次列表，供缓存刷新使用
func (r *ChallengeRepository) ListRecent(ctx context.Context, limit int) ([]models.Challenge, error) {
	var challenges []models.Challenge
	if limit <= 0 || limit > pageSize {
		limit = pageSize
	}
	err := r.db.WithContext(ctx).
		Where("submission_id IS NOT NULL").
		Order("id DESC").
		Limit(limit).
		Find(&challenges).Error

	if err != nil {
		return nil, classify(err)
	}
	return challenges, nil
}
