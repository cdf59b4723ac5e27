package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Fazich/ore-hq-server/internal/models"
	apperrors "github.com/Fazich/ore-hq-server/pkg/errors"
)

type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// CreateBatch 一轮结束后批量落盘提交记录
func (r *SubmissionRepository) CreateBatch(ctx context.Context, submissions []models.Submission) error {
	if len(submissions) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).Create(&submissions)
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrRowNotAffected
	}
	return nil
}

// GetIDByNonce 按 nonce 查最近一次提交的 id
// 同一 nonce 出现多次时取 id 最大的一条
func (r *SubmissionRepository) GetIDByNonce(ctx context.Context, nonce uint64) (int64, error) {
	var sub models.Submission
	err := r.db.WithContext(ctx).
		Select("id").
		Where("nonce = ?", nonce).
		Order("id DESC").
		Limit(1).
		Take(&sub).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperrors.ErrRecordNotFound
	}
	if err != nil {
		return 0, classify(err)
	}
	return sub.ID, nil
}

// ListForChallenge 按 id 升序分页取一轮的全部提交
func (r *SubmissionRepository) ListForChallenge(ctx context.Context, challengeID int32, lastID int64) ([]models.Submission, error) {
	var subs []models.Submission
	err := r.db.WithContext(ctx).
		Where("challenge_id = ? AND id > ?", challengeID, lastID).
		Order("id ASC").
		Limit(pageSize).
		Find(&subs).Error

	if err != nil {
		return nil, classify(err)
	}
	return subs, nil
}

// DeleteOlderThan 清理历史提交，单次最多删 100000 行
func (r *SubmissionRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Exec("DELETE FROM submissions WHERE created_at < ? LIMIT 100000", cutoff)

	if result.Error != nil {
		return 0, classify(result.Error)
	}
	return result.RowsAffected, nil
}

// ListForLastFinalizedChallenge 最近已结算一轮的提交，供缓存刷新使用
func (r *SubmissionRepository) ListForLastFinalizedChallenge(ctx context.Context) ([]models.Submission, error) {
	var last models.Challenge
	err := r.db.WithContext(ctx).
		Where("submission_id IS NOT NULL").
		Order("id DESC").
		Limit(1).
		Take(&last).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err)
	}

	var subs []models.Submission
	err = r.db.WithContext(ctx).
		Where("challenge_id = ?", last.ID).
		Order("id ASC").
		Find(&subs).Error

	if err != nil {
		return nil, classify(err)
	}
	return subs, nil
}
