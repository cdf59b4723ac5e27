package models

import (
	"time"
)

// Challenge 一轮挖矿的目标值
// submission_id 与 rewards_earned 在结算时一起写入，只允许写一次
type Challenge struct {
	ID            int32     `gorm:"primaryKey;autoIncrement" json:"id"`
	PoolID        int32     `gorm:"not null;index" json:"pool_id"`
	SubmissionID  *int64    `json:"submission_id"`
	Challenge     []byte    `gorm:"type:varbinary(32);not null;uniqueIndex:uk_challenge" json:"challenge"`
	RewardsEarned *uint64   `json:"rewards_earned"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Challenge) TableName() string {
	return "challenges"
}
