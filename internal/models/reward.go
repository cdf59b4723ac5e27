package models

import (
	"time"
)

// Reward 矿工在矿池中的可领取余额
// balance 只通过批量结算增加、通过领取减少，永远不为负
type Reward struct {
	ID        int32     `gorm:"primaryKey;autoIncrement" json:"id"`
	MinerID   int32     `gorm:"not null;uniqueIndex:uk_miner_pool" json:"miner_id"`
	PoolID    int32     `gorm:"not null;uniqueIndex:uk_miner_pool" json:"pool_id"`
	Balance   uint64    `gorm:"not null;default:0" json:"balance"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Reward) TableName() string {
	return "rewards"
}

// RewardDelta 单个矿工在一个结算周期内新挣得的数额
type RewardDelta struct {
	MinerID int32
	Amount  uint64
}
