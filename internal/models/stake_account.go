package models

import (
	"time"
)

// StakeAccount 质押者针对某个 boost mint 的委托记录
// staked_balance 镜像链上状态，刷新时整体覆盖
// rewards_balance 由结算周期累加、由领取扣减
type StakeAccount struct {
	ID                 int32     `gorm:"primaryKey;autoIncrement" json:"id"`
	PoolID             int32     `gorm:"not null;uniqueIndex:uk_pool_staker_mint" json:"pool_id"`
	MintPubkey         string    `gorm:"size:44;not null;uniqueIndex:uk_pool_staker_mint" json:"mint_pubkey"`
	StakerPubkey       string    `gorm:"size:44;not null;uniqueIndex:uk_pool_staker_mint" json:"staker_pubkey"`
	StakePda           string    `gorm:"size:44;not null;uniqueIndex:uk_stake_pda" json:"stake_pda"`
	StakedBalance      uint64    `gorm:"not null;default:0" json:"staked_balance"`
	RewardsBalance     uint64    `gorm:"not null;default:0" json:"rewards_balance"`
	TotalRewardsEarned uint64    `gorm:"not null;default:0" json:"total_rewards_earned"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (StakeAccount) TableName() string {
	return "stake_accounts"
}

// StakeBalanceUpdate 以链上真实值覆盖 staked_balance
type StakeBalanceUpdate struct {
	StakePda      string
	StakedBalance uint64
}

// StakeRewardDelta rewards_balance 与 total_rewards_earned 同步累加
type StakeRewardDelta struct {
	StakePda string
	Amount   uint64
}
