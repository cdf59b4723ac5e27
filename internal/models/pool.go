package models

import (
	"time"
)

type Pool struct {
	ID              int32     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProofPubkey     string    `gorm:"size:44;not null" json:"proof_pubkey"`
	AuthorityPubkey string    `gorm:"size:44;not null;uniqueIndex:uk_authority" json:"authority_pubkey"`
	TotalRewards    uint64    `gorm:"not null;default:0" json:"total_rewards"`
	ClaimedRewards  uint64    `gorm:"not null;default:0" json:"claimed_rewards"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Pool) TableName() string {
	return "pools"
}
