package models

import (
	"time"
)

type Claim struct {
	ID        int32     `gorm:"primaryKey;autoIncrement" json:"id"`
	MinerID   int32     `gorm:"not null;index" json:"miner_id"`
	PoolID    int32     `gorm:"not null" json:"pool_id"`
	TxnID     int32     `gorm:"not null" json:"txn_id"`
	Amount    uint64    `gorm:"not null" json:"amount"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Claim) TableName() string {
	return "claims"
}
