package models

import (
	"time"
)

type TxnType string

const (
	TxnTypeMine  TxnType = "mine"
	TxnTypeClaim TxnType = "claim"
	TxnTypeStake TxnType = "stake"
)

type Txn struct {
	ID          int32     `gorm:"primaryKey;autoIncrement" json:"id"`
	TxnType     string    `gorm:"size:32;not null" json:"txn_type"`
	Signature   string    `gorm:"size:88;not null;uniqueIndex:uk_signature" json:"signature"`
	PriorityFee uint32    `gorm:"not null;default:0" json:"priority_fee"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Txn) TableName() string {
	return "txns"
}
