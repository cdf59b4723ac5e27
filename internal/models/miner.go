package models

import (
	"time"
)

type Miner struct {
	ID        int32     `gorm:"primaryKey;autoIncrement" json:"id"`
	Pubkey    string    `gorm:"size:44;not null;uniqueIndex:uk_pubkey" json:"pubkey"`
	Enabled   bool      `gorm:"not null;default:false" json:"enabled"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Miner) TableName() string {
	return "miners"
}
