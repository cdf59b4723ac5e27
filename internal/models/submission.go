package models

import (
	"time"
)

type Submission struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ChallengeID int32     `gorm:"not null;index" json:"challenge_id"`
	MinerID     int32     `gorm:"not null;index" json:"miner_id"`
	Nonce       uint64    `gorm:"not null;index" json:"nonce"`
	Difficulty  int8      `gorm:"not null" json:"difficulty"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Submission) TableName() string {
	return "submissions"
}
