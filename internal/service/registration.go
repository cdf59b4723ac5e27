package service

import (
	"context"

	"github.com/Fazich/ore-hq-server/internal/config"
	"github.com/Fazich/ore-hq-server/internal/models"
	"github.com/Fazich/ore-hq-server/internal/repository"
	"github.com/Fazich/ore-hq-server/pkg/errors"
	"github.com/Fazich/ore-hq-server/pkg/logger"
)

// RegistrationService 矿工注册
type RegistrationService struct {
	poolCfg *config.PoolConfig
	miners  *repository.MinerRepository
}

func NewRegistrationService(poolCfg *config.PoolConfig, miners *repository.MinerRepository) *RegistrationService {
	return &RegistrationService{
		poolCfg: poolCfg,
		miners:  miners,
	}
}

// Signup 注册新矿工并建好零余额奖励账户
// 重复注册直接返回已有记录，不报错
func (s *RegistrationService) Signup(ctx context.Context, minerPubkey string) (*models.Miner, error) {
	existing, err := s.miners.GetByPubkey(ctx, minerPubkey)
	if err != nil {
		return nil, errors.New(errors.ErrSignup, "查询矿工失败", err)
	}
	if existing != nil {
		logger.WithFields(map[string]interface{}{
			"pubkey": minerPubkey,
		}).Info("矿工已注册")
		return existing, nil
	}

	if err := s.miners.Signup(ctx, minerPubkey, s.poolCfg.AuthorityPubkey); err != nil {
		return nil, errors.New(errors.ErrSignup, "注册矿工失败", err)
	}

	miner, err := s.miners.GetByPubkey(ctx, minerPubkey)
	if err != nil {
		return nil, errors.New(errors.ErrSignup, "查询新注册矿工失败", err)
	}
	if miner == nil {
		return nil, errors.New(errors.ErrSignup, "注册后矿工记录缺失", nil)
	}

	logger.WithFields(map[string]interface{}{
		"miner_id": miner.ID,
		"pubkey":   minerPubkey,
	}).Info("矿工注册成功")
	return miner, nil
}
