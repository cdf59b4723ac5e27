package service

import (
	"context"

	"github.com/Fazich/ore-hq-server/internal/config"
	"github.com/Fazich/ore-hq-server/internal/models"
	"github.com/Fazich/ore-hq-server/internal/repository"
	"github.com/Fazich/ore-hq-server/pkg/errors"
	"github.com/Fazich/ore-hq-server/pkg/logger"
)

// ClaimService 奖励领取入账
// 链上转账由外部发起，这里只负责账本侧的记录与扣减
type ClaimService struct {
	poolCfg *config.PoolConfig
	miners  *repository.MinerRepository
	pools   *repository.PoolRepository
	rewards *repository.RewardRepository
	stakes  *repository.StakeAccountRepository
	claims  *repository.ClaimRepository
}

func NewClaimService(
	poolCfg *config.PoolConfig,
	miners *repository.MinerRepository,
	pools *repository.PoolRepository,
	rewards *repository.RewardRepository,
	stakes *repository.StakeAccountRepository,
	claims *repository.ClaimRepository,
) *ClaimService {
	return &ClaimService{
		poolCfg: poolCfg,
		miners:  miners,
		pools:   pools,
		rewards: rewards,
		stakes:  stakes,
		claims:  claims,
	}
}

// ProcessClaim 矿工领取奖励后入账
// 交易记录、余额扣减、领取记录在一个事务里落账：
// 扣减失败整体回滚，签名不会被占住，同一笔领取可以重试；
// 成功落账后的签名重放被唯一键挡下
func (s *ClaimService) ProcessClaim(ctx context.Context, minerPubkey string, amount uint64, signature string, priorityFee uint32) error {
	if amount == 0 {
		return errors.New(errors.ErrClaimProcess, "领取金额不能为零", nil)
	}

	miner, err := s.miners.GetByPubkey(ctx, minerPubkey)
	if err != nil {
		return errors.New(errors.ErrClaimProcess, "查询矿工失败", err)
	}
	if miner == nil {
		return errors.New(errors.ErrClaimProcess, "矿工不存在", nil)
	}

	reward, err := s.rewards.GetByMinerPubkey(ctx, minerPubkey)
	if err != nil {
		return errors.New(errors.ErrClaimProcess, "查询奖励余额失败", err)
	}
	if reward == nil {
		return errors.New(errors.ErrClaimProcess, "奖励账户不存在", nil)
	}
	if amount > reward.Balance {
		return errors.New(errors.ErrClaimProcess, "领取金额超过可用余额", nil)
	}

	txn := &models.Txn{
		TxnType:     string(models.TxnTypeClaim),
		Signature:   signature,
		PriorityFee: priorityFee,
	}
	if err := s.claims.CreateWithSettlement(ctx, miner.ID, reward.PoolID, amount, txn); err != nil {
		if errors.Is(err, errors.ErrDuplicateRecord) {
			return errors.New(errors.ErrClaimProcess, "该笔交易已入账", err)
		}
		if errors.Is(err, errors.ErrRowNotAffected) {
			return errors.New(errors.ErrClaimProcess, "扣减奖励余额失败", err)
		}
		return errors.New(errors.ErrClaimProcess, "领取入账失败", err)
	}

	logger.WithFields(map[string]interface{}{
		"miner_id":  miner.ID,
		"amount":    amount,
		"signature": signature,
	}).Info("奖励领取入账完成")
	return nil
}

// ProcessStakeClaim 质押者领取质押奖励后入账
func (s *ClaimService) ProcessStakeClaim(ctx context.Context, stakerPubkey, mintPubkey string, amount uint64, signature string, priorityFee uint32) error {
	if amount == 0 {
		return errors.New(errors.ErrClaimProcess, "领取金额不能为零", nil)
	}

	pool, err := s.pools.GetByAuthority(ctx, s.poolCfg.AuthorityPubkey)
	if err != nil {
		return errors.New(errors.ErrClaimProcess, "查询矿池失败", err)
	}
	if pool == nil {
		return errors.New(errors.ErrClaimProcess, "矿池不存在", nil)
	}

	account, err := s.stakes.GetForStaker(ctx, pool.ID, stakerPubkey, mintPubkey)
	if err != nil {
		return errors.New(errors.ErrClaimProcess, "查询质押账户失败", err)
	}
	if account == nil {
		return errors.New(errors.ErrClaimProcess, "质押账户不存在", nil)
	}
	if amount > account.RewardsBalance {
		return errors.New(errors.ErrClaimProcess, "领取金额超过可用余额", nil)
	}

	txn := &models.Txn{
		TxnType:     string(models.TxnTypeClaim),
		Signature:   signature,
		PriorityFee: priorityFee,
	}
	if err := s.claims.CreateStakeSettlement(ctx, account.ID, pool.ID, amount, txn); err != nil {
		if errors.Is(err, errors.ErrDuplicateRecord) {
			return errors.New(errors.ErrClaimProcess, "该笔交易已入账", err)
		}
		if errors.Is(err, errors.ErrRowNotAffected) {
			return errors.New(errors.ErrClaimProcess, "扣减质押奖励失败", err)
		}
		return errors.New(errors.ErrClaimProcess, "领取入账失败", err)
	}

	logger.WithFields(map[string]interface{}{
		"staker":    stakerPubkey,
		"mint":      mintPubkey,
		"amount":    amount,
		"signature": signature,
	}).Info("质押奖励领取入账完成")
	return nil
}
