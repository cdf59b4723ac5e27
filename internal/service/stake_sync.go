package service

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/Fazich/ore-hq-server/internal/chain"
	"github.com/Fazich/ore-hq-server/internal/models"
	"github.com/Fazich/ore-hq-server/internal/repository"
	"github.com/Fazich/ore-hq-server/pkg/errors"
	"github.com/Fazich/ore-hq-server/pkg/logger"
)

// StakeSyncService 把链上委托账户的真实质押量刷回账本
// 链上值直接覆盖本地 staked_balance，链是唯一事实来源
type StakeSyncService struct {
	sync   *chain.Synchronizer
	stakes *repository.StakeAccountRepository
}

func NewStakeSyncService(sync *chain.Synchronizer, stakes *repository.StakeAccountRepository) *StakeSyncService {
	return &StakeSyncService{
		sync:   sync,
		stakes: stakes,
	}
}

// RegisterStakeAccounts 登记新观察到的质押者
// 地址按 (质押者, mint) 派生 v2 委托地址，已存在的行跳过
func (s *StakeSyncService) RegisterStakeAccounts(ctx context.Context, poolID int32, miner solana.PublicKey, stakers []solana.PublicKey, mint solana.PublicKey) error {
	if len(stakers) == 0 {
		return nil
	}

	accounts := make([]models.StakeAccount, 0, len(stakers))
	for _, staker := range stakers {
		pda, err := s.sync.Programs().DelegatedBoostV2Address(staker, miner, mint)
		if err != nil {
			return errors.New(errors.ErrRewardUpdate, "派生委托地址失败", err)
		}
		accounts = append(accounts, models.StakeAccount{
			PoolID:       poolID,
			MintPubkey:   mint.String(),
			StakerPubkey: staker.String(),
			StakePda:     pda.String(),
		})
	}

	err := s.stakes.CreateBatch(ctx, accounts)
	if err != nil && !errors.Is(err, errors.ErrRowNotAffected) {
		return errors.New(errors.ErrRewardUpdate, "登记质押账户失败", err)
	}
	return nil
}

// SyncStakedBalances 逐页拉取矿池质押账户并用链上余额覆盖
// 单个账户地址坏或链上数据坏只跳过该账户，不中断整页
func (s *StakeSyncService) SyncStakedBalances(ctx context.Context, poolID int32) error {
	var lastID int32
	var synced, skipped int

	for {
		page, err := s.stakes.ListAfter(ctx, poolID, lastID)
		if err != nil {
			return errors.New(errors.ErrRewardUpdate, "扫描质押账户失败", err)
		}
		if len(page) == 0 {
			break
		}

		addrs := make([]solana.PublicKey, 0, len(page))
		rows := make([]models.StakeAccount, 0, len(page))
		for _, account := range page {
			addr, err := solana.PublicKeyFromBase58(account.StakePda)
			if err != nil {
				logger.WithFields(map[string]interface{}{
					"stake_pda": account.StakePda,
				}).Warn("质押账户地址非法，跳过: ", err)
				skipped++
				continue
			}
			addrs = append(addrs, addr)
			rows = append(rows, account)
		}

		if len(addrs) > 0 {
			outcomes, err := s.sync.FetchDelegatedBoosts(ctx, addrs)
			if err != nil {
				return errors.New(errors.ErrRewardUpdate, "拉取链上委托账户失败", err)
			}

			updates := make([]models.StakeBalanceUpdate, 0, len(outcomes))
			for i, outcome := range outcomes {
				if outcome.Err != nil {
					logger.WithFields(map[string]interface{}{
						"stake_pda": rows[i].StakePda,
					}).Warn("委托账户解码失败，跳过: ", outcome.Err)
					skipped++
					continue
				}
				balance := uint64(0)
				if outcome.Value != nil {
					balance = outcome.Value.Amount
				}
				// 链上账户已关闭视为零质押
				updates = append(updates, models.StakeBalanceUpdate{
					StakePda:      rows[i].StakePda,
					StakedBalance: balance,
				})
			}

			if len(updates) > 0 {
				if err := s.stakes.SetStakedBalances(ctx, updates); err != nil {
					return errors.New(errors.ErrRewardUpdate, "覆盖质押余额失败", err)
				}
				synced += len(updates)
			}
		}

		if len(page) < 500 {
			break
		}
		lastID = page[len(page)-1].ID
	}

	logger.WithFields(map[string]interface{}{
		"pool_id": poolID,
		"synced":  synced,
		"skipped": skipped,
	}).Info("质押余额同步完成")
	return nil
}
