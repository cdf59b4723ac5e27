package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Fazich/ore-hq-server/internal/config"
	"github.com/Fazich/ore-hq-server/internal/repository"
	"github.com/Fazich/ore-hq-server/internal/service"
	"github.com/Fazich/ore-hq-server/pkg/logger"
)

// 提交记录只为最近几轮的统计服务，超过七天直接清掉
const submissionRetention = 7 * 24 * time.Hour

type MaintenanceScheduler struct {
	cron         *cron.Cron
	poolCfg      *config.PoolConfig
	pools        *repository.PoolRepository
	submissions  *repository.SubmissionRepository
	stakeSyncSvc *service.StakeSyncService
}

func NewMaintenanceScheduler(
	poolCfg *config.PoolConfig,
	pools *repository.PoolRepository,
	submissions *repository.SubmissionRepository,
	stakeSyncSvc *service.StakeSyncService,
) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		cron:         cron.New(cron.WithSeconds()),
		poolCfg:      poolCfg,
		pools:        pools,
		submissions:  submissions,
		stakeSyncSvc: stakeSyncSvc,
	}
}

func (s *MaintenanceScheduler) Start() error {
	// 每天凌晨清理过期提交
	if _, err := s.cron.AddFunc("0 5 0 * * *", s.pruneSubmissions); err != nil {
		return err
	}
	// 每五分钟把链上质押量刷回账本
	if _, err := s.cron.AddFunc("0 */5 * * * *", s.syncStakedBalances); err != nil {
		return err
	}

	s.cron.Start()
	logger.Info("Maintenance scheduler started")
	return nil
}

func (s *MaintenanceScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Maintenance scheduler stopped")
}

func (s *MaintenanceScheduler) pruneSubmissions() {
	ctx := context.Background()
	cutoff := time.Now().Add(-submissionRetention)

	deleted, err := s.submissions.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		logger.Error("Failed to prune submissions:", err)
		return
	}

	logger.WithFields(map[string]interface{}{
		"cutoff":  cutoff,
		"deleted": deleted,
	}).Info("Submission pruning completed")
}

func (s *MaintenanceScheduler) syncStakedBalances() {
	ctx := context.Background()

	pool, err := s.pools.GetByAuthority(ctx, s.poolCfg.AuthorityPubkey)
	if err != nil {
		logger.Error("Failed to load pool for stake sync:", err)
		return
	}
	if pool == nil {
		logger.Error("Pool not found for stake sync:", s.poolCfg.AuthorityPubkey)
		return
	}

	if err := s.stakeSyncSvc.SyncStakedBalances(ctx, pool.ID); err != nil {
		logger.Error("Failed to sync staked balances:", err)
	}
}
