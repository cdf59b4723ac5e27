package cache

import (
	"context"
	"time"

	"github.com/Fazich/ore-hq-server/internal/chain"
	"github.com/Fazich/ore-hq-server/internal/config"
	"github.com/Fazich/ore-hq-server/internal/models"
	"github.com/Fazich/ore-hq-server/internal/repository"
	"github.com/Fazich/ore-hq-server/pkg/logger"
)

// System 进程内全部托管缓存
// 每个缓存由一个后台协程独立刷新，读方只通过 Snapshot 访问
type System struct {
	LatestBlockhash  *Entry[string]
	BoostMultipliers *Entry[[]models.BoostMultiplierData]
	LastSubmissions  *Entry[[]models.Submission]
	Challenges       *Entry[[]models.Challenge]
}

// Start 构建缓存并启动各自的刷新循环
// 刷新任务之间相互独立，启动即运行到进程退出
func Start(
	ctx context.Context,
	cfg *config.Config,
	sync *chain.Synchronizer,
	submissionRepo *repository.SubmissionRepository,
	challengeRepo *repository.ChallengeRepository,
) *System {
	system := &System{
		LatestBlockhash:  NewEntry(""),
		BoostMultipliers: NewEntry([]models.BoostMultiplierData{}),
		LastSubmissions:  NewEntry([]models.Submission{}),
		Challenges:       NewEntry([]models.Challenge{}),
	}

	retryDelay := time.Duration(cfg.Cache.RetryDelay) * time.Second

	go NewRefresher("latest_blockhash", system.LatestBlockhash,
		time.Duration(cfg.Cache.BlockhashInterval)*time.Second, retryDelay,
		func(ctx context.Context) (string, error) {
			return sync.FetchLatestBlockhash(ctx)
		}).Run(ctx)

	if !cfg.Pool.StatsEnabled {
		logger.Info("Stats caches disabled")
		return system
	}

	go NewRefresher("boost_multipliers", system.BoostMultipliers,
		time.Duration(cfg.Cache.BoostMultiplierInterval)*time.Second, retryDelay,
		func(ctx context.Context) ([]models.BoostMultiplierData, error) {
			return sync.FetchBoostMultipliers(ctx)
		}).Run(ctx)

	go NewRefresher("last_challenge_submissions", system.LastSubmissions,
		time.Duration(cfg.Cache.SubmissionsInterval)*time.Second, retryDelay,
		func(ctx context.Context) ([]models.Submission, error) {
			return submissionRepo.ListForLastFinalizedChallenge(ctx)
		}).Run(ctx)

	go NewRefresher("challenges", system.Challenges,
		time.Duration(cfg.Cache.ChallengesInterval)*time.Second, retryDelay,
		func(ctx context.Context) ([]models.Challenge, error) {
			return challengeRepo.ListRecent(ctx, 0)
		}).Run(ctx)

	return system
}
