package service

import (
	"context"
	"math/bits"
	"sync"

	"github.com/Fazich/ore-hq-server/internal/config"
	"github.com/Fazich/ore-hq-server/internal/models"
	"github.com/Fazich/ore-hq-server/internal/repository"
	"github.com/Fazich/ore-hq-server/pkg/errors"
	"github.com/Fazich/ore-hq-server/pkg/logger"
)

// PipelineState 结算流水线所处阶段
type PipelineState int32

const (
	StateIdle PipelineState = iota
	StateComputingDeltas
	StateApplyingBatch
	StateCommitted
	StateFailed
)

func (s PipelineState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateComputingDeltas:
		return "computing_deltas"
	case StateApplyingBatch:
		return "applying_batch"
	case StateCommitted:
		return "committed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RoundResult 外部驱动传入的一轮挖矿结果
type RoundResult struct {
	Challenge   []byte
	WinnerNonce uint64
	TotalReward uint64
}

// AccountingPipeline 一轮结束后的完整结算流程
// 状态机：Idle → ComputingDeltas → ApplyingBatch → Committed，任一步失败进 Failed。
// 失败的周期不在内部重试：批量更新的提交状态不明时重放有双倍入账风险，
// 由外部驱动核对账本后决定是否整轮重来
type AccountingPipeline struct {
	mu    sync.Mutex
	state PipelineState

	poolCfg     *config.PoolConfig
	pools       *repository.PoolRepository
	challenges  *repository.ChallengeRepository
	submissions *repository.SubmissionRepository
	rewards     *repository.RewardRepository
	stakes      *repository.StakeAccountRepository
}

func NewAccountingPipeline(
	poolCfg *config.PoolConfig,
	pools *repository.PoolRepository,
	challenges *repository.ChallengeRepository,
	submissions *repository.SubmissionRepository,
	rewards *repository.RewardRepository,
	stakes *repository.StakeAccountRepository,
) *AccountingPipeline {
	return &AccountingPipeline{
		state:       StateIdle,
		poolCfg:     poolCfg,
		pools:       pools,
		challenges:  challenges,
		submissions: submissions,
		rewards:     rewards,
		stakes:      stakes,
	}
}

func (p *AccountingPipeline) State() PipelineState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *AccountingPipeline) transition(state PipelineState) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
}

func (p *AccountingPipeline) fail(message string, err error) error {
	p.transition(StateFailed)
	return errors.New(errors.ErrAccounting, message, err)
}

// ProcessRound 执行一个结算周期
// 同一轮结果只能提交一次，重复提交会重复入账
func (p *AccountingPipeline) ProcessRound(ctx context.Context, round RoundResult) error {
	p.transition(StateComputingDeltas)

	challenge, err := p.challenges.GetByChallenge(ctx, round.Challenge)
	if err != nil {
		return p.fail("查询挑战失败", err)
	}
	if challenge == nil {
		return p.fail("挑战不存在", nil)
	}

	subs, err := p.loadSubmissions(ctx, challenge.ID)
	if err != nil {
		return p.fail("拉取提交记录失败", err)
	}

	minerDeltas, stakeDeltas, err := p.computeDeltas(ctx, challenge.PoolID, subs, round)
	if err != nil {
		return p.fail("计算奖励增量失败", err)
	}

	if len(minerDeltas) == 0 {
		logger.WithFields(map[string]interface{}{
			"challenge_id": challenge.ID,
		}).Info("本轮没有有效提交，跳过结算")
		p.transition(StateIdle)
		return nil
	}

	p.transition(StateApplyingBatch)

	if err := p.rewards.AddBatch(ctx, minerDeltas); err != nil {
		return p.fail("批量更新矿工奖励失败", err)
	}
	if len(stakeDeltas) > 0 {
		if err := p.stakes.AddRewardsBatch(ctx, stakeDeltas); err != nil {
			return p.fail("批量更新质押奖励失败", err)
		}
	}
	if err := p.pools.IncrementTotalRewards(ctx, p.poolCfg.AuthorityPubkey, round.TotalReward); err != nil {
		return p.fail("更新矿池累计奖励失败", err)
	}

	submissionID, err := p.submissions.GetIDByNonce(ctx, round.WinnerNonce)
	if err != nil {
		return p.fail("查询获胜提交失败", err)
	}
	if err := p.challenges.Finalize(ctx, round.Challenge, submissionID, round.TotalReward); err != nil {
		return p.fail("写入挑战结算失败", err)
	}

	p.transition(StateCommitted)
	logger.WithFields(map[string]interface{}{
		"challenge_id": challenge.ID,
		"miners":       len(minerDeltas),
		"stakers":      len(stakeDeltas),
		"total_reward": round.TotalReward,
	}).Info("结算周期完成")
	return nil
}

// StartNewRound 新一轮开始时登记挑战
func (p *AccountingPipeline) StartNewRound(ctx context.Context, challenge []byte) error {
	pool, err := p.pools.GetByAuthority(ctx, p.poolCfg.AuthorityPubkey)
	if err != nil {
		return errors.New(errors.ErrAccounting, "查询矿池失败", err)
	}
	if pool == nil {
		return errors.New(errors.ErrAccounting, "矿池不存在", nil)
	}
	if err := p.challenges.Create(ctx, pool.ID, challenge); err != nil {
		return errors.New(errors.ErrAccounting, "登记新挑战失败", err)
	}
	p.transition(StateIdle)
	return nil
}

func (p *AccountingPipeline) loadSubmissions(ctx context.Context, challengeID int32) ([]models.Submission, error) {
	var all []models.Submission
	var lastID int64
	for {
		page, err := p.submissions.ListForChallenge(ctx, challengeID, lastID)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < 500 {
			return all, nil
		}
		lastID = page[len(page)-1].ID
	}
}

// computeDeltas 把本轮总奖励拆成矿工与质押者两份增量
// 矿工份按最优难度的指数权重分摊，质押份按质押量分摊；
// 整数除法的零头并入获胜矿工，保证增量之和等于总奖励
func (p *AccountingPipeline) computeDeltas(ctx context.Context, poolID int32, subs []models.Submission, round RoundResult) ([]models.RewardDelta, []models.StakeRewardDelta, error) {
	if len(subs) == 0 {
		return nil, nil, nil
	}

	bestDifficulty := make(map[int32]int8)
	winnerMinerID := int32(0)
	winnerSubmissionID := int64(0)
	for _, sub := range subs {
		if d, ok := bestDifficulty[sub.MinerID]; !ok || sub.Difficulty > d {
			bestDifficulty[sub.MinerID] = sub.Difficulty
		}
		// 获胜 nonce 可能出现多次，取 id 最大的一条
		if sub.Nonce == round.WinnerNonce && sub.ID >= winnerSubmissionID {
			winnerSubmissionID = sub.ID
			winnerMinerID = sub.MinerID
		}
	}

	stakeDeltas, stakerPortion, err := p.computeStakeDeltas(ctx, poolID, round.TotalReward)
	if err != nil {
		return nil, nil, err
	}
	minerPortion := round.TotalReward - stakerPortion

	minDifficulty := p.poolCfg.MinimumDifficulty
	var totalWeight uint64
	weights := make(map[int32]uint64, len(bestDifficulty))
	for minerID, difficulty := range bestDifficulty {
		weights[minerID] = difficultyWeight(difficulty, minDifficulty)
		totalWeight += weights[minerID]
	}
	if totalWeight == 0 {
		return nil, nil, nil
	}

	deltas := make([]models.RewardDelta, 0, len(weights))
	var distributed uint64
	for minerID, weight := range weights {
		amount := mulDiv(minerPortion, weight, totalWeight)
		distributed += amount
		deltas = append(deltas, models.RewardDelta{MinerID: minerID, Amount: amount})
	}

	// 零头并入获胜矿工，没有匹配的获胜提交就并入第一个矿工
	remainder := minerPortion - distributed
	if remainder > 0 {
		applied := false
		for i := range deltas {
			if deltas[i].MinerID == winnerMinerID {
				deltas[i].Amount += remainder
				applied = true
				break
			}
		}
		if !applied {
			deltas[0].Amount += remainder
		}
	}

	return deltas, stakeDeltas, nil
}

// computeStakeDeltas 质押者按质押量分摊佣金份额
// 没有质押账户时佣金份额归还矿工
func (p *AccountingPipeline) computeStakeDeltas(ctx context.Context, poolID int32, totalReward uint64) ([]models.StakeRewardDelta, uint64, error) {
	bps := p.poolCfg.StakerCommissionBps
	if bps > 10000 {
		bps = 10000
	}
	portion := mulDiv(totalReward, bps, 10000)
	if portion == 0 {
		return nil, 0, nil
	}

	var accounts []models.StakeAccount
	var lastID int32
	for {
		page, err := p.stakes.ListAfter(ctx, poolID, lastID)
		if err != nil {
			return nil, 0, err
		}
		for _, account := range page {
			if account.StakedBalance > 0 {
				accounts = append(accounts, account)
			}
		}
		if len(page) < 500 {
			break
		}
		lastID = page[len(page)-1].ID
	}

	if len(accounts) == 0 {
		return nil, 0, nil
	}

	var totalStaked uint64
	for _, account := range accounts {
		totalStaked += account.StakedBalance
	}

	deltas := make([]models.StakeRewardDelta, 0, len(accounts))
	var distributed uint64
	for _, account := range accounts {
		amount := mulDiv(portion, account.StakedBalance, totalStaked)
		if amount == 0 {
			continue
		}
		distributed += amount
		deltas = append(deltas, models.StakeRewardDelta{StakePda: account.StakePda, Amount: amount})
	}
	if len(deltas) == 0 {
		return nil, 0, nil
	}

	// 分摊后的零头留给矿工份额
	return deltas, distributed, nil
}

// difficultyWeight 提交难度的指数权重，超出最低难度一位权重翻一倍
func difficultyWeight(difficulty int8, minimum uint32) uint64 {
	if difficulty < 0 || uint32(difficulty) <= minimum {
		return 1
	}
	shift := uint32(difficulty) - minimum
	if shift > 63 {
		shift = 63
	}
	return uint64(1) << shift
}

// mulDiv 计算 a*b/den，中间积走 128 位避免溢出；要求 b <= den
func mulDiv(a, b, den uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	quot, _ := bits.Div64(hi, lo, den)
	return quot
}
