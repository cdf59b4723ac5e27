package chain

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/Fazich/ore-hq-server/internal/models"
	apperrors "github.com/Fazich/ore-hq-server/pkg/errors"
)

// getMultipleAccounts 单次请求的地址数上限
const fetchChunkSize = 100

// Outcome 批量读取中单个账户的独立结果
// 三种情况互斥：解码成功、账户不存在、数据解码失败
type Outcome[T any] struct {
	Value  *T
	Absent bool
	Err    error
}

func decoded[T any](v *T) Outcome[T]     { return Outcome[T]{Value: v} }
func absent[T any]() Outcome[T]          { return Outcome[T]{Absent: true} }
func failed[T any](err error) Outcome[T] { return Outcome[T]{Err: err} }

// PoolChainState 一次批量读取得到的矿池链上状态
type PoolChainState struct {
	Proof  Outcome[Proof]
	Config Outcome[Config]
	Busses [BusCount]Outcome[Bus]
}

// Synchronizer 对链 RPC 发起批量多账户读取并解码
// 每个账户的结果相互独立，单个账户坏数据不影响其它账户
type Synchronizer struct {
	client     RPCClient
	programs   Programs
	authority  solana.PublicKey
	boostMints []solana.PublicKey
}

func NewSynchronizer(client RPCClient, programs Programs, authority solana.PublicKey, boostMints []solana.PublicKey) *Synchronizer {
	return &Synchronizer{
		client:     client,
		programs:   programs,
		authority:  authority,
		boostMints: boostMints,
	}
}

func (s *Synchronizer) Programs() Programs {
	return s.programs
}

// fetchRaw 一次往返拉取一组账户的原始数据
// 返回切片与地址一一对应，不存在的账户对应 nil
func (s *Synchronizer) fetchRaw(ctx context.Context, addrs []solana.PublicKey) ([][]byte, error) {
	datas := make([][]byte, 0, len(addrs))
	for start := 0; start < len(addrs); start += fetchChunkSize {
		end := start + fetchChunkSize
		if end > len(addrs) {
			end = len(addrs)
		}

		result, err := s.client.GetMultipleAccounts(ctx, addrs[start:end]...)
		if err != nil {
			return nil, apperrors.New(apperrors.ErrChainFetch, "get multiple accounts failed", err)
		}

		for _, account := range result.Value {
			if account == nil {
				datas = append(datas, nil)
				continue
			}
			datas = append(datas, account.Data.GetBinary())
		}
	}
	return datas, nil
}

// FetchPoolState 一次批量读取 proof、config 和全部 bus 账户
func (s *Synchronizer) FetchPoolState(ctx context.Context) (*PoolChainState, error) {
	proofAddr, err := s.programs.MinerProofAddress(s.authority)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrChainFetch, "failed to derive proof address", err)
	}
	configAddr, err := s.programs.ConfigAddress()
	if err != nil {
		return nil, apperrors.New(apperrors.ErrChainFetch, "failed to derive config address", err)
	}

	addrs := []solana.PublicKey{proofAddr, configAddr}
	for i := uint8(0); i < BusCount; i++ {
		busAddr, err := s.programs.BusAddress(i)
		if err != nil {
			return nil, apperrors.New(apperrors.ErrChainFetch, "failed to derive bus address", err)
		}
		addrs = append(addrs, busAddr)
	}

	datas, err := s.fetchRaw(ctx, addrs)
	if err != nil {
		return nil, err
	}

	state := &PoolChainState{
		Proof:  decodeOutcome(datas[0], DecodeProof),
		Config: decodeOutcome(datas[1], DecodeConfig),
	}
	for i := 0; i < BusCount; i++ {
		state.Busses[i] = decodeOutcome(datas[2+i], DecodeBus)
	}
	return state, nil
}

func decodeOutcome[T any](data []byte, decode func([]byte) (*T, error)) Outcome[T] {
	if data == nil {
		return absent[T]()
	}
	v, err := decode(data)
	if err != nil {
		return failed[T](err)
	}
	return decoded(v)
}

// FetchBoostMultipliers 拉取各 boost mint 的矿池质押量与加成系数
// 推导缓存视图，质押量按代币精度换算成十进制
func (s *Synchronizer) FetchBoostMultipliers(ctx context.Context) ([]models.BoostMultiplierData, error) {
	managedProof, err := s.programs.ManagedProofAddress(s.authority)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrChainFetch, "failed to derive managed proof address", err)
	}

	var stakeAddrs, boostAddrs []solana.PublicKey
	for _, mint := range s.boostMints {
		boostAddr, err := s.programs.BoostAddress(mint)
		if err != nil {
			return nil, apperrors.New(apperrors.ErrChainFetch, "failed to derive boost address", err)
		}
		stakeAddr, err := s.programs.BoostStakeAddress(managedProof, boostAddr)
		if err != nil {
			return nil, apperrors.New(apperrors.ErrChainFetch, "failed to derive boost stake address", err)
		}
		boostAddrs = append(boostAddrs, boostAddr)
		stakeAddrs = append(stakeAddrs, stakeAddr)
	}

	datas, err := s.fetchRaw(ctx, append(stakeAddrs, boostAddrs...))
	if err != nil {
		return nil, err
	}

	decimals := 1.0
	for i := 0; i < TokenDecimals; i++ {
		decimals *= 10
	}

	multipliers := make([]models.BoostMultiplierData, 0, len(s.boostMints))
	for i := range s.boostMints {
		stake := decodeOutcome(datas[i], DecodeBoostStake)
		boost := decodeOutcome(datas[len(s.boostMints)+i], DecodeBoost)
		if stake.Value == nil || boost.Value == nil {
			continue
		}
		multipliers = append(multipliers, models.BoostMultiplierData{
			BoostMint:         boost.Value.Mint.String(),
			StakedBalance:     float64(stake.Value.Balance) / decimals,
			TotalStakeBalance: float64(boost.Value.TotalStake) / decimals,
			Multiplier:        boost.Value.Multiplier,
		})
	}
	return multipliers, nil
}

// FetchDelegatedBoosts 批量拉取委托账户，结果与地址一一对应
func (s *Synchronizer) FetchDelegatedBoosts(ctx context.Context, addrs []solana.PublicKey) ([]Outcome[DelegatedBoost], error) {
	datas, err := s.fetchRaw(ctx, addrs)
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome[DelegatedBoost], len(datas))
	for i, data := range datas {
		outcomes[i] = decodeOutcome(data, DecodeDelegatedBoost)
	}
	return outcomes, nil
}

// FetchLatestBlockhash 以 finalized 确认度取最新区块哈希
// 序列化成 32 字节哈希加小端块高，再 base64 编码供下游透传
func (s *Synchronizer) FetchLatestBlockhash(ctx context.Context) (string, error) {
	result, err := s.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", apperrors.New(apperrors.ErrChainFetch, "get latest blockhash failed", err)
	}

	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteBytes(result.Value.Blockhash[:], false); err != nil {
		return "", apperrors.New(apperrors.ErrChainFetch, "failed to serialize blockhash", err)
	}
	if err := enc.WriteUint64(result.Value.LastValidBlockHeight, binary.LittleEndian); err != nil {
		return "", apperrors.New(apperrors.ErrChainFetch, "failed to serialize block height", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
