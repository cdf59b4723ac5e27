package chain

import (
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	apperrors "github.com/Fazich/ore-hq-server/pkg/errors"
)

// TokenDecimals 奖励代币精度
const TokenDecimals = 11

// 链上账户的 8 字节判别标签，低位字节是账户类型编号
const (
	busDiscriminator            = 100
	configDiscriminator         = 101
	proofDiscriminator          = 102
	boostDiscriminator          = 100
	boostStakeDiscriminator     = 102
	delegatedBoostDiscriminator = 101
)

const discriminatorLen = 8

// 各账户的固定字节长度（含判别标签）
const (
	proofSize          = discriminatorLen + 32 + 8 + 32 + 32 + 8 + 8 + 32 + 8 + 8
	configSize         = discriminatorLen + 8 + 8 + 8 + 8
	busSize            = discriminatorLen + 8 + 8 + 8 + 8
	boostSize          = discriminatorLen + 32 + 8 + 8 + 8
	boostStakeSize     = discriminatorLen + 32 + 8 + 32 + 8
	delegatedBoostSize = discriminatorLen + 32 + 32 + 8
)

// Proof 矿工挖矿进度账户
type Proof struct {
	Authority    solana.PublicKey
	Balance      uint64
	Challenge    [32]byte
	LastHash     [32]byte
	LastHashAt   int64
	LastStakeAt  int64
	Miner        solana.PublicKey
	TotalHashes  uint64
	TotalRewards uint64
}

// Config 挖矿程序全局配置账户
type Config struct {
	BaseRewardRate uint64
	LastResetAt    int64
	MinDifficulty  uint64
	TopBalance     uint64
}

// Bus 奖励分发槽位账户
type Bus struct {
	ID                 uint64
	Rewards            uint64
	TheoreticalRewards uint64
	TopBalance         uint64
}

// Boost 某个 mint 的全局加成账户
type Boost struct {
	Mint       solana.PublicKey
	ExpiresAt  int64
	Multiplier uint64
	TotalStake uint64
}

// BoostStake 矿池在某 boost 下的质押账户
type BoostStake struct {
	Authority     solana.PublicKey
	Balance       uint64
	Boost         solana.PublicKey
	LastDepositAt int64
}

// DelegatedBoost 质押者对矿池的单笔委托账户
type DelegatedBoost struct {
	Authority solana.PublicKey
	Mint      solana.PublicKey
	Amount    uint64
}

func decodeError(kind string, err error) error {
	return apperrors.New(apperrors.ErrAccountDecode,
		fmt.Sprintf("failed to decode %s account", kind), err)
}

// checkLayout 校验账户长度与判别标签，布局不符一律当解码失败处理
func checkLayout(data []byte, kind string, want uint64, size int) ([]byte, error) {
	if len(data) != size {
		return nil, decodeError(kind, fmt.Errorf("unexpected account size %d, want %d", len(data), size))
	}
	got := binary.LittleEndian.Uint64(data[:discriminatorLen])
	if got != want {
		return nil, decodeError(kind, fmt.Errorf("unexpected discriminator %d, want %d", got, want))
	}
	return data[discriminatorLen:], nil
}

func DecodeProof(data []byte) (*Proof, error) {
	body, err := checkLayout(data, "proof", proofDiscriminator, proofSize)
	if err != nil {
		return nil, err
	}
	var proof Proof
	if err := bin.NewBinDecoder(body).Decode(&proof); err != nil {
		return nil, decodeError("proof", err)
	}
	return &proof, nil
}

func DecodeConfig(data []byte) (*Config, error) {
	body, err := checkLayout(data, "config", configDiscriminator, configSize)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := bin.NewBinDecoder(body).Decode(&cfg); err != nil {
		return nil, decodeError("config", err)
	}
	return &cfg, nil
}

func DecodeBus(data []byte) (*Bus, error) {
	body, err := checkLayout(data, "bus", busDiscriminator, busSize)
	if err != nil {
		return nil, err
	}
	var bus Bus
	if err := bin.NewBinDecoder(body).Decode(&bus); err != nil {
		return nil, decodeError("bus", err)
	}
	return &bus, nil
}

func DecodeBoost(data []byte) (*Boost, error) {
	body, err := checkLayout(data, "boost", boostDiscriminator, boostSize)
	if err != nil {
		return nil, err
	}
	var boost Boost
	if err := bin.NewBinDecoder(body).Decode(&boost); err != nil {
		return nil, decodeError("boost", err)
	}
	return &boost, nil
}

func DecodeBoostStake(data []byte) (*BoostStake, error) {
	body, err := checkLayout(data, "stake", boostStakeDiscriminator, boostStakeSize)
	if err != nil {
		return nil, err
	}
	var stake BoostStake
	if err := bin.NewBinDecoder(body).Decode(&stake); err != nil {
		return nil, decodeError("stake", err)
	}
	return &stake, nil
}

func DecodeDelegatedBoost(data []byte) (*DelegatedBoost, error) {
	body, err := checkLayout(data, "delegated boost", delegatedBoostDiscriminator, delegatedBoostSize)
	if err != nil {
		return nil, err
	}
	var db DelegatedBoost
	if err := bin.NewBinDecoder(body).Decode(&db); err != nil {
		return nil, decodeError("delegated boost", err)
	}
	return &db, nil
}
