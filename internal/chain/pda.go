package chain

import (
	"github.com/gagliardetto/solana-go"
)

// 外部程序的地址派生种子，字节串必须与链上程序完全一致
var (
	seedProof            = []byte("proof")
	seedConfig           = []byte("config")
	seedBus              = []byte("bus")
	seedManagedProof     = []byte("managed-proof-account")
	seedDelegatedStake   = []byte("delegated-stake")
	seedDelegatedBoost   = []byte("delegated-boost")
	seedDelegatedBoostV2 = []byte("delegated-boost-v2")
	seedBoost            = []byte("boost")
	seedBoostStake       = []byte("stake")
)

// BusCount 奖励分发槽位数，挖矿时轮转使用
const BusCount = 8

// Programs 链上程序身份，地址派生都挂在它上面
type Programs struct {
	Mining     solana.PublicKey
	Delegation solana.PublicKey
	Boost      solana.PublicKey
}

// ProofAddress 挖矿程序下某个 authority 的 proof 账户地址
func (p Programs) ProofAddress(authority solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{seedProof, authority.Bytes()},
		p.Mining,
	)
	return addr, err
}

// ManagedProofAddress 矿工的托管挖矿账户地址
func (p Programs) ManagedProofAddress(miner solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{seedManagedProof, miner.Bytes()},
		p.Delegation,
	)
	return addr, err
}

// MinerProofAddress 托管账户对应的 proof 地址，即奖励计算的根
func (p Programs) MinerProofAddress(miner solana.PublicKey) (solana.PublicKey, error) {
	managed, err := p.ManagedProofAddress(miner)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return p.ProofAddress(managed)
}

// DelegatedStakeAddress 质押者对某矿工托管账户的委托地址
func (p Programs) DelegatedStakeAddress(staker, miner solana.PublicKey) (solana.PublicKey, error) {
	managed, err := p.ManagedProofAddress(miner)
	if err != nil {
		return solana.PublicKey{}, err
	}
	addr, _, err := solana.FindProgramAddress(
		[][]byte{seedDelegatedStake, staker.Bytes(), managed.Bytes()},
		p.Delegation,
	)
	return addr, err
}

// DelegatedBoostAddress 质押者针对某 boost mint 的委托地址
func (p Programs) DelegatedBoostAddress(staker, miner, mint solana.PublicKey) (solana.PublicKey, error) {
	managed, err := p.ManagedProofAddress(miner)
	if err != nil {
		return solana.PublicKey{}, err
	}
	addr, _, err := solana.FindProgramAddress(
		[][]byte{seedDelegatedBoost, staker.Bytes(), mint.Bytes(), managed.Bytes()},
		p.Delegation,
	)
	return addr, err
}

// DelegatedBoostV2Address v2 布局的委托地址
func (p Programs) DelegatedBoostV2Address(staker, miner, mint solana.PublicKey) (solana.PublicKey, error) {
	managed, err := p.ManagedProofAddress(miner)
	if err != nil {
		return solana.PublicKey{}, err
	}
	addr, _, err := solana.FindProgramAddress(
		[][]byte{seedDelegatedBoostV2, staker.Bytes(), mint.Bytes(), managed.Bytes()},
		p.Delegation,
	)
	return addr, err
}

// BoostAddress 某个 mint 的 boost 账户地址
func (p Programs) BoostAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{seedBoost, mint.Bytes()},
		p.Boost,
	)
	return addr, err
}

// BoostStakeAddress authority 在某 boost 下的质押账户地址
func (p Programs) BoostStakeAddress(authority, boost solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{seedBoostStake, authority.Bytes(), boost.Bytes()},
		p.Boost,
	)
	return addr, err
}

// ConfigAddress 挖矿程序全局配置账户地址
func (p Programs) ConfigAddress() (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{seedConfig},
		p.Mining,
	)
	return addr, err
}

// BusAddress 第 i 个奖励分发槽位的地址，i 取 0..BusCount-1
func (p Programs) BusAddress(i uint8) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{seedBus, {i}},
		p.Mining,
	)
	return addr, err
}
