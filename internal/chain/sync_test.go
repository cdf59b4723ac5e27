package chain

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRPCClient 按地址返回预置账户数据，nil 表示账户不存在
type fakeRPCClient struct {
	accounts    map[solana.PublicKey][]byte
	blockhash   solana.Hash
	blockHeight uint64
	chunkSizes  []int
}

func (c *fakeRPCClient) GetMultipleAccounts(ctx context.Context, addrs ...solana.PublicKey) (*rpc.GetMultipleAccountsResult, error) {
	c.chunkSizes = append(c.chunkSizes, len(addrs))

	result := &rpc.GetMultipleAccountsResult{}
	for _, addr := range addrs {
		data, ok := c.accounts[addr]
		if !ok || data == nil {
			result.Value = append(result.Value, nil)
			continue
		}
		result.Value = append(result.Value, &rpc.Account{Data: accountData(data)})
	}
	return result, nil
}

func (c *fakeRPCClient) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	if commitment != rpc.CommitmentFinalized {
		return nil, fmt.Errorf("unexpected commitment %s", commitment)
	}
	return &rpc.GetLatestBlockhashResult{
		Value: &rpc.LatestBlockhashResult{
			Blockhash:            c.blockhash,
			LastValidBlockHeight: c.blockHeight,
		},
	}, nil
}

func accountData(data []byte) *rpc.DataBytesOrJSON {
	raw := fmt.Sprintf(`["%s","base64"]`, base64.StdEncoding.EncodeToString(data))
	var d rpc.DataBytesOrJSON
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		panic(err)
	}
	return &d
}

func TestFetchLatestBlockhashEncoding(t *testing.T) {
	var hash solana.Hash
	for i := range hash {
		hash[i] = byte(i)
	}
	client := &fakeRPCClient{blockhash: hash, blockHeight: 987654321}
	sync := NewSynchronizer(client, testPrograms(), solana.NewWallet().PublicKey(), nil)

	encoded, err := sync.FetchLatestBlockhash(context.Background())
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	require.Len(t, raw, 40)
	assert.Equal(t, hash[:], raw[:32])
	assert.Equal(t, uint64(987654321), binary.LittleEndian.Uint64(raw[32:]))
}

func TestFetchPoolStateOutcomesIndependent(t *testing.T) {
	programs := testPrograms()
	authority := solana.NewWallet().PublicKey()

	proofAddr, err := programs.MinerProofAddress(authority)
	require.NoError(t, err)
	configAddr, err := programs.ConfigAddress()
	require.NoError(t, err)
	bus0, err := programs.BusAddress(0)
	require.NoError(t, err)

	client := &fakeRPCClient{accounts: map[solana.PublicKey][]byte{
		// proof 账户存在但数据坏掉，config 正常，bus0 正常，其余 bus 不存在
		proofAddr:  {1, 2, 3},
		configAddr: newRawAccount(configDiscriminator).u64(1000).i64(1).u64(18).u64(0).data,
		bus0:       newRawAccount(busDiscriminator).u64(0).u64(10).u64(20).u64(30).data,
	}}
	sync := NewSynchronizer(client, programs, authority, nil)

	state, err := sync.FetchPoolState(context.Background())
	require.NoError(t, err)

	assert.Error(t, state.Proof.Err)
	assert.Nil(t, state.Proof.Value)

	require.NotNil(t, state.Config.Value)
	assert.Equal(t, uint64(1000), state.Config.Value.BaseRewardRate)

	require.NotNil(t, state.Busses[0].Value)
	assert.Equal(t, uint64(10), state.Busses[0].Value.Rewards)
	for i := 1; i < BusCount; i++ {
		assert.True(t, state.Busses[i].Absent)
	}
}

func TestFetchRawChunksLargeBatches(t *testing.T) {
	client := &fakeRPCClient{}
	sync := NewSynchronizer(client, testPrograms(), solana.NewWallet().PublicKey(), nil)

	addrs := make([]solana.PublicKey, 250)
	for i := range addrs {
		addrs[i] = solana.NewWallet().PublicKey()
	}

	outcomes, err := sync.FetchDelegatedBoosts(context.Background(), addrs)
	require.NoError(t, err)
	require.Len(t, outcomes, 250)
	for _, outcome := range outcomes {
		assert.True(t, outcome.Absent)
	}
	assert.Equal(t, []int{100, 100, 50}, client.chunkSizes)
}

func TestFetchBoostMultipliers(t *testing.T) {
	programs := testPrograms()
	authority := solana.NewWallet().PublicKey()
	mint1 := solana.NewWallet().PublicKey()
	mint2 := solana.NewWallet().PublicKey()

	managedProof, err := programs.ManagedProofAddress(authority)
	require.NoError(t, err)

	boost1, err := programs.BoostAddress(mint1)
	require.NoError(t, err)
	stake1, err := programs.BoostStakeAddress(managedProof, boost1)
	require.NoError(t, err)
	boost2, err := programs.BoostAddress(mint2)
	require.NoError(t, err)

	client := &fakeRPCClient{accounts: map[solana.PublicKey][]byte{
		stake1: newRawAccount(boostStakeDiscriminator).
			pubkey(managedProof).u64(500_000_000_000).pubkey(boost1).i64(0).data,
		boost1: newRawAccount(boostDiscriminator).
			pubkey(mint1).i64(0).u64(2).u64(100_000_000_000).data,
		// mint2 只有 boost 账户没有质押账户，整对跳过
		boost2: newRawAccount(boostDiscriminator).
			pubkey(mint2).i64(0).u64(3).u64(1).data,
	}}
	sync := NewSynchronizer(client, programs, authority, []solana.PublicKey{mint1, mint2})

	multipliers, err := sync.FetchBoostMultipliers(context.Background())
	require.NoError(t, err)
	require.Len(t, multipliers, 1)

	assert.Equal(t, mint1.String(), multipliers[0].BoostMint)
	assert.Equal(t, 5.0, multipliers[0].StakedBalance)
	assert.Equal(t, 1.0, multipliers[0].TotalStakeBalance)
	assert.Equal(t, uint64(2), multipliers[0].Multiplier)
}

func TestFetchDelegatedBoosts(t *testing.T) {
	staker := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	addr := solana.NewWallet().PublicKey()

	client := &fakeRPCClient{accounts: map[solana.PublicKey][]byte{
		addr: newRawAccount(delegatedBoostDiscriminator).pubkey(staker).pubkey(mint).u64(4444).data,
	}}
	sync := NewSynchronizer(client, testPrograms(), solana.NewWallet().PublicKey(), nil)

	outcomes, err := sync.FetchDelegatedBoosts(context.Background(), []solana.PublicKey{addr, solana.NewWallet().PublicKey()})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	require.NotNil(t, outcomes[0].Value)
	assert.Equal(t, uint64(4444), outcomes[0].Value.Amount)
	assert.Equal(t, staker, outcomes[0].Value.Authority)
	assert.True(t, outcomes[1].Absent)
}
