package chain

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/Fazich/ore-hq-server/internal/config"
)

// RPCClient 同步器依赖的链 RPC 子集，测试里用假实现替换
type RPCClient interface {
	GetMultipleAccounts(ctx context.Context, accounts ...solana.PublicKey) (*rpc.GetMultipleAccountsResult, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
}

// NewClient 创建链 RPC 客户端
func NewClient(cfg *config.RPCConfig) RPCClient {
	return rpc.New(cfg.URL)
}
