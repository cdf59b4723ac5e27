package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/Fazich/ore-hq-server/internal/cache"
	"github.com/Fazich/ore-hq-server/internal/chain"
	"github.com/Fazich/ore-hq-server/internal/config"
	"github.com/Fazich/ore-hq-server/internal/repository"
	"github.com/Fazich/ore-hq-server/internal/scheduler"
	"github.com/Fazich/ore-hq-server/internal/service"
	"github.com/Fazich/ore-hq-server/pkg/logger"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output); err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	db, err := initDatabase(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer closeDatabase(db)

	poolRepo := repository.NewPoolRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	stakeRepo := repository.NewStakeAccountRepository(db)

	authority, err := solana.PublicKeyFromBase58(cfg.Pool.AuthorityPubkey)
	if err != nil {
		logger.Fatal("Invalid pool authority pubkey:", err)
	}
	programs, err := parsePrograms(&cfg.Pool)
	if err != nil {
		logger.Fatal("Invalid program pubkey:", err)
	}
	boostMints := make([]solana.PublicKey, 0, len(cfg.Pool.BoostMints))
	for _, mint := range cfg.Pool.BoostMints {
		pk, err := solana.PublicKeyFromBase58(mint)
		if err != nil {
			logger.Fatal("Invalid boost mint pubkey:", mint, err)
		}
		boostMints = append(boostMints, pk)
	}

	client := chain.NewClient(&cfg.RPC)
	sync := chain.NewSynchronizer(client, programs, authority, boostMints)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := bootstrapPool(ctx, cfg, poolRepo, programs, authority); err != nil {
		logger.Fatal("Failed to bootstrap pool:", err)
	}

	cache.Start(ctx, cfg, sync, submissionRepo, challengeRepo)

	stakeSyncSvc := service.NewStakeSyncService(sync, stakeRepo)

	maintenance := scheduler.NewMaintenanceScheduler(&cfg.Pool, poolRepo, submissionRepo, stakeSyncSvc)
	if err := maintenance.Start(); err != nil {
		logger.Fatal("Failed to start scheduler:", err)
	}
	defer maintenance.Stop()

	logger.Info("Pool server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	cancel()
	logger.Info("Pool server stopped")
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	return db, nil
}

func closeDatabase(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Failed to get database instance:", err)
		return
	}
	sqlDB.Close()
}

func parsePrograms(cfg *config.PoolConfig) (chain.Programs, error) {
	mining, err := solana.PublicKeyFromBase58(cfg.MiningProgram)
	if err != nil {
		return chain.Programs{}, fmt.Errorf("mining program: %w", err)
	}
	delegation, err := solana.PublicKeyFromBase58(cfg.DelegationProgram)
	if err != nil {
		return chain.Programs{}, fmt.Errorf("delegation program: %w", err)
	}
	boost, err := solana.PublicKeyFromBase58(cfg.BoostProgram)
	if err != nil {
		return chain.Programs{}, fmt.Errorf("boost program: %w", err)
	}
	return chain.Programs{Mining: mining, Delegation: delegation, Boost: boost}, nil
}

// bootstrapPool 首次启动时登记矿池记录，之后启动直接复用
func bootstrapPool(ctx context.Context, cfg *config.Config, pools *repository.PoolRepository, programs chain.Programs, authority solana.PublicKey) error {
	pool, err := pools.GetByAuthority(ctx, cfg.Pool.AuthorityPubkey)
	if err != nil {
		return err
	}
	if pool != nil {
		logger.WithFields(map[string]interface{}{
			"pool_id": pool.ID,
		}).Info("矿池已登记")
		return nil
	}

	proofAddr, err := programs.MinerProofAddress(authority)
	if err != nil {
		return err
	}
	if err := pools.Create(ctx, cfg.Pool.AuthorityPubkey, proofAddr.String()); err != nil {
		return err
	}
	logger.Info("矿池登记完成")
	return nil
}
