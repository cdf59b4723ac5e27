package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	RPC      RPCConfig      `mapstructure:"rpc"`
	Pool     PoolConfig     `mapstructure:"pool"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.DBName)
}

type RPCConfig struct {
	URL   string `mapstructure:"url"`
	WSURL string `mapstructure:"ws_url"`
}

type PoolConfig struct {
	AuthorityPubkey   string   `mapstructure:"authority_pubkey"`
	MiningProgram     string   `mapstructure:"mining_program"`
	DelegationProgram string   `mapstructure:"delegation_program"`
	BoostProgram      string   `mapstructure:"boost_program"`
	BoostMints        []string `mapstructure:"boost_mints"`
	// 矿池佣金，基点（10000 = 100%），从每轮奖励中划给质押者
	StakerCommissionBps uint64 `mapstructure:"staker_commission_bps"`
	MinimumDifficulty   uint32 `mapstructure:"minimum_difficulty"`
	StatsEnabled        bool   `mapstructure:"stats_enabled"`
}

type CacheConfig struct {
	BlockhashInterval       int `mapstructure:"blockhash_interval"`
	BoostMultiplierInterval int `mapstructure:"boost_multiplier_interval"`
	SubmissionsInterval     int `mapstructure:"submissions_interval"`
	ChallengesInterval      int `mapstructure:"challenges_interval"`
	RetryDelay              int `mapstructure:"retry_delay"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetDefault("cache.blockhash_interval", 5)
	v.SetDefault("cache.boost_multiplier_interval", 15)
	v.SetDefault("cache.submissions_interval", 15)
	v.SetDefault("cache.challenges_interval", 15)
	v.SetDefault("cache.retry_delay", 2)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
