package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadAppliesCacheDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
  port: 3306
pool:
  authority_pubkey: auth
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Cache.BlockhashInterval)
	assert.Equal(t, 15, cfg.Cache.BoostMultiplierInterval)
	assert.Equal(t, 15, cfg.Cache.SubmissionsInterval)
	assert.Equal(t, 15, cfg.Cache.ChallengesInterval)
	assert.Equal(t, 2, cfg.Cache.RetryDelay)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
pool:
  authority_pubkey: auth
  staker_commission_bps: 1000
  stats_enabled: true
cache:
  blockhash_interval: 3
  retry_delay: 1
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "auth", cfg.Pool.AuthorityPubkey)
	assert.Equal(t, uint64(1000), cfg.Pool.StakerCommissionBps)
	assert.True(t, cfg.Pool.StatsEnabled)
	assert.Equal(t, 3, cfg.Cache.BlockhashInterval)
	assert.Equal(t, 1, cfg.Cache.RetryDelay)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "127.0.0.1",
		Port:     3306,
		User:     "ore",
		Password: "secret",
		DBName:   "ore_pool",
	}

	assert.Equal(t,
		"ore:secret@tcp(127.0.0.1:3306)/ore_pool?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.DSN())
}
