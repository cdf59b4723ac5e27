package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildCaseUpdateSingleColumn(t *testing.T) {
	sql, args := buildCaseUpdate("rewards", "miner_id", []batchSet{
		{column: "balance", expr: "balance + ?"},
	}, []batchRow{
		{key: int32(1), values: []interface{}{uint64(100)}},
		{key: int32(2), values: []interface{}{uint64(200)}},
	})

	assert.Equal(t,
		"UPDATE rewards SET balance = CASE miner_id"+
			" WHEN ? THEN balance + ? WHEN ? THEN balance + ? END"+
			" WHERE miner_id IN (?,?)",
		sql)
	assert.Equal(t, []interface{}{
		int32(1), uint64(100), int32(2), uint64(200),
		int32(1), int32(2),
	}, args)
}

func TestBuildCaseUpdateMultipleColumns(t *testing.T) {
	sql, args := buildCaseUpdate("stake_accounts", "stake_pda", []batchSet{
		{column: "rewards_balance", expr: "rewards_balance + ?"},
		{column: "total_rewards_earned", expr: "total_rewards_earned + ?"},
	}, []batchRow{
		{key: "pda1", values: []interface{}{uint64(10), uint64(10)}},
	})

	assert.Equal(t,
		"UPDATE stake_accounts SET"+
			" rewards_balance = CASE stake_pda WHEN ? THEN rewards_balance + ? END,"+
			" total_rewards_earned = CASE stake_pda WHEN ? THEN total_rewards_earned + ? END"+
			" WHERE stake_pda IN (?)",
		sql)
	assert.Equal(t, []interface{}{
		"pda1", uint64(10),
		"pda1", uint64(10),
		"pda1",
	}, args)
}

func TestBuildCaseUpdateOverwriteExpr(t *testing.T) {
	sql, _ := buildCaseUpdate("stake_accounts", "stake_pda", []batchSet{
		{column: "staked_balance", expr: "?"},
	}, []batchRow{
		{key: "pda1", values: []interface{}{uint64(5)}},
	})

	assert.Equal(t,
		"UPDATE stake_accounts SET staked_balance = CASE stake_pda"+
			" WHEN ? THEN ? END WHERE stake_pda IN (?)",
		sql)
}
