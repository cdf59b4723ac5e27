package models

// BoostMultiplierData 由链上 boost/stake 账户推导的缓存视图，不落库
type BoostMultiplierData struct {
	BoostMint         string  `json:"boost_mint"`
	StakedBalance     float64 `json:"staked_balance"`
	TotalStakeBalance float64 `json:"total_stake_balance"`
	Multiplier        uint64  `json:"multiplier"`
}
