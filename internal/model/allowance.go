package model

// AllowanceState is a point-in-time read of an ERC20 allowance. It is
// re-read before every trade attempt; on-chain state can change between
// reads, so a prior read is never assumed valid.
type AllowanceState struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
	Token   string `json:"token"`
	Current Amount `json:"current"`
}
