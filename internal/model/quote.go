package model

// Quote is the result of quoting one trade direction against a reserve
// snapshot. It is recomputed on every reserve or input change and never
// cached across snapshots.
type Quote struct {
	Pool      Pool   `json:"pool"`
	AmountIn  Amount `json:"amount_in"`
	AmountOut Amount `json:"amount_out"`
}

// TradeGuard carries the slippage-bounded values enforced on chain:
// MinOut for swaps and bonding-curve trades, the per-side minimums for
// liquidity adds.
type TradeGuard struct {
	MinOut     Amount `json:"min_out,omitempty"`
	MinAmount0 Amount `json:"min_amount0,omitempty"`
	MinAmount1 Amount `json:"min_amount1,omitempty"`
}
