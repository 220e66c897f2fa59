package quote

import "errors"

var (
	// ErrIlliquidPool means a swap was quoted against a pool with a zero
	// reserve on either side.
	ErrIlliquidPool = errors.New("pool has no liquidity")

	// ErrNoRatioAvailable means a liquidity add was quoted against an empty
	// pool; the first deposit seeds the ratio and cannot be derived here.
	ErrNoRatioAvailable = errors.New("empty pool has no deposit ratio")

	// ErrInvalidTolerance means a slippage tolerance outside [0%, 100%).
	ErrInvalidTolerance = errors.New("slippage tolerance out of range")
)
