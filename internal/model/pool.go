package model

import (
	"fmt"
	"time"
)

// Pool identifies a constant-product pair and its two tokens.
type Pool struct {
	ChainID uint64 `json:"chain_id"`
	Address string `json:"address"`
	Token0  Token  `json:"token0"`
	Token1  Token  `json:"token1"`
}

// NewPool validates and builds a Pool.
func NewPool(chainID uint64, address string, token0, token1 Token) (Pool, error) {
	if address == "" {
		return Pool{}, fmt.Errorf("pool address is required")
	}
	if token0.Address == "" || token1.Address == "" {
		return Pool{}, fmt.Errorf("pool tokens are required")
	}
	if SameAddress(token0.Address, token1.Address) {
		return Pool{}, fmt.Errorf("pool tokens must differ: %s", token0.Address)
	}
	return Pool{ChainID: chainID, Address: address, Token0: token0, Token1: token1}, nil
}

// Holds reports whether the pool contains the token at the given address.
func (p Pool) Holds(address string) bool {
	return p.Token0.Is(address) || p.Token1.Is(address)
}

// ReserveSnapshot is pool state at query time, oriented for one trade
// direction. It is never refreshed; callers decide when it is too stale.
type ReserveSnapshot struct {
	Pool       Pool      `json:"pool"`
	TokenIn    Token     `json:"token_in"`
	TokenOut   Token     `json:"token_out"`
	ReserveIn  Amount    `json:"reserve_in"`
	ReserveOut Amount    `json:"reserve_out"`
	ObservedAt time.Time `json:"observed_at"`
}

// NewReserveSnapshot validates reserve orientation against the pool's pair.
func NewReserveSnapshot(pool Pool, tokenIn, tokenOut Token, reserveIn, reserveOut Amount, observedAt time.Time) (ReserveSnapshot, error) {
	if !pool.Holds(tokenIn.Address) {
		return ReserveSnapshot{}, fmt.Errorf("token %s is not in pool %s", tokenIn.Address, pool.Address)
	}
	if !pool.Holds(tokenOut.Address) {
		return ReserveSnapshot{}, fmt.Errorf("token %s is not in pool %s", tokenOut.Address, pool.Address)
	}
	if SameAddress(tokenIn.Address, tokenOut.Address) {
		return ReserveSnapshot{}, fmt.Errorf("snapshot tokens must differ: %s", tokenIn.Address)
	}
	return ReserveSnapshot{
		Pool:       pool,
		TokenIn:    tokenIn,
		TokenOut:   tokenOut,
		ReserveIn:  reserveIn,
		ReserveOut: reserveOut,
		ObservedAt: observedAt,
	}, nil
}

// Stale reports whether the snapshot is older than the given window at now.
func (s ReserveSnapshot) Stale(now time.Time, window time.Duration) bool {
	if window <= 0 {
		return false
	}
	return now.Sub(s.ObservedAt) > window
}

// Reverse returns the snapshot oriented for the opposite trade direction.
func (s ReserveSnapshot) Reverse() ReserveSnapshot {
	return ReserveSnapshot{
		Pool:       s.Pool,
		TokenIn:    s.TokenOut,
		TokenOut:   s.TokenIn,
		ReserveIn:  s.ReserveOut,
		ReserveOut: s.ReserveIn,
		ObservedAt: s.ObservedAt,
	}
}
