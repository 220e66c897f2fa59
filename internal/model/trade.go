package model

import "time"

// TradeKind distinguishes the supported on-chain actions.
type TradeKind string

const (
	TradeSwap         TradeKind = "swap"
	TradeAddLiquidity TradeKind = "add_liquidity"
	TradeBuyCurve     TradeKind = "buy_bonding_curve"
	TradeSellCurve    TradeKind = "sell_bonding_curve"
)

// CallRequest is a fully-encoded contract call ready for submission.
type CallRequest struct {
	To    string `json:"to"`
	Data  []byte `json:"data"`
	Value Amount `json:"value"`
}

// TradeRequest is the resolved description of one on-chain action: the
// encoded primary call plus the guard and deadline baked into its arguments.
type TradeRequest struct {
	Kind     TradeKind   `json:"kind"`
	Call     CallRequest `json:"call"`
	Guard    TradeGuard  `json:"guard"`
	Deadline time.Time   `json:"deadline"`
}

// OutcomeStatus is the terminal state of a trade attempt.
type OutcomeStatus string

const (
	OutcomeSucceeded OutcomeStatus = "succeeded"
	OutcomeReverted  OutcomeStatus = "reverted"
	OutcomeCancelled OutcomeStatus = "cancelled"
	OutcomeTimedOut  OutcomeStatus = "timed_out"
)

// TradeOutcome is the terminal result of one trade attempt. Reason is set
// for reverted trades when the chain reports one.
type TradeOutcome struct {
	Status OutcomeStatus `json:"status"`
	TxHash string        `json:"tx_hash,omitempty"`
	Reason string        `json:"reason,omitempty"`
}

// Terminal reports whether the outcome carries a final status.
func (o TradeOutcome) Terminal() bool {
	switch o.Status {
	case OutcomeSucceeded, OutcomeReverted, OutcomeCancelled, OutcomeTimedOut:
		return true
	}
	return false
}
