package model

import "fmt"

// FeeModel is the rational fee multiplier applied to the input amount
// before the constant-product formula, e.g. 997/1000 for a 0.3% fee.
type FeeModel struct {
	Num uint64 `json:"num"`
	Den uint64 `json:"den"`
}

// DefaultSwapFee is the standard V2 pool fee of 0.3%.
var DefaultSwapFee = FeeModel{Num: 997, Den: 1000}

// NewFeeModel validates a fee multiplier. The multiplier must be in (0, 1].
func NewFeeModel(num, den uint64) (FeeModel, error) {
	if den == 0 {
		return FeeModel{}, fmt.Errorf("fee denominator must be greater than zero")
	}
	if num == 0 || num > den {
		return FeeModel{}, fmt.Errorf("fee numerator must be in (0, %d]", den)
	}
	return FeeModel{Num: num, Den: den}, nil
}
