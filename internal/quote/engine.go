package quote

import (
	"math/big"

	"tradeScope/internal/model"
)

// SwapOut quotes the exact-input output amount for a constant-product swap,
// with the fee taken on the input side:
//
//	out = floor(in*feeNum*reserveOut / (reserveIn*feeDen + in*feeNum))
//
// All arithmetic is integer arithmetic; the result matches the on-chain
// computation bit for bit, which is what keeps honest trades from reverting
// against their own guard values.
func SwapOut(snap model.ReserveSnapshot, fee model.FeeModel, amountIn model.Amount) (model.Quote, error) {
	reserveIn := snap.ReserveIn.BigInt()
	reserveOut := snap.ReserveOut.BigInt()

	if reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return model.Quote{}, ErrIlliquidPool
	}

	if amountIn.IsZero() {
		return model.Quote{Pool: snap.Pool, AmountIn: amountIn, AmountOut: model.ZeroAmount()}, nil
	}

	feeNum := new(big.Int).SetUint64(fee.Num)
	feeDen := new(big.Int).SetUint64(fee.Den)

	inWithFee := new(big.Int).Mul(amountIn.BigInt(), feeNum)
	numerator := new(big.Int).Mul(inWithFee, reserveOut)
	denominator := new(big.Int).Mul(reserveIn, feeDen)
	denominator.Add(denominator, inWithFee)

	out, err := model.NewAmount(numerator.Quo(numerator, denominator))
	if err != nil {
		return model.Quote{}, err
	}

	return model.Quote{Pool: snap.Pool, AmountIn: amountIn, AmountOut: out}, nil
}

// LiquidityCounterpart quotes the proportional amount of the other side for
// a liquidity add, at the current pool ratio. No fee applies; providing
// liquidity is not a swap.
func LiquidityCounterpart(reserveGiven, reserveOther, amountGiven model.Amount) (model.Amount, error) {
	if reserveGiven.IsZero() {
		return model.Amount{}, ErrNoRatioAvailable
	}
	if amountGiven.IsZero() {
		return model.ZeroAmount(), nil
	}

	other := new(big.Int).Mul(amountGiven.BigInt(), reserveOther.BigInt())
	other.Quo(other, reserveGiven.BigInt())
	return model.NewAmount(other)
}
