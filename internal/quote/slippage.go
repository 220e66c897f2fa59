package quote

import (
	"fmt"
	"math/big"
	"strings"

	"tradeScope/internal/model"
)

const bpsDenominator = 10_000

// Tolerance is a slippage tolerance in basis points, so fractional percents
// like 0.5% are represented exactly. Valid range is [0, 10000) basis points.
type Tolerance struct {
	bps uint32
}

// ToleranceFromBps validates a tolerance given in basis points.
func ToleranceFromBps(bps int64) (Tolerance, error) {
	if bps < 0 || bps >= bpsDenominator {
		return Tolerance{}, fmt.Errorf("%w: %d bps", ErrInvalidTolerance, bps)
	}
	return Tolerance{bps: uint32(bps)}, nil
}

// ToleranceFromPercent parses a percent string such as "0.5" into a
// tolerance. At most two fractional digits are accepted; anything finer
// than a basis point cannot be represented exactly.
func ToleranceFromPercent(s string) (Tolerance, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return Tolerance{}, fmt.Errorf("%w: empty percent", ErrInvalidTolerance)
	}
	if strings.HasPrefix(s, "-") {
		return Tolerance{}, fmt.Errorf("%w: %s%%", ErrInvalidTolerance, s)
	}

	whole, frac := s, ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		whole, frac = s[:idx], s[idx+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return Tolerance{}, fmt.Errorf("%w: %s%% is finer than a basis point", ErrInvalidTolerance, s)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	var bps int64
	for _, part := range []string{whole, frac} {
		for _, r := range part {
			if r < '0' || r > '9' {
				return Tolerance{}, fmt.Errorf("%w: %q", ErrInvalidTolerance, s)
			}
			bps = bps*10 + int64(r-'0')
			if bps >= bpsDenominator*10 {
				return Tolerance{}, fmt.Errorf("%w: %s%%", ErrInvalidTolerance, s)
			}
		}
	}

	return ToleranceFromBps(bps)
}

// Bps returns the tolerance in basis points.
func (t Tolerance) Bps() uint32 {
	return t.bps
}

func (t Tolerance) String() string {
	return fmt.Sprintf("%d.%02d%%", t.bps/100, t.bps%100)
}

// MinOut derives the minimum acceptable amount from a quoted amount:
// floor(quoted * (10000 - bps) / 10000). Rounding is always down; rounding
// up could make an honest trade revert.
func (t Tolerance) MinOut(quoted model.Amount) model.Amount {
	min := new(big.Int).Mul(quoted.BigInt(), big.NewInt(bpsDenominator-int64(t.bps)))
	min.Quo(min, big.NewInt(bpsDenominator))
	out, _ := model.NewAmount(min)
	return out
}

// SwapGuard builds the guard for a swap or bonding-curve trade.
func (t Tolerance) SwapGuard(quotedOut model.Amount) model.TradeGuard {
	return model.TradeGuard{MinOut: t.MinOut(quotedOut)}
}

// LiquidityGuard builds per-side minimums for a liquidity add, applying the
// tolerance independently to each side of the pair.
func (t Tolerance) LiquidityGuard(desired0, desired1 model.Amount) model.TradeGuard {
	return model.TradeGuard{
		MinAmount0: t.MinOut(desired0),
		MinAmount1: t.MinOut(desired1),
	}
}
