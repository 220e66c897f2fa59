package quote

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"tradeScope/internal/model"
)

func testSnapshot(t *testing.T, reserveIn, reserveOut uint64) model.ReserveSnapshot {
	t.Helper()

	tokenIn := model.Token{Address: "0x2222222222222222222222222222222222222222", Decimals: 18, Symbol: "WETH"}
	tokenOut := model.Token{Address: "0x3333333333333333333333333333333333333333", Decimals: 18, Symbol: "TKN"}

	pool, err := model.NewPool(56, "0x1111111111111111111111111111111111111111", tokenIn, tokenOut)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap, err := model.NewReserveSnapshot(pool, tokenIn, tokenOut,
		model.AmountFromUint64(reserveIn), model.AmountFromUint64(reserveOut), time.Unix(1700000000, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return snap
}

func TestSwapOutWorkedExample(t *testing.T) {
	// reserves (1_000_000, 2_000_000), fee 997/1000, in 1_000:
	// floor(1000*997*2000000 / (1000000*1000 + 1000*997)) = 1992
	snap := testSnapshot(t, 1_000_000, 2_000_000)

	q, err := SwapOut(snap, model.DefaultSwapFee, model.AmountFromUint64(1_000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.AmountOut.String() != "1992" {
		t.Fatalf("quote mismatch: got %s want 1992", q.AmountOut)
	}
}

func TestSwapOutZeroInput(t *testing.T) {
	snap := testSnapshot(t, 1_000_000, 2_000_000)

	q, err := SwapOut(snap, model.DefaultSwapFee, model.ZeroAmount())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.AmountOut.IsZero() {
		t.Fatalf("zero input must quote zero output, got %s", q.AmountOut)
	}
}

func TestSwapOutIlliquidPool(t *testing.T) {
	for _, reserves := range [][2]uint64{{0, 2_000_000}, {1_000_000, 0}, {0, 0}} {
		snap := testSnapshot(t, reserves[0], reserves[1])
		if _, err := SwapOut(snap, model.DefaultSwapFee, model.AmountFromUint64(1_000)); !errors.Is(err, ErrIlliquidPool) {
			t.Fatalf("reserves %v: expected ErrIlliquidPool, got %v", reserves, err)
		}
	}
}

func TestSwapOutBoundedByReserve(t *testing.T) {
	snap := testSnapshot(t, 1_000, 2_000)

	for _, in := range []uint64{0, 1, 999, 1_000_000, 1 << 40} {
		q, err := SwapOut(snap, model.DefaultSwapFee, model.AmountFromUint64(in))
		if err != nil {
			t.Fatalf("unexpected error for input %d: %v", in, err)
		}
		if q.AmountOut.Cmp(snap.ReserveOut) >= 0 {
			t.Fatalf("input %d: output %s reaches reserve %s", in, q.AmountOut, snap.ReserveOut)
		}
	}
}

func TestSwapOutMonotonic(t *testing.T) {
	snap := testSnapshot(t, 1_000_000, 2_000_000)

	prev := model.ZeroAmount()
	for in := uint64(0); in <= 100_000; in += 1_000 {
		q, err := SwapOut(snap, model.DefaultSwapFee, model.AmountFromUint64(in))
		if err != nil {
			t.Fatalf("unexpected error for input %d: %v", in, err)
		}
		if q.AmountOut.Cmp(prev) < 0 {
			t.Fatalf("output decreased at input %d: %s < %s", in, q.AmountOut, prev)
		}
		prev = q.AmountOut
	}
}

func TestSwapOutIdempotent(t *testing.T) {
	snap := testSnapshot(t, 1_000_000, 2_000_000)
	in := model.AmountFromUint64(12_345)

	first, err := SwapOut(snap, model.DefaultSwapFee, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := SwapOut(snap, model.DefaultSwapFee, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.AmountOut.Cmp(second.AmountOut) != 0 {
		t.Fatalf("identical inputs quoted differently: %s != %s", first.AmountOut, second.AmountOut)
	}
}

func TestSwapOutDoesNotMutateInputs(t *testing.T) {
	snap := testSnapshot(t, 1_000_000, 2_000_000)
	in := model.AmountFromUint64(1_000)

	if _, err := SwapOut(snap, model.DefaultSwapFee, in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.ReserveIn.String() != "1000000" || snap.ReserveOut.String() != "2000000" {
		t.Fatalf("snapshot mutated: %s/%s", snap.ReserveIn, snap.ReserveOut)
	}
	if in.String() != "1000" {
		t.Fatalf("input mutated: %s", in)
	}
}

// A round trip at unchanged price must strictly lose to the fee: quoting X
// forward, then quoting the result back on the post-trade reserves, lands
// below X.
func TestSwapOutRoundTripLosesFee(t *testing.T) {
	snap := testSnapshot(t, 1_000_000, 2_000_000)
	in := model.AmountFromUint64(10_000)

	forward, err := SwapOut(snap, model.DefaultSwapFee, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	newIn := new(big.Int).Add(snap.ReserveIn.BigInt(), in.BigInt())
	newOut := new(big.Int).Sub(snap.ReserveOut.BigInt(), forward.AmountOut.BigInt())

	backPool := snap.Pool
	backReserveIn, err := model.NewAmount(newOut)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	backReserveOut, err := model.NewAmount(newIn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := model.NewReserveSnapshot(backPool, snap.TokenOut, snap.TokenIn, backReserveIn, backReserveOut, snap.ObservedAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reverse, err := SwapOut(back, model.DefaultSwapFee, forward.AmountOut)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reverse.AmountOut.Cmp(in) >= 0 {
		t.Fatalf("round trip did not lose the fee: %s >= %s", reverse.AmountOut, in)
	}
}

func TestLiquidityCounterpart(t *testing.T) {
	other, err := LiquidityCounterpart(model.AmountFromUint64(1_000), model.AmountFromUint64(4_000), model.AmountFromUint64(250))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if other.String() != "1000" {
		t.Fatalf("counterpart mismatch: got %s want 1000", other)
	}
}

func TestLiquidityCounterpartZeroGiven(t *testing.T) {
	other, err := LiquidityCounterpart(model.AmountFromUint64(1_000), model.AmountFromUint64(4_000), model.ZeroAmount())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !other.IsZero() {
		t.Fatalf("zero given must quote zero counterpart, got %s", other)
	}
}

func TestLiquidityCounterpartEmptyPool(t *testing.T) {
	_, err := LiquidityCounterpart(model.ZeroAmount(), model.AmountFromUint64(4_000), model.AmountFromUint64(250))
	if !errors.Is(err, ErrNoRatioAvailable) {
		t.Fatalf("expected ErrNoRatioAvailable, got %v", err)
	}
}
