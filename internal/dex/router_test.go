package dex

import (
	"bytes"
	"testing"
	"time"

	"tradeScope/internal/model"
)

const (
	routerAddr = "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D"
	tokenA     = "0x1111111111111111111111111111111111111111"
	tokenB     = "0x2222222222222222222222222222222222222222"
	trader     = "0x3333333333333333333333333333333333333333"
)

func TestRouterSwapTokensForTokens(t *testing.T) {
	router, err := NewRouter(routerAddr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	call, err := router.SwapTokensForTokens(
		model.AmountFromUint64(1000),
		model.AmountFromUint64(1982),
		[]string{tokenA, tokenB},
		trader,
		time.Unix(1700001200, 0),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if call.To != router.Address() {
		t.Fatalf("call target mismatch: got %s want %s", call.To, router.Address())
	}
	if !call.Value.IsZero() {
		t.Fatalf("token swap must not carry native value, got %s", call.Value)
	}

	parsed, err := RouterABI()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := parsed.Methods["swapExactTokensForTokens"].ID; !bytes.Equal(call.Data[:4], want) {
		t.Fatalf("selector mismatch: got %x want %x", call.Data[:4], want)
	}
}

func TestRouterSwapETHCarriesValue(t *testing.T) {
	router, err := NewRouter(routerAddr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in := model.AmountFromUint64(5_000)
	call, err := router.SwapETHForTokens(in, model.AmountFromUint64(1), []string{tokenA, tokenB}, trader, time.Unix(1700001200, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if call.Value.Cmp(in) != 0 {
		t.Fatalf("call value mismatch: got %s want %s", call.Value, in)
	}
}

func TestRouterRejectsShortPath(t *testing.T) {
	router, err := NewRouter(routerAddr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := router.SwapTokensForTokens(
		model.AmountFromUint64(1),
		model.AmountFromUint64(1),
		[]string{tokenA},
		trader,
		time.Unix(1700001200, 0),
	); err == nil {
		t.Fatalf("expected error for single-hop path")
	}
}

func TestNewRouterRequiresAddress(t *testing.T) {
	if _, err := NewRouter(""); err == nil {
		t.Fatalf("expected error for empty address")
	}
}
