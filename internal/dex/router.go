package dex

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"tradeScope/internal/model"
)

// Router encodes V2 router calls. The slippage guard and deadline are baked
// into the call arguments; the contract enforces both.
type Router struct {
	address common.Address
}

// NewRouter pins the router contract address.
func NewRouter(address string) (*Router, error) {
	addr, err := ParseAddress(address)
	if err != nil {
		return nil, fmt.Errorf("router address: %w", err)
	}
	return &Router{address: addr}, nil
}

// Address returns the router contract address.
func (r *Router) Address() string {
	return r.address.Hex()
}

func asPath(path []string) ([]common.Address, error) {
	if len(path) < 2 {
		return nil, fmt.Errorf("swap path needs at least two hops, got %d", len(path))
	}
	out := make([]common.Address, len(path))
	for i, hop := range path {
		addr, err := ParseAddress(hop)
		if err != nil {
			return nil, fmt.Errorf("swap path hop %d: %w", i, err)
		}
		out[i] = addr
	}
	return out, nil
}

func deadlineArg(deadline time.Time) *big.Int {
	return big.NewInt(deadline.Unix())
}

// SwapTokensForTokens encodes swapExactTokensForTokens.
func (r *Router) SwapTokensForTokens(amountIn, minOut model.Amount, path []string, to string, deadline time.Time) (model.CallRequest, error) {
	parsed, err := RouterABI()
	if err != nil {
		return model.CallRequest{}, fmt.Errorf("parse router abi: %w", err)
	}
	hops, err := asPath(path)
	if err != nil {
		return model.CallRequest{}, err
	}
	data, err := parsed.Pack("swapExactTokensForTokens",
		amountIn.BigInt(), minOut.BigInt(), hops, common.HexToAddress(to), deadlineArg(deadline))
	if err != nil {
		return model.CallRequest{}, fmt.Errorf("pack swapExactTokensForTokens: %w", err)
	}
	return model.CallRequest{To: r.Address(), Data: data}, nil
}

// SwapETHForTokens encodes swapExactETHForTokens; the input amount rides as
// the call value.
func (r *Router) SwapETHForTokens(amountIn, minOut model.Amount, path []string, to string, deadline time.Time) (model.CallRequest, error) {
	parsed, err := RouterABI()
	if err != nil {
		return model.CallRequest{}, fmt.Errorf("parse router abi: %w", err)
	}
	hops, err := asPath(path)
	if err != nil {
		return model.CallRequest{}, err
	}
	data, err := parsed.Pack("swapExactETHForTokens",
		minOut.BigInt(), hops, common.HexToAddress(to), deadlineArg(deadline))
	if err != nil {
		return model.CallRequest{}, fmt.Errorf("pack swapExactETHForTokens: %w", err)
	}
	return model.CallRequest{To: r.Address(), Data: data, Value: amountIn}, nil
}

// SwapTokensForETH encodes swapExactTokensForETH.
func (r *Router) SwapTokensForETH(amountIn, minOut model.Amount, path []string, to string, deadline time.Time) (model.CallRequest, error) {
	parsed, err := RouterABI()
	if err != nil {
		return model.CallRequest{}, fmt.Errorf("parse router abi: %w", err)
	}
	hops, err := asPath(path)
	if err != nil {
		return model.CallRequest{}, err
	}
	data, err := parsed.Pack("swapExactTokensForETH",
		amountIn.BigInt(), minOut.BigInt(), hops, common.HexToAddress(to), deadlineArg(deadline))
	if err != nil {
		return model.CallRequest{}, fmt.Errorf("pack swapExactTokensForETH: %w", err)
	}
	return model.CallRequest{To: r.Address(), Data: data}, nil
}

// AddLiquidity encodes addLiquidity with per-side minimums.
func (r *Router) AddLiquidity(tokenA, tokenB string, desiredA, desiredB, minA, minB model.Amount, to string, deadline time.Time) (model.CallRequest, error) {
	parsed, err := RouterABI()
	if err != nil {
		return model.CallRequest{}, fmt.Errorf("parse router abi: %w", err)
	}
	data, err := parsed.Pack("addLiquidity",
		common.HexToAddress(tokenA), common.HexToAddress(tokenB),
		desiredA.BigInt(), desiredB.BigInt(),
		minA.BigInt(), minB.BigInt(),
		common.HexToAddress(to), deadlineArg(deadline))
	if err != nil {
		return model.CallRequest{}, fmt.Errorf("pack addLiquidity: %w", err)
	}
	return model.CallRequest{To: r.Address(), Data: data}, nil
}

// AddLiquidityETH encodes addLiquidityETH; the native side rides as the
// call value.
func (r *Router) AddLiquidityETH(token string, desiredToken, minToken, desiredETH, minETH model.Amount, to string, deadline time.Time) (model.CallRequest, error) {
	parsed, err := RouterABI()
	if err != nil {
		return model.CallRequest{}, fmt.Errorf("parse router abi: %w", err)
	}
	data, err := parsed.Pack("addLiquidityETH",
		common.HexToAddress(token),
		desiredToken.BigInt(), minToken.BigInt(), minETH.BigInt(),
		common.HexToAddress(to), deadlineArg(deadline))
	if err != nil {
		return model.CallRequest{}, fmt.Errorf("pack addLiquidityETH: %w", err)
	}
	return model.CallRequest{To: r.Address(), Data: data, Value: desiredETH}, nil
}
