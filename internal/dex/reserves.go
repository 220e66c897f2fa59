package dex

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"tradeScope/internal/chain"
	"tradeScope/internal/model"
)

// PairReader loads constant-product pair state from chain.
type PairReader struct {
	client *chain.Client
	erc20  *ERC20
	logger *zap.Logger
}

// NewPairReader builds a reader that resolves token metadata through the
// given ERC20 caller.
func NewPairReader(client *chain.Client, erc20 *ERC20, logger *zap.Logger) (*PairReader, error) {
	if client == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	if erc20 == nil {
		return nil, fmt.Errorf("erc20 caller is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PairReader{client: client, erc20: erc20, logger: logger}, nil
}

// Pool resolves a pair address into a Pool with both tokens' metadata.
func (r *PairReader) Pool(ctx context.Context, pairAddress string) (model.Pool, error) {
	parsed, err := PairABI()
	if err != nil {
		return model.Pool{}, fmt.Errorf("parse pair abi: %w", err)
	}
	pair, err := ParseAddress(pairAddress)
	if err != nil {
		return model.Pool{}, fmt.Errorf("pair address: %w", err)
	}

	values, err := callMethod(ctx, r.client, pair, parsed, "token0")
	if err != nil {
		return model.Pool{}, err
	}
	addr0, err := asAddress(values[0])
	if err != nil {
		return model.Pool{}, fmt.Errorf("token0: %w", err)
	}

	values, err = callMethod(ctx, r.client, pair, parsed, "token1")
	if err != nil {
		return model.Pool{}, err
	}
	addr1, err := asAddress(values[0])
	if err != nil {
		return model.Pool{}, fmt.Errorf("token1: %w", err)
	}

	token0, err := r.erc20.Token(ctx, addr0.Hex())
	if err != nil {
		return model.Pool{}, fmt.Errorf("token0 metadata: %w", err)
	}
	token1, err := r.erc20.Token(ctx, addr1.Hex())
	if err != nil {
		return model.Pool{}, fmt.Errorf("token1 metadata: %w", err)
	}

	chainID, err := r.client.GetChainID(ctx)
	if err != nil {
		return model.Pool{}, fmt.Errorf("fetch chain id: %w", err)
	}

	return model.NewPool(chainID.Uint64(), pair.Hex(), token0, token1)
}

// Snapshot reads the live reserves and orients them for a trade that spends
// tokenIn. The pair's reserve0/reserve1 ordering follows token0/token1.
func (r *PairReader) Snapshot(ctx context.Context, pool model.Pool, tokenIn string) (model.ReserveSnapshot, error) {
	if !pool.Holds(tokenIn) {
		return model.ReserveSnapshot{}, fmt.Errorf("token %s is not in pool %s", tokenIn, pool.Address)
	}

	parsed, err := PairABI()
	if err != nil {
		return model.ReserveSnapshot{}, fmt.Errorf("parse pair abi: %w", err)
	}

	values, err := callMethod(ctx, r.client, common.HexToAddress(pool.Address), parsed, "getReserves")
	if err != nil {
		return model.ReserveSnapshot{}, err
	}
	if len(values) < 2 {
		return model.ReserveSnapshot{}, fmt.Errorf("getReserves returned %d values", len(values))
	}
	raw0, err := asBigInt(values[0])
	if err != nil {
		return model.ReserveSnapshot{}, fmt.Errorf("reserve0: %w", err)
	}
	raw1, err := asBigInt(values[1])
	if err != nil {
		return model.ReserveSnapshot{}, fmt.Errorf("reserve1: %w", err)
	}
	reserve0, err := model.NewAmount(raw0)
	if err != nil {
		return model.ReserveSnapshot{}, fmt.Errorf("reserve0: %w", err)
	}
	reserve1, err := model.NewAmount(raw1)
	if err != nil {
		return model.ReserveSnapshot{}, fmt.Errorf("reserve1: %w", err)
	}

	observedAt := time.Now().UTC()
	r.logger.Debug("reserves observed",
		zap.String("pool", pool.Address),
		zap.String("reserve0", reserve0.String()),
		zap.String("reserve1", reserve1.String()),
	)

	if pool.Token0.Is(tokenIn) {
		return model.NewReserveSnapshot(pool, pool.Token0, pool.Token1, reserve0, reserve1, observedAt)
	}
	return model.NewReserveSnapshot(pool, pool.Token1, pool.Token0, reserve1, reserve0, observedAt)
}
