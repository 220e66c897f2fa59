package dex

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"tradeScope/internal/chain"
	"tradeScope/internal/model"
)

// TokenCache caches token metadata by address. Decimals and symbols are
// immutable, so entries never expire.
type TokenCache struct {
	mu   sync.RWMutex
	data map[common.Address]model.Token
}

func NewTokenCache() *TokenCache {
	return &TokenCache{data: make(map[common.Address]model.Token)}
}

func (c *TokenCache) Get(address common.Address) (model.Token, bool) {
	c.mu.RLock()
	token, ok := c.data[address]
	c.mu.RUnlock()
	return token, ok
}

func (c *TokenCache) Set(address common.Address, token model.Token) {
	c.mu.Lock()
	c.data[address] = token
	c.mu.Unlock()
}

// ERC20 reads token state and encodes token calls. It implements
// executor.AllowanceSource and executor.ApprovalBuilder.
type ERC20 struct {
	client *chain.Client
	cache  *TokenCache
	logger *zap.Logger
}

// NewERC20 builds the ERC20 caller. A nil cache disables metadata caching.
func NewERC20(client *chain.Client, cache *TokenCache, logger *zap.Logger) (*ERC20, error) {
	if client == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ERC20{client: client, cache: cache, logger: logger}, nil
}

// Allowance reads the live on-chain allowance for a spender.
func (e *ERC20) Allowance(ctx context.Context, owner, spender, token string) (model.AllowanceState, error) {
	parsed, err := erc20ABIStringInstance()
	if err != nil {
		return model.AllowanceState{}, fmt.Errorf("parse erc20 abi: %w", err)
	}

	values, err := callMethod(ctx, e.client, common.HexToAddress(token), parsed, "allowance",
		common.HexToAddress(owner), common.HexToAddress(spender))
	if err != nil {
		return model.AllowanceState{}, err
	}
	raw, err := asBigInt(values[0])
	if err != nil {
		return model.AllowanceState{}, fmt.Errorf("allowance: %w", err)
	}
	current, err := model.NewAmount(raw)
	if err != nil {
		return model.AllowanceState{}, fmt.Errorf("allowance: %w", err)
	}

	return model.AllowanceState{Owner: owner, Spender: spender, Token: token, Current: current}, nil
}

// ApprovalCall encodes an approve call for submission.
func (e *ERC20) ApprovalCall(token, spender string, amount model.Amount) (model.CallRequest, error) {
	parsed, err := erc20ABIStringInstance()
	if err != nil {
		return model.CallRequest{}, fmt.Errorf("parse erc20 abi: %w", err)
	}
	data, err := parsed.Pack("approve", common.HexToAddress(spender), amount.BigInt())
	if err != nil {
		return model.CallRequest{}, fmt.Errorf("pack approve: %w", err)
	}
	return model.CallRequest{To: token, Data: data}, nil
}

// BalanceOf reads the token balance of an account.
func (e *ERC20) BalanceOf(ctx context.Context, token, account string) (model.Amount, error) {
	parsed, err := erc20ABIStringInstance()
	if err != nil {
		return model.Amount{}, fmt.Errorf("parse erc20 abi: %w", err)
	}
	values, err := callMethod(ctx, e.client, common.HexToAddress(token), parsed, "balanceOf", common.HexToAddress(account))
	if err != nil {
		return model.Amount{}, err
	}
	raw, err := asBigInt(values[0])
	if err != nil {
		return model.Amount{}, fmt.Errorf("balanceOf: %w", err)
	}
	return model.NewAmount(raw)
}

// Token loads token metadata via ERC20 calls, using the cache when one is
// configured. Symbol and name fall back to bytes32 decoding for pre-standard
// tokens; decimals is mandatory.
func (e *ERC20) Token(ctx context.Context, address string) (model.Token, error) {
	addr := common.HexToAddress(address)
	if e.cache != nil {
		if token, ok := e.cache.Get(addr); ok {
			return token, nil
		}
	}

	token := model.Token{Address: addr.Hex()}

	stringABI, err := erc20ABIStringInstance()
	if err != nil {
		return token, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	bytes32ABI, err := erc20ABIBytes32Instance()
	if err != nil {
		return token, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	values, err := callMethod(ctx, e.client, addr, stringABI, "decimals")
	if err != nil {
		return token, err
	}
	decimals, err := asUint8(values[0])
	if err != nil {
		return token, err
	}
	token.Decimals = decimals

	if values, err := callMethod(ctx, e.client, addr, stringABI, "symbol"); err == nil {
		if symbol, ok := values[0].(string); ok {
			token.Symbol = symbol
		}
	} else if values, err := callMethod(ctx, e.client, addr, bytes32ABI, "symbol"); err == nil {
		if symbol, ok := bytes32ToString(values[0]); ok {
			token.Symbol = symbol
		}
	} else {
		e.logger.Debug("symbol call failed", zap.String("token", addr.Hex()), zap.Error(err))
	}

	if values, err := callMethod(ctx, e.client, addr, stringABI, "name"); err == nil {
		if name, ok := values[0].(string); ok {
			token.Name = name
		}
	} else if values, err := callMethod(ctx, e.client, addr, bytes32ABI, "name"); err == nil {
		if name, ok := bytes32ToString(values[0]); ok {
			token.Name = name
		}
	} else {
		e.logger.Debug("name call failed", zap.String("token", addr.Hex()), zap.Error(err))
	}

	if e.cache != nil {
		e.cache.Set(addr, token)
	}
	return token, nil
}
