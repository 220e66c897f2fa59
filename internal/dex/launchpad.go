package dex

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"tradeScope/internal/chain"
	"tradeScope/internal/model"
)

// CurveState is the bonding curve's position: supplies sold so far and
// whether it already migrated to a pair.
type CurveState struct {
	TokenSupply model.Amount
	ETHSupply   model.Amount
	Threshold   model.Amount
	Migrated    bool
}

// Launchpad reads bonding-curve state and encodes curve trades. Quotes come
// from the contract's own pricing views, so the curve math lives in one
// place.
type Launchpad struct {
	client  *chain.Client
	address common.Address
}

// NewLaunchpad pins the launchpad contract address.
func NewLaunchpad(client *chain.Client, address string) (*Launchpad, error) {
	if client == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	addr, err := ParseAddress(address)
	if err != nil {
		return nil, fmt.Errorf("launchpad address: %w", err)
	}
	return &Launchpad{client: client, address: addr}, nil
}

// Address returns the launchpad contract address.
func (l *Launchpad) Address() string {
	return l.address.Hex()
}

func (l *Launchpad) view(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	parsed, err := LaunchpadABI()
	if err != nil {
		return nil, fmt.Errorf("parse launchpad abi: %w", err)
	}
	return callMethod(ctx, l.client, l.address, parsed, method, args...)
}

func (l *Launchpad) viewAmount(ctx context.Context, method string, args ...interface{}) (model.Amount, error) {
	values, err := l.view(ctx, method, args...)
	if err != nil {
		return model.Amount{}, err
	}
	raw, err := asBigInt(values[0])
	if err != nil {
		return model.Amount{}, fmt.Errorf("%s: %w", method, err)
	}
	return model.NewAmount(raw)
}

// TokensOut quotes how many curve tokens an ETH input buys at the current
// supply.
func (l *Launchpad) TokensOut(ctx context.Context, ethIn model.Amount) (model.Amount, error) {
	return l.viewAmount(ctx, "getTokensOutAtCurrentSupply", ethIn.BigInt())
}

// EthersOut quotes how much ETH a token input sells for at the current
// supply.
func (l *Launchpad) EthersOut(ctx context.Context, tokenIn model.Amount) (model.Amount, error) {
	return l.viewAmount(ctx, "getEthersOutAtCurrentSupply", tokenIn.BigInt())
}

// State reads the curve's supplies, migration threshold, and migration flag.
func (l *Launchpad) State(ctx context.Context) (CurveState, error) {
	tokenSupply, err := l.viewAmount(ctx, "tokenSupply")
	if err != nil {
		return CurveState{}, err
	}
	ethSupply, err := l.viewAmount(ctx, "ethSupply")
	if err != nil {
		return CurveState{}, err
	}
	threshold, err := l.viewAmount(ctx, "THRESHOLD")
	if err != nil {
		return CurveState{}, err
	}
	values, err := l.view(ctx, "isMigrated")
	if err != nil {
		return CurveState{}, err
	}
	migrated, err := asBool(values[0])
	if err != nil {
		return CurveState{}, fmt.Errorf("isMigrated: %w", err)
	}

	return CurveState{
		TokenSupply: tokenSupply,
		ETHSupply:   ethSupply,
		Threshold:   threshold,
		Migrated:    migrated,
	}, nil
}

// BuyCall encodes buyTokens; the ETH input rides as the call value.
func (l *Launchpad) BuyCall(ethIn, minOut model.Amount) (model.CallRequest, error) {
	parsed, err := LaunchpadABI()
	if err != nil {
		return model.CallRequest{}, fmt.Errorf("parse launchpad abi: %w", err)
	}
	data, err := parsed.Pack("buyTokens", minOut.BigInt())
	if err != nil {
		return model.CallRequest{}, fmt.Errorf("pack buyTokens: %w", err)
	}
	return model.CallRequest{To: l.Address(), Data: data, Value: ethIn}, nil
}

// SellCall encodes sellTokens.
func (l *Launchpad) SellCall(amountIn, minOut model.Amount) (model.CallRequest, error) {
	parsed, err := LaunchpadABI()
	if err != nil {
		return model.CallRequest{}, fmt.Errorf("parse launchpad abi: %w", err)
	}
	data, err := parsed.Pack("sellTokens", amountIn.BigInt(), minOut.BigInt())
	if err != nil {
		return model.CallRequest{}, fmt.Errorf("pack sellTokens: %w", err)
	}
	return model.CallRequest{To: l.Address(), Data: data}, nil
}
