package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"tradeScope/internal/executor"
	"tradeScope/internal/model"
)

// gasLimitBufferPct pads the node's gas estimate; estimates run tight on
// state that moves between estimation and inclusion.
const gasLimitBufferPct = 20

// ConfirmFunc is asked before each broadcast. Returning false aborts the
// submission without sending anything.
type ConfirmFunc func(call model.CallRequest) bool

// KeyedSubmitter signs calls with a local private key and broadcasts them.
// It implements executor.Submitter.
type KeyedSubmitter struct {
	client  *Client
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int
	confirm ConfirmFunc
	logger  *zap.Logger
}

// NewKeyedSubmitter derives the sender address from the hex private key
// and pins the chain ID for signing. A nil confirm broadcasts without
// asking.
func NewKeyedSubmitter(ctx context.Context, client *Client, privateKeyHex string, confirm ConfirmFunc, logger *zap.Logger) (*KeyedSubmitter, error) {
	if client == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	chainID, err := client.GetChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch chain id: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KeyedSubmitter{
		client:  client,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		chainID: chainID,
		confirm: confirm,
		logger:  logger,
	}, nil
}

// From returns the sender address.
func (s *KeyedSubmitter) From() common.Address {
	return s.from
}

// ChainID returns the chain ID transactions are signed for.
func (s *KeyedSubmitter) ChainID() *big.Int {
	return new(big.Int).Set(s.chainID)
}

// Submit signs and broadcasts the call, returning the transaction hash.
// The confirm hook runs after gas estimation, so a call that would revert
// fails here instead of on-chain.
func (s *KeyedSubmitter) Submit(ctx context.Context, call model.CallRequest) (string, error) {
	if call.To == "" {
		return "", fmt.Errorf("call target is required")
	}
	to := common.HexToAddress(call.To)
	value := call.Value.BigInt()

	msg := ethereum.CallMsg{
		From:  s.from,
		To:    &to,
		Value: value,
		Data:  call.Data,
	}
	gasLimit, err := s.client.EstimateGas(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("estimate gas: %w", err)
	}
	gasLimit += gasLimit * gasLimitBufferPct / 100

	tipCap, err := s.client.SuggestGasTipCap(ctx)
	if err != nil {
		return "", fmt.Errorf("suggest gas tip: %w", err)
	}
	head, err := s.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("fetch head: %w", err)
	}
	feeCap := new(big.Int).Add(tipCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))

	nonce, err := s.client.PendingNonceAt(ctx, s.from)
	if err != nil {
		return "", fmt.Errorf("fetch nonce: %w", err)
	}

	if s.confirm != nil && !s.confirm(call) {
		return "", executor.ErrDeclined
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   s.chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		To:        &to,
		Value:     value,
		Data:      call.Data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(s.chainID), s.key)
	if err != nil {
		return "", fmt.Errorf("sign transaction: %w", err)
	}

	if err := s.client.SendTransaction(ctx, signed); err != nil {
		if isDeclinedErr(err) {
			return "", executor.ErrDeclined
		}
		return "", fmt.Errorf("broadcast transaction: %w", err)
	}

	s.logger.Debug("transaction broadcast",
		zap.String("tx_hash", signed.Hash().Hex()),
		zap.String("to", to.Hex()),
		zap.Uint64("nonce", nonce),
		zap.Uint64("gas_limit", gasLimit),
	)
	return signed.Hash().Hex(), nil
}

// isDeclinedErr recognizes rejections from signing bridges that proxy a
// user prompt behind the RPC endpoint.
func isDeclinedErr(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "denied") || strings.Contains(msg, "rejected")
}
