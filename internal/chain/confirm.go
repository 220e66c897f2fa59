package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"tradeScope/internal/executor"
)

// DefaultPollInterval is how often the waiter asks for a receipt.
const DefaultPollInterval = 3 * time.Second

// ReceiptWaiter polls for a transaction receipt until it appears or the
// deadline passes. It implements executor.Waiter.
type ReceiptWaiter struct {
	client   *Client
	interval time.Duration
	logger   *zap.Logger
}

// NewReceiptWaiter builds a waiter with the given poll interval. A
// non-positive interval falls back to DefaultPollInterval.
func NewReceiptWaiter(client *Client, interval time.Duration, logger *zap.Logger) (*ReceiptWaiter, error) {
	if client == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceiptWaiter{client: client, interval: interval, logger: logger}, nil
}

// Wait blocks until the transaction is mined or the deadline passes. The
// deadline bounds the wait only; a transaction can still mine afterwards.
func (w *ReceiptWaiter) Wait(ctx context.Context, txHash string, deadline time.Time) (executor.Receipt, error) {
	hash := common.HexToHash(txHash)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		receipt, err := w.client.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			return w.fromChainReceipt(ctx, hash, receipt), nil
		case errors.Is(err, ethereum.NotFound):
			// Still pending.
		default:
			return executor.Receipt{}, fmt.Errorf("fetch receipt %s: %w", txHash, err)
		}

		if !time.Now().Before(deadline) {
			return executor.Receipt{}, fmt.Errorf("%w: %s", executor.ErrConfirmationTimeout, txHash)
		}

		select {
		case <-ctx.Done():
			return executor.Receipt{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *ReceiptWaiter) fromChainReceipt(ctx context.Context, hash common.Hash, receipt *types.Receipt) executor.Receipt {
	out := executor.Receipt{
		TxHash:  hash.Hex(),
		Success: receipt.Status == types.ReceiptStatusSuccessful,
	}
	if out.Success {
		return out
	}
	out.Reason = w.revertReason(ctx, hash, receipt.BlockNumber)
	return out
}

// revertReason replays the failed transaction as an eth_call at its
// inclusion block. Best effort: nodes without archive state return an
// empty reason.
func (w *ReceiptWaiter) revertReason(ctx context.Context, hash common.Hash, blockNumber *big.Int) string {
	tx, _, err := w.client.TransactionByHash(ctx, hash)
	if err != nil {
		w.logger.Debug("revert reason lookup failed", zap.String("tx_hash", hash.Hex()), zap.Error(err))
		return ""
	}
	from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		return ""
	}

	msg := ethereum.CallMsg{
		From:  from,
		To:    tx.To(),
		Gas:   tx.Gas(),
		Value: tx.Value(),
		Data:  tx.Data(),
	}
	_, err = w.client.CallContract(ctx, msg, blockNumber)
	if err == nil {
		return ""
	}
	return strings.TrimPrefix(err.Error(), "execution reverted: ")
}
