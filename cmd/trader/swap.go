package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tradeScope/internal/dex"
	"tradeScope/internal/executor"
	"tradeScope/internal/model"
	"tradeScope/internal/quote"
)

func runSwap(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	t, err := newTrading(ctx, cmd)
	if err != nil {
		return err
	}
	defer t.Close()

	poolAddr, _ := cmd.Flags().GetString("pool")
	tokenIn, _ := cmd.Flags().GetString("token-in")
	amountStr, _ := cmd.Flags().GetString("amount-in")
	nativeIn, _ := cmd.Flags().GetBool("native-in")
	nativeOut, _ := cmd.Flags().GetBool("native-out")
	if poolAddr == "" || tokenIn == "" || amountStr == "" {
		return fmt.Errorf("pool, token-in, and amount-in are required")
	}
	if nativeIn && nativeOut {
		return fmt.Errorf("native-in and native-out are mutually exclusive")
	}
	if t.cfg.Router == "" {
		return fmt.Errorf("router address is required")
	}

	amountIn, err := model.AmountFromString(amountStr)
	if err != nil {
		return err
	}
	router, err := dex.NewRouter(t.cfg.Router)
	if err != nil {
		return err
	}

	pool, err := t.pairs.Pool(ctx, poolAddr)
	if err != nil {
		return fmt.Errorf("resolve pool: %w", err)
	}
	snap, err := t.pairs.Snapshot(ctx, pool, tokenIn)
	if err != nil {
		return fmt.Errorf("read reserves: %w", err)
	}

	q, err := quote.SwapOut(snap, model.DefaultSwapFee, amountIn)
	if err != nil {
		return err
	}
	guard := t.tolerance.SwapGuard(q.AmountOut)
	deadline := t.deadlines.Next()
	recipient := t.recipientOrSigner(cmd)
	path := []string{snap.TokenIn.Address, snap.TokenOut.Address}

	var call model.CallRequest
	switch {
	case nativeIn:
		call, err = router.SwapETHForTokens(amountIn, guard.MinOut, path, recipient, deadline)
	case nativeOut:
		call, err = router.SwapTokensForETH(amountIn, guard.MinOut, path, recipient, deadline)
	default:
		call, err = router.SwapTokensForTokens(amountIn, guard.MinOut, path, recipient, deadline)
	}
	if err != nil {
		return err
	}

	plan := executor.Plan{
		Request: model.TradeRequest{
			Kind:     model.TradeSwap,
			Call:     call,
			Guard:    guard,
			Deadline: deadline,
		},
	}
	if !nativeIn {
		plan.Spends = []executor.SpendLeg{{
			Token:    snap.TokenIn.Address,
			Owner:    t.submitter.From().Hex(),
			Spender:  router.Address(),
			Required: amountIn,
		}}
	}

	t.logger.Info("swap planned",
		zap.String("pool", pool.Address),
		zap.String("token_in", snap.TokenIn.Symbol),
		zap.String("token_out", snap.TokenOut.Symbol),
		zap.String("amount_in", amountIn.String()),
		zap.String("quoted_out", q.AmountOut.String()),
		zap.String("min_out", guard.MinOut.String()),
	)
	fmt.Printf("swapping %s %s for at least %s %s (quoted %s)\n",
		amountIn, snap.TokenIn.Symbol, guard.MinOut, snap.TokenOut.Symbol, q.AmountOut)

	outcome, err := t.exec.Execute(ctx, plan)
	if err != nil {
		return err
	}

	t.record(ctx, model.TradeRecord{
		Kind:      string(model.TradeSwap),
		Pool:      pool.Address,
		TokenIn:   snap.TokenIn.Address,
		TokenOut:  snap.TokenOut.Address,
		AmountIn:  amountIn.String(),
		QuotedOut: q.AmountOut.String(),
		MinOut:    guard.MinOut.String(),
		Deadline:  uint64(deadline.Unix()),
		Status:    string(outcome.Status),
		TxHash:    outcome.TxHash,
		Reason:    outcome.Reason,
	})

	printOutcome(outcome)
	return nil
}
