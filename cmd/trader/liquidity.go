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

func runAddLiquidity(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	t, err := newTrading(ctx, cmd)
	if err != nil {
		return err
	}
	defer t.Close()

	poolAddr, _ := cmd.Flags().GetString("pool")
	givenToken, _ := cmd.Flags().GetString("token")
	amountStr, _ := cmd.Flags().GetString("amount")
	if poolAddr == "" || givenToken == "" || amountStr == "" {
		return fmt.Errorf("pool, token, and amount are required")
	}
	if t.cfg.Router == "" {
		return fmt.Errorf("router address is required")
	}

	amountGiven, err := model.AmountFromString(amountStr)
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

	// Orient the snapshot so the given side is ReserveIn.
	snap, err := t.pairs.Snapshot(ctx, pool, givenToken)
	if err != nil {
		return fmt.Errorf("read reserves: %w", err)
	}

	counterpart, err := quote.LiquidityCounterpart(snap.ReserveIn, snap.ReserveOut, amountGiven)
	if err != nil {
		return err
	}

	// Map the given/counterpart amounts back onto the pair's token0/token1
	// order, which is what the router expects.
	desired0, desired1 := amountGiven, counterpart
	if pool.Token1.Is(givenToken) {
		desired0, desired1 = counterpart, amountGiven
	}
	guard := t.tolerance.LiquidityGuard(desired0, desired1)
	deadline := t.deadlines.Next()
	recipient := t.recipientOrSigner(cmd)

	call, err := router.AddLiquidity(
		pool.Token0.Address, pool.Token1.Address,
		desired0, desired1,
		guard.MinAmount0, guard.MinAmount1,
		recipient, deadline,
	)
	if err != nil {
		return err
	}

	owner := t.submitter.From().Hex()
	plan := executor.Plan{
		Request: model.TradeRequest{
			Kind:     model.TradeAddLiquidity,
			Call:     call,
			Guard:    guard,
			Deadline: deadline,
		},
		Spends: []executor.SpendLeg{
			{Token: pool.Token0.Address, Owner: owner, Spender: router.Address(), Required: desired0},
			{Token: pool.Token1.Address, Owner: owner, Spender: router.Address(), Required: desired1},
		},
	}

	t.logger.Info("liquidity add planned",
		zap.String("pool", pool.Address),
		zap.String("desired0", desired0.String()),
		zap.String("desired1", desired1.String()),
		zap.String("min0", guard.MinAmount0.String()),
		zap.String("min1", guard.MinAmount1.String()),
	)
	fmt.Printf("adding %s %s and %s %s at the current ratio\n",
		desired0, pool.Token0.Symbol, desired1, pool.Token1.Symbol)

	outcome, err := t.exec.Execute(ctx, plan)
	if err != nil {
		return err
	}

	t.record(ctx, model.TradeRecord{
		Kind:      string(model.TradeAddLiquidity),
		Pool:      pool.Address,
		TokenIn:   snap.TokenIn.Address,
		TokenOut:  snap.TokenOut.Address,
		AmountIn:  amountGiven.String(),
		QuotedOut: counterpart.String(),
		MinOut:    guard.MinAmount0.String(),
		Deadline:  uint64(deadline.Unix()),
		Status:    string(outcome.Status),
		TxHash:    outcome.TxHash,
		Reason:    outcome.Reason,
	})

	printOutcome(outcome)
	return nil
}
