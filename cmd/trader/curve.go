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
)

func runBuy(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	t, err := newTrading(ctx, cmd)
	if err != nil {
		return err
	}
	defer t.Close()

	lp, ethIn, err := curveArgs(ctx, cmd, t)
	if err != nil {
		return err
	}

	quoted, err := lp.TokensOut(ctx, ethIn)
	if err != nil {
		return fmt.Errorf("quote curve buy: %w", err)
	}
	guard := t.tolerance.SwapGuard(quoted)
	deadline := t.deadlines.Next()

	call, err := lp.BuyCall(ethIn, guard.MinOut)
	if err != nil {
		return err
	}

	t.logger.Info("curve buy planned",
		zap.String("launchpad", lp.Address()),
		zap.String("eth_in", ethIn.String()),
		zap.String("quoted_out", quoted.String()),
		zap.String("min_out", guard.MinOut.String()),
	)
	fmt.Printf("buying at least %s tokens for %s wei (quoted %s)\n", guard.MinOut, ethIn, quoted)

	outcome, err := t.exec.Execute(ctx, executor.Plan{
		Request: model.TradeRequest{
			Kind:     model.TradeBuyCurve,
			Call:     call,
			Guard:    guard,
			Deadline: deadline,
		},
	})
	if err != nil {
		return err
	}

	t.record(ctx, model.TradeRecord{
		Kind:      string(model.TradeBuyCurve),
		Pool:      lp.Address(),
		AmountIn:  ethIn.String(),
		QuotedOut: quoted.String(),
		MinOut:    guard.MinOut.String(),
		Deadline:  uint64(deadline.Unix()),
		Status:    string(outcome.Status),
		TxHash:    outcome.TxHash,
		Reason:    outcome.Reason,
	})

	printOutcome(outcome)
	return nil
}

func runSell(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	t, err := newTrading(ctx, cmd)
	if err != nil {
		return err
	}
	defer t.Close()

	lp, amountIn, err := curveArgs(ctx, cmd, t)
	if err != nil {
		return err
	}
	token, _ := cmd.Flags().GetString("token")
	if token == "" {
		return fmt.Errorf("token is required")
	}

	quoted, err := lp.EthersOut(ctx, amountIn)
	if err != nil {
		return fmt.Errorf("quote curve sell: %w", err)
	}
	guard := t.tolerance.SwapGuard(quoted)
	deadline := t.deadlines.Next()

	call, err := lp.SellCall(amountIn, guard.MinOut)
	if err != nil {
		return err
	}

	t.logger.Info("curve sell planned",
		zap.String("launchpad", lp.Address()),
		zap.String("token_in", amountIn.String()),
		zap.String("quoted_out", quoted.String()),
		zap.String("min_out", guard.MinOut.String()),
	)
	fmt.Printf("selling %s tokens for at least %s wei (quoted %s)\n", amountIn, guard.MinOut, quoted)

	outcome, err := t.exec.Execute(ctx, executor.Plan{
		Request: model.TradeRequest{
			Kind:     model.TradeSellCurve,
			Call:     call,
			Guard:    guard,
			Deadline: deadline,
		},
		Spends: []executor.SpendLeg{{
			Token:    token,
			Owner:    t.submitter.From().Hex(),
			Spender:  lp.Address(),
			Required: amountIn,
		}},
	})
	if err != nil {
		return err
	}

	t.record(ctx, model.TradeRecord{
		Kind:      string(model.TradeSellCurve),
		Pool:      lp.Address(),
		TokenIn:   token,
		AmountIn:  amountIn.String(),
		QuotedOut: quoted.String(),
		MinOut:    guard.MinOut.String(),
		Deadline:  uint64(deadline.Unix()),
		Status:    string(outcome.Status),
		TxHash:    outcome.TxHash,
		Reason:    outcome.Reason,
	})

	printOutcome(outcome)
	return nil
}

// curveArgs resolves the shared launchpad flags and refuses to trade on a
// migrated curve; liquidity lives in the pair after migration.
func curveArgs(ctx context.Context, cmd *cobra.Command, t *trading) (*dex.Launchpad, model.Amount, error) {
	address, _ := cmd.Flags().GetString("launchpad")
	if address == "" {
		address = t.cfg.Launchpad
	}
	amountStr, _ := cmd.Flags().GetString("amount-in")
	if address == "" || amountStr == "" {
		return nil, model.Amount{}, fmt.Errorf("launchpad and amount-in are required")
	}

	amountIn, err := model.AmountFromString(amountStr)
	if err != nil {
		return nil, model.Amount{}, err
	}

	lp, err := dex.NewLaunchpad(t.client, address)
	if err != nil {
		return nil, model.Amount{}, err
	}

	state, err := lp.State(ctx)
	if err != nil {
		return nil, model.Amount{}, fmt.Errorf("read curve state: %w", err)
	}
	if state.Migrated {
		return nil, model.Amount{}, fmt.Errorf("curve %s has migrated; trade its pair instead", address)
	}

	return lp, amountIn, nil
}
