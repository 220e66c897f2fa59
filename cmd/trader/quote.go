package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tradeScope/internal/model"
	"tradeScope/internal/quote"
)

func runQuote(cmd *cobra.Command, _ []string) error {
	reserveInStr, _ := cmd.Flags().GetString("reserve-in")
	reserveOutStr, _ := cmd.Flags().GetString("reserve-out")
	if reserveInStr != "" || reserveOutStr != "" {
		return runOfflineQuote(cmd, reserveInStr, reserveOutStr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	poolAddr, _ := cmd.Flags().GetString("pool")
	tokenIn, _ := cmd.Flags().GetString("token-in")
	amountStr, _ := cmd.Flags().GetString("amount-in")
	liquidity, _ := cmd.Flags().GetBool("liquidity")
	if poolAddr == "" || tokenIn == "" || amountStr == "" {
		return fmt.Errorf("pool, token-in, and amount-in are required")
	}

	amountIn, err := model.AmountFromString(amountStr)
	if err != nil {
		return err
	}

	pool, err := s.pairs.Pool(ctx, poolAddr)
	if err != nil {
		return fmt.Errorf("resolve pool: %w", err)
	}
	snap, err := s.pairs.Snapshot(ctx, pool, tokenIn)
	if err != nil {
		return fmt.Errorf("read reserves: %w", err)
	}

	if liquidity {
		counterpart, err := quote.LiquidityCounterpart(snap.ReserveIn, snap.ReserveOut, amountIn)
		if err != nil {
			return err
		}
		guard := s.tolerance.LiquidityGuard(amountIn, counterpart)

		s.logger.Info("liquidity quote",
			zap.String("pool", pool.Address),
			zap.String("given", amountIn.String()),
			zap.String("counterpart", counterpart.String()),
		)
		fmt.Printf("pool:        %s\n", pool.Address)
		fmt.Printf("given:       %s %s\n", amountIn, snap.TokenIn.Symbol)
		fmt.Printf("counterpart: %s %s\n", counterpart, snap.TokenOut.Symbol)
		fmt.Printf("minimums:    %s / %s (tolerance %s)\n", guard.MinAmount0, guard.MinAmount1, s.tolerance)
		return nil
	}

	q, err := quote.SwapOut(snap, model.DefaultSwapFee, amountIn)
	if err != nil {
		return err
	}
	minOut := s.tolerance.MinOut(q.AmountOut)

	s.logger.Info("quote",
		zap.String("pool", pool.Address),
		zap.String("token_in", snap.TokenIn.Symbol),
		zap.String("token_out", snap.TokenOut.Symbol),
		zap.String("amount_in", amountIn.String()),
		zap.String("amount_out", q.AmountOut.String()),
		zap.String("min_out", minOut.String()),
	)

	fmt.Printf("pool:       %s\n", pool.Address)
	fmt.Printf("direction:  %s -> %s\n", snap.TokenIn.Symbol, snap.TokenOut.Symbol)
	fmt.Printf("amount in:  %s\n", amountIn)
	fmt.Printf("amount out: %s\n", q.AmountOut)
	fmt.Printf("min out:    %s (tolerance %s)\n", minOut, s.tolerance)
	return nil
}

// runOfflineQuote quotes against explicit reserves without touching an RPC
// endpoint.
func runOfflineQuote(cmd *cobra.Command, reserveInStr, reserveOutStr string) error {
	amountStr, _ := cmd.Flags().GetString("amount-in")
	slippage, _ := cmd.Flags().GetString("slippage")
	liquidity, _ := cmd.Flags().GetBool("liquidity")
	if reserveInStr == "" || reserveOutStr == "" || amountStr == "" {
		return fmt.Errorf("reserve-in, reserve-out, and amount-in are required")
	}

	tolerance, err := quote.ToleranceFromPercent(slippage)
	if err != nil {
		return fmt.Errorf("parse slippage: %w", err)
	}
	reserveIn, err := model.AmountFromString(reserveInStr)
	if err != nil {
		return fmt.Errorf("parse reserve-in: %w", err)
	}
	reserveOut, err := model.AmountFromString(reserveOutStr)
	if err != nil {
		return fmt.Errorf("parse reserve-out: %w", err)
	}
	amountIn, err := model.AmountFromString(amountStr)
	if err != nil {
		return err
	}

	if liquidity {
		counterpart, err := quote.LiquidityCounterpart(reserveIn, reserveOut, amountIn)
		if err != nil {
			return err
		}
		guard := tolerance.LiquidityGuard(amountIn, counterpart)
		fmt.Printf("given:       %s\n", amountIn)
		fmt.Printf("counterpart: %s\n", counterpart)
		fmt.Printf("minimums:    %s / %s (tolerance %s)\n", guard.MinAmount0, guard.MinAmount1, tolerance)
		return nil
	}

	tokenIn := model.Token{Address: "0x0000000000000000000000000000000000000001", Symbol: "IN"}
	tokenOut := model.Token{Address: "0x0000000000000000000000000000000000000002", Symbol: "OUT"}
	pool, err := model.NewPool(0, "offline", tokenIn, tokenOut)
	if err != nil {
		return err
	}
	snap, err := model.NewReserveSnapshot(pool, tokenIn, tokenOut, reserveIn, reserveOut, time.Now().UTC())
	if err != nil {
		return err
	}

	q, err := quote.SwapOut(snap, model.DefaultSwapFee, amountIn)
	if err != nil {
		return err
	}
	minOut := tolerance.MinOut(q.AmountOut)

	fmt.Printf("amount in:  %s\n", amountIn)
	fmt.Printf("amount out: %s\n", q.AmountOut)
	fmt.Printf("min out:    %s (tolerance %s)\n", minOut, tolerance)
	return nil
}
