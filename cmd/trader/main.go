package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "trader",
		Short:        "DEX trade quoting and execution",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a swap against live reserves without trading",
		RunE:  runQuote,
	}
	quoteCmd.Flags().String("rpc", "", "EVM RPC URL")
	quoteCmd.Flags().String("pool", "", "pair contract address")
	quoteCmd.Flags().String("token-in", "", "input token address")
	quoteCmd.Flags().String("amount-in", "", "input amount in the token's smallest unit")
	quoteCmd.Flags().String("reserve-in", "", "explicit input-side reserve for offline quoting")
	quoteCmd.Flags().String("reserve-out", "", "explicit output-side reserve for offline quoting")
	quoteCmd.Flags().Bool("liquidity", false, "quote a proportional liquidity add instead of a swap")
	quoteCmd.Flags().String("slippage", "0.5%", "slippage tolerance percent")
	quoteCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(quoteCmd)

	swapCmd := &cobra.Command{
		Use:   "swap",
		Short: "Quote and execute an exact-input swap",
		RunE:  runSwap,
	}
	swapCmd.Flags().String("pool", "", "pair contract address")
	swapCmd.Flags().String("token-in", "", "input token address")
	swapCmd.Flags().String("amount-in", "", "input amount in the token's smallest unit")
	swapCmd.Flags().Bool("native-in", false, "spend the native coin via the router's ETH entrypoint")
	swapCmd.Flags().Bool("native-out", false, "receive the native coin via the router's ETH entrypoint")
	swapCmd.Flags().String("recipient", "", "output recipient (defaults to the signer)")
	swapCmd.Flags().String("router", "", "V2 router contract address")
	addTradeFlags(swapCmd)
	root.AddCommand(swapCmd)

	liquidityCmd := &cobra.Command{
		Use:   "add-liquidity",
		Short: "Add liquidity at the current pool ratio",
		RunE:  runAddLiquidity,
	}
	liquidityCmd.Flags().String("pool", "", "pair contract address")
	liquidityCmd.Flags().String("token", "", "given-side token address")
	liquidityCmd.Flags().String("amount", "", "given-side amount in the token's smallest unit")
	liquidityCmd.Flags().String("recipient", "", "LP token recipient (defaults to the signer)")
	liquidityCmd.Flags().String("router", "", "V2 router contract address")
	addTradeFlags(liquidityCmd)
	root.AddCommand(liquidityCmd)

	buyCmd := &cobra.Command{
		Use:   "buy",
		Short: "Buy tokens on a bonding curve",
		RunE:  runBuy,
	}
	buyCmd.Flags().String("launchpad", "", "launchpad contract address")
	buyCmd.Flags().String("amount-in", "", "native amount to spend, in wei")
	addTradeFlags(buyCmd)
	root.AddCommand(buyCmd)

	sellCmd := &cobra.Command{
		Use:   "sell",
		Short: "Sell tokens back to a bonding curve",
		RunE:  runSell,
	}
	sellCmd.Flags().String("launchpad", "", "launchpad contract address")
	sellCmd.Flags().String("token", "", "curve token address")
	sellCmd.Flags().String("amount-in", "", "token amount to sell, in the token's smallest unit")
	addTradeFlags(sellCmd)
	root.AddCommand(sellCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// addTradeFlags attaches the flags shared by every executing command.
func addTradeFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "EVM RPC URL")
	cmd.Flags().String("private-key", "", "hex signing key")
	cmd.Flags().String("private-key-file", "", "file containing the hex signing key")
	cmd.Flags().String("slippage", "0.5%", "slippage tolerance percent")
	cmd.Flags().Duration("deadline-window", 20*time.Minute, "trade validity window")
	cmd.Flags().String("approval-policy", "unlimited", "approval sizing (unlimited, exact)")
	cmd.Flags().Duration("poll-interval", 3*time.Second, "receipt poll interval")
	cmd.Flags().Bool("yes", false, "skip the confirmation prompt")
	cmd.Flags().String("journal", "./data/trades.jsonl", "trade journal JSONL path")
	cmd.Flags().String("pg-dsn", "", "optional Postgres DSN for the trade journal")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
