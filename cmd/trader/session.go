package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tradeScope/internal/chain"
	"tradeScope/internal/config"
	"tradeScope/internal/dex"
	"tradeScope/internal/executor"
	"tradeScope/internal/model"
	"tradeScope/internal/quote"
	"tradeScope/internal/storage"
	"tradeScope/internal/storage/postgres"
)

// session bundles the read-only collaborators every command needs.
type session struct {
	cfg       config.Config
	logger    *zap.Logger
	client    *chain.Client
	erc20     *dex.ERC20
	pairs     *dex.PairReader
	tolerance quote.Tolerance
}

func newSession(ctx context.Context, cmd *cobra.Command) (*session, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}

	tolerance, err := quote.ToleranceFromPercent(cfg.Slippage)
	if err != nil {
		return nil, fmt.Errorf("parse slippage: %w", err)
	}

	client, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}

	erc20, err := dex.NewERC20(client, dex.NewTokenCache(), logger)
	if err != nil {
		client.Close()
		return nil, err
	}
	pairs, err := dex.NewPairReader(client, erc20, logger)
	if err != nil {
		client.Close()
		return nil, err
	}

	return &session{
		cfg:       cfg,
		logger:    logger,
		client:    client,
		erc20:     erc20,
		pairs:     pairs,
		tolerance: tolerance,
	}, nil
}

func (s *session) Close() {
	s.client.Close()
	s.logger.Sync()
}

// trading extends a session with the signing and execution collaborators.
type trading struct {
	*session
	submitter *chain.KeyedSubmitter
	exec      *executor.Executor
	deadlines quote.DeadlineClock
	journal   storage.Storage
	pg        *postgres.Store
}

func newTrading(ctx context.Context, cmd *cobra.Command) (*trading, error) {
	s, err := newSession(ctx, cmd)
	if err != nil {
		return nil, err
	}

	key, err := s.cfg.ResolvePrivateKey()
	if err != nil {
		s.Close()
		return nil, err
	}

	var confirm chain.ConfirmFunc
	if !s.cfg.AssumeYes {
		confirm = confirmPrompt()
	}

	submitter, err := chain.NewKeyedSubmitter(ctx, s.client, key, confirm, s.logger)
	if err != nil {
		s.Close()
		return nil, err
	}

	waiter, err := chain.NewReceiptWaiter(s.client, s.cfg.PollInterval, s.logger)
	if err != nil {
		s.Close()
		return nil, err
	}

	allowances, err := executor.NewAllowanceManager(s.erc20, s.erc20, executor.ApprovalPolicy(s.cfg.ApprovalPolicy))
	if err != nil {
		s.Close()
		return nil, err
	}

	exec, err := executor.New(submitter, waiter, allowances, nil, s.logger)
	if err != nil {
		s.Close()
		return nil, err
	}

	deadlines, err := quote.NewDeadlineClock(nil, s.cfg.DeadlineWindow)
	if err != nil {
		s.Close()
		return nil, err
	}

	t := &trading{
		session:   s,
		submitter: submitter,
		exec:      exec,
		deadlines: deadlines,
		journal:   storage.NewJsonlStorage(s.cfg.Journal),
	}

	if s.cfg.PGDSN != "" {
		pg, err := postgres.NewStore(ctx, s.cfg.PGDSN)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		t.pg = pg
	}

	return t, nil
}

func (t *trading) Close() {
	if t.pg != nil {
		t.pg.Close()
	}
	t.session.Close()
}

// recipientOrSigner resolves the recipient flag, defaulting to the signer.
func (t *trading) recipientOrSigner(cmd *cobra.Command) string {
	recipient, _ := cmd.Flags().GetString("recipient")
	if recipient == "" {
		return t.submitter.From().Hex()
	}
	return recipient
}

// record journals one trade attempt. Journal failures are logged, not
// returned: the trade already happened.
func (t *trading) record(ctx context.Context, rec model.TradeRecord) {
	rec.ChainID = t.submitter.ChainID().Uint64()
	rec.SubmittedAt = time.Now().UTC().Format(time.RFC3339)

	if err := t.journal.PutTradeBatch([]model.TradeRecord{rec}); err != nil {
		t.logger.Warn("journal write failed", zap.Error(err))
	}
	if t.pg != nil {
		if err := t.pg.PutTradeBatch(ctx, []model.TradeRecord{rec}); err != nil {
			t.logger.Warn("postgres journal write failed", zap.Error(err))
		}
	}
}

func confirmPrompt() chain.ConfirmFunc {
	reader := bufio.NewReader(os.Stdin)
	return func(call model.CallRequest) bool {
		fmt.Printf("submit call to %s (value %s wei)? [y/N]: ", call.To, call.Value)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}

func printOutcome(outcome model.TradeOutcome) {
	switch outcome.Status {
	case model.OutcomeSucceeded:
		fmt.Printf("confirmed: %s\n", outcome.TxHash)
	case model.OutcomeReverted:
		if outcome.Reason != "" {
			fmt.Printf("reverted: %s (%s)\n", outcome.TxHash, outcome.Reason)
		} else {
			fmt.Printf("reverted: %s\n", outcome.TxHash)
		}
	case model.OutcomeTimedOut:
		fmt.Printf("not confirmed before deadline: %s\n", outcome.TxHash)
	case model.OutcomeCancelled:
		fmt.Println("cancelled before broadcast")
	}
}
