package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"tradeScope/internal/model"
	"tradeScope/internal/quote"
)

// State names the executor's position in a trade attempt.
type State string

const (
	StateIdle       State = "idle"
	StateQuoting    State = "quoting"
	StateApproving  State = "approving"
	StateSubmitting State = "submitting"
	StateConfirming State = "confirming"
)

var (
	// ErrTradeInProgress means a second trade was attempted while one is
	// still in flight on this executor.
	ErrTradeInProgress = errors.New("trade already in progress")

	// ErrApprovalFailed means the approval transaction reverted, timed out,
	// or left the allowance still insufficient.
	ErrApprovalFailed = errors.New("approval failed")
)

// SpendLeg describes one token input of a trade: which token leaves the
// owner's account and who is allowed to move it. Native inputs ride as call
// value and contribute no leg.
type SpendLeg struct {
	Token    string
	Owner    string
	Spender  string
	Required model.Amount
}

// Plan is one ready-to-execute trade: the resolved request plus the spend
// legs that may need approvals. Swaps have at most one leg; liquidity adds
// can have two.
type Plan struct {
	Request model.TradeRequest
	Spends  []SpendLeg
}

// Executor sequences one trade attempt: approval if needed, then the
// primary action, then the confirmation wait. It handles exactly one
// in-flight trade; it never retries, and every failure is terminal for the
// attempt only.
type Executor struct {
	submitter  Submitter
	waiter     Waiter
	allowances *AllowanceManager
	clock      quote.Clock
	logger     *zap.Logger

	mu    sync.Mutex
	state State
}

// New builds an Executor with its collaborators. A nil clock falls back to
// the system clock.
func New(submitter Submitter, waiter Waiter, allowances *AllowanceManager, clock quote.Clock, logger *zap.Logger) (*Executor, error) {
	if submitter == nil {
		return nil, fmt.Errorf("submitter is nil")
	}
	if waiter == nil {
		return nil, fmt.Errorf("waiter is nil")
	}
	if allowances == nil {
		return nil, fmt.Errorf("allowance manager is nil")
	}
	if clock == nil {
		clock = quote.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		submitter:  submitter,
		waiter:     waiter,
		allowances: allowances,
		clock:      clock,
		logger:     logger,
		state:      StateIdle,
	}, nil
}

// State returns the executor's current state.
func (e *Executor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Executor) begin() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateIdle {
		return fmt.Errorf("%w: state %s", ErrTradeInProgress, e.state)
	}
	e.state = StateQuoting
	return nil
}

func (e *Executor) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Execute runs one trade attempt to a terminal outcome. Approval, when
// needed, is submitted and fully confirmed before the primary action; the
// confirmation wait is bounded by the plan's deadline. A non-nil error
// means the attempt produced no outcome (invalid plan, provider failure,
// approval failure); the caller decides whether to re-quote and try again.
func (e *Executor) Execute(ctx context.Context, plan Plan) (model.TradeOutcome, error) {
	if err := e.begin(); err != nil {
		return model.TradeOutcome{}, err
	}
	defer e.setState(StateIdle)

	if err := e.validate(plan); err != nil {
		return model.TradeOutcome{}, err
	}

	for _, leg := range plan.Spends {
		outcome, done, err := e.ensureAllowance(ctx, leg, plan.Request.Deadline)
		if err != nil {
			return model.TradeOutcome{}, err
		}
		if done {
			return outcome, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return model.TradeOutcome{}, err
	}

	e.setState(StateSubmitting)
	txHash, err := e.submitter.Submit(ctx, plan.Request.Call)
	if errors.Is(err, ErrDeclined) {
		e.logger.Info("trade declined before broadcast", zap.String("kind", string(plan.Request.Kind)))
		return model.TradeOutcome{Status: model.OutcomeCancelled}, nil
	}
	if err != nil {
		return model.TradeOutcome{}, fmt.Errorf("submit %s: %w", plan.Request.Kind, err)
	}
	e.logger.Info("trade submitted",
		zap.String("kind", string(plan.Request.Kind)),
		zap.String("tx_hash", txHash),
		zap.Time("deadline", plan.Request.Deadline),
	)

	e.setState(StateConfirming)
	receipt, err := e.waiter.Wait(ctx, txHash, plan.Request.Deadline)
	if errors.Is(err, ErrConfirmationTimeout) {
		e.logger.Warn("trade confirmation timed out", zap.String("tx_hash", txHash))
		return model.TradeOutcome{Status: model.OutcomeTimedOut, TxHash: txHash}, nil
	}
	if err != nil {
		return model.TradeOutcome{}, fmt.Errorf("wait for %s: %w", txHash, err)
	}

	if !receipt.Success {
		e.logger.Warn("trade reverted", zap.String("tx_hash", txHash), zap.String("reason", receipt.Reason))
		return model.TradeOutcome{Status: model.OutcomeReverted, TxHash: txHash, Reason: receipt.Reason}, nil
	}

	e.logger.Info("trade confirmed", zap.String("tx_hash", txHash))
	return model.TradeOutcome{Status: model.OutcomeSucceeded, TxHash: txHash}, nil
}

func (e *Executor) validate(plan Plan) error {
	if plan.Request.Call.To == "" {
		return fmt.Errorf("trade call target is required")
	}
	if plan.Request.Deadline.IsZero() {
		return fmt.Errorf("trade deadline is required")
	}
	if !plan.Request.Deadline.After(e.clock.Now()) {
		return fmt.Errorf("trade deadline already passed: %s", plan.Request.Deadline)
	}
	for _, leg := range plan.Spends {
		if leg.Token == "" || leg.Owner == "" || leg.Spender == "" {
			return fmt.Errorf("spend leg owner, spender, and token are required")
		}
	}
	return nil
}

// ensureAllowance reads the live allowance and, when short, runs the
// nested approve-and-confirm step. The second return value is true when
// the attempt already reached a terminal outcome (user declined the
// approval).
func (e *Executor) ensureAllowance(ctx context.Context, leg SpendLeg, deadline time.Time) (model.TradeOutcome, bool, error) {
	state, err := e.allowances.source.Allowance(ctx, leg.Owner, leg.Spender, leg.Token)
	if err != nil {
		return model.TradeOutcome{}, false, fmt.Errorf("read allowance: %w", err)
	}
	if !NeedsApproval(state.Current, leg.Required) {
		return model.TradeOutcome{}, false, nil
	}

	e.setState(StateApproving)
	grant := e.allowances.ApprovalAmount(leg.Required)
	e.logger.Info("approval required",
		zap.String("token", leg.Token),
		zap.String("spender", leg.Spender),
		zap.String("current", state.Current.String()),
		zap.String("required", leg.Required.String()),
		zap.String("granting", grant.String()),
	)

	call, err := e.allowances.builder.ApprovalCall(leg.Token, leg.Spender, grant)
	if err != nil {
		return model.TradeOutcome{}, false, fmt.Errorf("build approval: %w", err)
	}

	txHash, err := e.submitter.Submit(ctx, call)
	if errors.Is(err, ErrDeclined) {
		e.logger.Info("approval declined before broadcast", zap.String("token", leg.Token))
		return model.TradeOutcome{Status: model.OutcomeCancelled}, true, nil
	}
	if err != nil {
		return model.TradeOutcome{}, false, fmt.Errorf("submit approval: %w", err)
	}

	receipt, err := e.waiter.Wait(ctx, txHash, deadline)
	if errors.Is(err, ErrConfirmationTimeout) {
		return model.TradeOutcome{}, false, fmt.Errorf("%w: approval %s timed out", ErrApprovalFailed, txHash)
	}
	if err != nil {
		return model.TradeOutcome{}, false, fmt.Errorf("wait for approval %s: %w", txHash, err)
	}
	if !receipt.Success {
		return model.TradeOutcome{}, false, fmt.Errorf("%w: approval %s reverted: %s", ErrApprovalFailed, txHash, receipt.Reason)
	}

	// The approval confirmed, but its effect is verified by reading back:
	// the transaction can be front-run or the token can misreport.
	state, err = e.allowances.source.Allowance(ctx, leg.Owner, leg.Spender, leg.Token)
	if err != nil {
		return model.TradeOutcome{}, false, fmt.Errorf("re-read allowance: %w", err)
	}
	if NeedsApproval(state.Current, leg.Required) {
		return model.TradeOutcome{}, false, fmt.Errorf("%w: allowance %s still below required %s", ErrApprovalFailed, state.Current, leg.Required)
	}

	e.logger.Info("approval confirmed", zap.String("tx_hash", txHash), zap.String("allowance", state.Current.String()))
	return model.TradeOutcome{}, false, nil
}
