package executor

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tradeScope/internal/model"
)

const (
	testOwner   = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	testSpender = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	testToken   = "0xcccccccccccccccccccccccccccccccccccccccc"
	testRouter  = "0xdddddddddddddddddddddddddddddddddddddddd"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type submitResult struct {
	hash string
	err  error
}

type fakeSubmitter struct {
	mu      sync.Mutex
	calls   []model.CallRequest
	results []submitResult
}

func (f *fakeSubmitter) Submit(_ context.Context, call model.CallRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if len(f.results) == 0 {
		return "", fmt.Errorf("unexpected submit: %s", call.To)
	}
	res := f.results[0]
	f.results = f.results[1:]
	return res.hash, res.err
}

type waitResult struct {
	receipt Receipt
	err     error
}

type fakeWaiter struct {
	mu      sync.Mutex
	waits   []string
	results map[string]waitResult
	block   chan struct{}
}

func (f *fakeWaiter) Wait(_ context.Context, txHash string, _ time.Time) (Receipt, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.waits = append(f.waits, txHash)
	res, ok := f.results[txHash]
	if !ok {
		return Receipt{}, fmt.Errorf("unexpected wait: %s", txHash)
	}
	return res.receipt, res.err
}

type fakeAllowances struct {
	mu    sync.Mutex
	reads []model.Amount
}

func (f *fakeAllowances) Allowance(_ context.Context, owner, spender, token string) (model.AllowanceState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.reads) == 0 {
		return model.AllowanceState{}, fmt.Errorf("unexpected allowance read")
	}
	current := f.reads[0]
	f.reads = f.reads[1:]
	return model.AllowanceState{Owner: owner, Spender: spender, Token: token, Current: current}, nil
}

type fakeApprovals struct {
	mu      sync.Mutex
	amounts []model.Amount
}

func (f *fakeApprovals) ApprovalCall(token, _ string, amount model.Amount) (model.CallRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.amounts = append(f.amounts, amount)
	return model.CallRequest{To: token, Data: []byte("approve")}, nil
}

func newTestExecutor(t *testing.T, submitter *fakeSubmitter, waiter *fakeWaiter, source AllowanceSource, builder ApprovalBuilder, policy ApprovalPolicy) *Executor {
	t.Helper()

	mgr, err := NewAllowanceManager(source, builder, policy)
	require.NoError(t, err)

	exec, err := New(submitter, waiter, mgr, fixedClock{now: time.Unix(1700000000, 0)}, nil)
	require.NoError(t, err)
	return exec
}

func nativePlan() Plan {
	return Plan{
		Request: model.TradeRequest{
			Kind:     model.TradeBuyCurve,
			Call:     model.CallRequest{To: testRouter, Data: []byte("buy"), Value: model.AmountFromUint64(1_000)},
			Guard:    model.TradeGuard{MinOut: model.AmountFromUint64(1_982)},
			Deadline: time.Unix(1700001200, 0),
		},
	}
}

func erc20Plan() Plan {
	return Plan{
		Request: model.TradeRequest{
			Kind:     model.TradeSwap,
			Call:     model.CallRequest{To: testRouter, Data: []byte("swap")},
			Guard:    model.TradeGuard{MinOut: model.AmountFromUint64(1_982)},
			Deadline: time.Unix(1700001200, 0),
		},
		Spends: []SpendLeg{{
			Token:    testToken,
			Owner:    testOwner,
			Spender:  testRouter,
			Required: model.AmountFromUint64(1_000),
		}},
	}
}

func TestExecuteNativeLegSkipsAllowance(t *testing.T) {
	submitter := &fakeSubmitter{results: []submitResult{{hash: "0xtrade"}}}
	waiter := &fakeWaiter{results: map[string]waitResult{
		"0xtrade": {receipt: Receipt{TxHash: "0xtrade", Success: true}},
	}}
	source := &fakeAllowances{} // any read would fail the test

	exec := newTestExecutor(t, submitter, waiter, source, &fakeApprovals{}, ApprovalUnlimited)

	outcome, err := exec.Execute(context.Background(), nativePlan())
	require.NoError(t, err)
	require.Equal(t, model.OutcomeSucceeded, outcome.Status)
	require.Equal(t, "0xtrade", outcome.TxHash)
	require.Len(t, submitter.calls, 1)
	require.Equal(t, StateIdle, exec.State())
}

func TestExecuteApprovesBeforePrimary(t *testing.T) {
	submitter := &fakeSubmitter{results: []submitResult{{hash: "0xapprove"}, {hash: "0xtrade"}}}
	waiter := &fakeWaiter{results: map[string]waitResult{
		"0xapprove": {receipt: Receipt{TxHash: "0xapprove", Success: true}},
		"0xtrade":   {receipt: Receipt{TxHash: "0xtrade", Success: true}},
	}}
	source := &fakeAllowances{reads: []model.Amount{
		model.AmountFromUint64(10),    // before: insufficient
		model.AmountFromUint64(2_000), // read-back after approval
	}}
	approvals := &fakeApprovals{}

	exec := newTestExecutor(t, submitter, waiter, source, approvals, ApprovalUnlimited)

	outcome, err := exec.Execute(context.Background(), erc20Plan())
	require.NoError(t, err)
	require.Equal(t, model.OutcomeSucceeded, outcome.Status)

	// Approval strictly precedes the primary action, and its confirmation
	// is observed before the trade is submitted.
	require.Len(t, submitter.calls, 2)
	require.Equal(t, testToken, submitter.calls[0].To)
	require.Equal(t, testRouter, submitter.calls[1].To)
	require.Equal(t, []string{"0xapprove", "0xtrade"}, waiter.waits)

	// Unlimited policy grants 2^256-1.
	require.Len(t, approvals.amounts, 1)
	require.Equal(t, maxUint256.String(), approvals.amounts[0].String())
}

func TestExecuteExactPolicyGrantsRequired(t *testing.T) {
	submitter := &fakeSubmitter{results: []submitResult{{hash: "0xapprove"}, {hash: "0xtrade"}}}
	waiter := &fakeWaiter{results: map[string]waitResult{
		"0xapprove": {receipt: Receipt{TxHash: "0xapprove", Success: true}},
		"0xtrade":   {receipt: Receipt{TxHash: "0xtrade", Success: true}},
	}}
	source := &fakeAllowances{reads: []model.Amount{
		model.AmountFromUint64(0),
		model.AmountFromUint64(1_000),
	}}
	approvals := &fakeApprovals{}

	exec := newTestExecutor(t, submitter, waiter, source, approvals, ApprovalExact)

	_, err := exec.Execute(context.Background(), erc20Plan())
	require.NoError(t, err)
	require.Len(t, approvals.amounts, 1)
	require.Equal(t, "1000", approvals.amounts[0].String())
}

func TestExecuteApprovesEveryShortLeg(t *testing.T) {
	tokenB := "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"
	submitter := &fakeSubmitter{results: []submitResult{
		{hash: "0xapproveA"},
		{hash: "0xapproveB"},
		{hash: "0xtrade"},
	}}
	waiter := &fakeWaiter{results: map[string]waitResult{
		"0xapproveA": {receipt: Receipt{TxHash: "0xapproveA", Success: true}},
		"0xapproveB": {receipt: Receipt{TxHash: "0xapproveB", Success: true}},
		"0xtrade":    {receipt: Receipt{TxHash: "0xtrade", Success: true}},
	}}
	source := &fakeAllowances{reads: []model.Amount{
		model.AmountFromUint64(0),     // leg A before
		model.AmountFromUint64(1_000), // leg A read-back
		model.AmountFromUint64(0),     // leg B before
		model.AmountFromUint64(2_000), // leg B read-back
	}}

	exec := newTestExecutor(t, submitter, waiter, source, &fakeApprovals{}, ApprovalExact)

	plan := erc20Plan()
	plan.Request.Kind = model.TradeAddLiquidity
	plan.Spends = append(plan.Spends, SpendLeg{
		Token:    tokenB,
		Owner:    testOwner,
		Spender:  testRouter,
		Required: model.AmountFromUint64(2_000),
	})

	outcome, err := exec.Execute(context.Background(), plan)
	require.NoError(t, err)
	require.Equal(t, model.OutcomeSucceeded, outcome.Status)
	require.Len(t, submitter.calls, 3)
	require.Equal(t, testToken, submitter.calls[0].To)
	require.Equal(t, tokenB, submitter.calls[1].To)
	require.Equal(t, testRouter, submitter.calls[2].To)
}

func TestExecuteSufficientAllowanceSkipsApproval(t *testing.T) {
	submitter := &fakeSubmitter{results: []submitResult{{hash: "0xtrade"}}}
	waiter := &fakeWaiter{results: map[string]waitResult{
		"0xtrade": {receipt: Receipt{TxHash: "0xtrade", Success: true}},
	}}
	source := &fakeAllowances{reads: []model.Amount{model.AmountFromUint64(5_000)}}

	exec := newTestExecutor(t, submitter, waiter, source, &fakeApprovals{}, ApprovalUnlimited)

	outcome, err := exec.Execute(context.Background(), erc20Plan())
	require.NoError(t, err)
	require.Equal(t, model.OutcomeSucceeded, outcome.Status)
	require.Len(t, submitter.calls, 1)
}

func TestExecuteDeclinedApprovalCancels(t *testing.T) {
	submitter := &fakeSubmitter{results: []submitResult{{err: ErrDeclined}}}
	source := &fakeAllowances{reads: []model.Amount{model.AmountFromUint64(0)}}

	exec := newTestExecutor(t, submitter, &fakeWaiter{}, source, &fakeApprovals{}, ApprovalUnlimited)

	outcome, err := exec.Execute(context.Background(), erc20Plan())
	require.NoError(t, err)
	require.Equal(t, model.OutcomeCancelled, outcome.Status)
	require.Empty(t, outcome.TxHash)
}

func TestExecuteDeclinedPrimaryCancels(t *testing.T) {
	submitter := &fakeSubmitter{results: []submitResult{{err: ErrDeclined}}}

	exec := newTestExecutor(t, submitter, &fakeWaiter{}, &fakeAllowances{}, &fakeApprovals{}, ApprovalUnlimited)

	outcome, err := exec.Execute(context.Background(), nativePlan())
	require.NoError(t, err)
	require.Equal(t, model.OutcomeCancelled, outcome.Status)
}

func TestExecuteApprovalRevertFails(t *testing.T) {
	submitter := &fakeSubmitter{results: []submitResult{{hash: "0xapprove"}}}
	waiter := &fakeWaiter{results: map[string]waitResult{
		"0xapprove": {receipt: Receipt{TxHash: "0xapprove", Success: false, Reason: "paused"}},
	}}
	source := &fakeAllowances{reads: []model.Amount{model.AmountFromUint64(0)}}

	exec := newTestExecutor(t, submitter, waiter, source, &fakeApprovals{}, ApprovalUnlimited)

	_, err := exec.Execute(context.Background(), erc20Plan())
	require.ErrorIs(t, err, ErrApprovalFailed)
	require.Equal(t, StateIdle, exec.State())
}

func TestExecuteApprovalTimeoutFails(t *testing.T) {
	submitter := &fakeSubmitter{results: []submitResult{{hash: "0xapprove"}}}
	waiter := &fakeWaiter{results: map[string]waitResult{
		"0xapprove": {err: ErrConfirmationTimeout},
	}}
	source := &fakeAllowances{reads: []model.Amount{model.AmountFromUint64(0)}}

	exec := newTestExecutor(t, submitter, waiter, source, &fakeApprovals{}, ApprovalUnlimited)

	_, err := exec.Execute(context.Background(), erc20Plan())
	require.ErrorIs(t, err, ErrApprovalFailed)
}

func TestExecuteInsufficientReadBackFails(t *testing.T) {
	submitter := &fakeSubmitter{results: []submitResult{{hash: "0xapprove"}}}
	waiter := &fakeWaiter{results: map[string]waitResult{
		"0xapprove": {receipt: Receipt{TxHash: "0xapprove", Success: true}},
	}}
	// Approval confirmed but a competing spend drained it again.
	source := &fakeAllowances{reads: []model.Amount{
		model.AmountFromUint64(0),
		model.AmountFromUint64(5),
	}}

	exec := newTestExecutor(t, submitter, waiter, source, &fakeApprovals{}, ApprovalUnlimited)

	_, err := exec.Execute(context.Background(), erc20Plan())
	require.ErrorIs(t, err, ErrApprovalFailed)
}

func TestExecutePrimaryRevert(t *testing.T) {
	submitter := &fakeSubmitter{results: []submitResult{{hash: "0xtrade"}}}
	waiter := &fakeWaiter{results: map[string]waitResult{
		"0xtrade": {receipt: Receipt{TxHash: "0xtrade", Success: false, Reason: "INSUFFICIENT_OUTPUT_AMOUNT"}},
	}}

	exec := newTestExecutor(t, submitter, waiter, &fakeAllowances{}, &fakeApprovals{}, ApprovalUnlimited)

	outcome, err := exec.Execute(context.Background(), nativePlan())
	require.NoError(t, err)
	require.Equal(t, model.OutcomeReverted, outcome.Status)
	require.Equal(t, "0xtrade", outcome.TxHash)
	require.Equal(t, "INSUFFICIENT_OUTPUT_AMOUNT", outcome.Reason)
}

func TestExecuteConfirmationTimeout(t *testing.T) {
	submitter := &fakeSubmitter{results: []submitResult{{hash: "0xtrade"}}}
	waiter := &fakeWaiter{results: map[string]waitResult{
		"0xtrade": {err: ErrConfirmationTimeout},
	}}

	exec := newTestExecutor(t, submitter, waiter, &fakeAllowances{}, &fakeApprovals{}, ApprovalUnlimited)

	outcome, err := exec.Execute(context.Background(), nativePlan())
	require.NoError(t, err)
	require.Equal(t, model.OutcomeTimedOut, outcome.Status)
	require.Equal(t, "0xtrade", outcome.TxHash)
}

func TestExecuteRejectsConcurrentTrade(t *testing.T) {
	block := make(chan struct{})
	submitter := &fakeSubmitter{results: []submitResult{{hash: "0xtrade"}}}
	waiter := &fakeWaiter{
		results: map[string]waitResult{
			"0xtrade": {receipt: Receipt{TxHash: "0xtrade", Success: true}},
		},
		block: block,
	}

	exec := newTestExecutor(t, submitter, waiter, &fakeAllowances{}, &fakeApprovals{}, ApprovalUnlimited)

	done := make(chan struct{})
	var firstErr error
	go func() {
		defer close(done)
		_, firstErr = exec.Execute(context.Background(), nativePlan())
	}()

	// Wait for the first trade to reach Confirming.
	require.Eventually(t, func() bool {
		return exec.State() == StateConfirming
	}, time.Second, time.Millisecond)

	_, err := exec.Execute(context.Background(), nativePlan())
	require.ErrorIs(t, err, ErrTradeInProgress)

	close(block)
	<-done
	require.NoError(t, firstErr)
	require.Equal(t, StateIdle, exec.State())

	// The executor is reusable once the prior trade is terminal.
	submitter.mu.Lock()
	submitter.results = []submitResult{{hash: "0xtrade"}}
	submitter.mu.Unlock()
	outcome, err := exec.Execute(context.Background(), nativePlan())
	require.NoError(t, err)
	require.Equal(t, model.OutcomeSucceeded, outcome.Status)
}

func TestExecuteRejectsExpiredDeadline(t *testing.T) {
	exec := newTestExecutor(t, &fakeSubmitter{}, &fakeWaiter{}, &fakeAllowances{}, &fakeApprovals{}, ApprovalUnlimited)

	plan := nativePlan()
	plan.Request.Deadline = time.Unix(1600000000, 0)
	_, err := exec.Execute(context.Background(), plan)
	require.Error(t, err)
	require.Equal(t, StateIdle, exec.State())
}
