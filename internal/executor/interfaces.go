package executor

import (
	"context"
	"errors"
	"time"

	"tradeScope/internal/model"
)

// ErrDeclined is returned by a Submitter when the signer refuses the
// transaction before anything is broadcast.
var ErrDeclined = errors.New("signing declined")

// ErrConfirmationTimeout is returned by a Waiter when no receipt is
// observed before the deadline.
var ErrConfirmationTimeout = errors.New("confirmation not observed before deadline")

// Submitter hands a fully-formed call to the signing and broadcast layer,
// returning the transaction hash or a synchronous rejection.
type Submitter interface {
	Submit(ctx context.Context, call model.CallRequest) (string, error)
}

// Receipt is the confirmation result for a submitted transaction.
type Receipt struct {
	TxHash  string
	Success bool
	Reason  string
}

// Waiter blocks until the transaction is mined or the deadline passes.
type Waiter interface {
	Wait(ctx context.Context, txHash string, deadline time.Time) (Receipt, error)
}

// AllowanceSource reads the current on-chain allowance for a spender.
type AllowanceSource interface {
	Allowance(ctx context.Context, owner, spender, token string) (model.AllowanceState, error)
}

// ApprovalBuilder encodes an ERC20 approve call for submission.
type ApprovalBuilder interface {
	ApprovalCall(token, spender string, amount model.Amount) (model.CallRequest, error)
}
