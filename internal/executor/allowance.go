package executor

import (
	"fmt"
	"math/big"

	"tradeScope/internal/model"
)

// ApprovalPolicy decides how much allowance to request when one is needed.
type ApprovalPolicy string

const (
	// ApprovalUnlimited requests the maximum representable allowance, so one
	// approval covers all future trades through the same spender. This is the
	// conventional one-click UX; it also means a compromised spender could
	// move more than the current trade (see DESIGN.md).
	ApprovalUnlimited ApprovalPolicy = "unlimited"

	// ApprovalExact requests exactly the required amount.
	ApprovalExact ApprovalPolicy = "exact"
)

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// NeedsApproval reports whether the required amount exceeds the current
// allowance.
func NeedsApproval(current, required model.Amount) bool {
	return required.Cmp(current) > 0
}

// AllowanceManager decides whether a trade needs a prior approval and how
// large the approval should be. Allowances are read fresh before every
// trade attempt and re-read after an approval confirms; an approval
// transaction can fail or be front-run, so its effect is never assumed.
type AllowanceManager struct {
	source  AllowanceSource
	builder ApprovalBuilder
	policy  ApprovalPolicy
}

// NewAllowanceManager validates the policy and builds a manager.
func NewAllowanceManager(source AllowanceSource, builder ApprovalBuilder, policy ApprovalPolicy) (*AllowanceManager, error) {
	if source == nil {
		return nil, fmt.Errorf("allowance source is nil")
	}
	if builder == nil {
		return nil, fmt.Errorf("approval builder is nil")
	}
	switch policy {
	case ApprovalUnlimited, ApprovalExact:
	case "":
		policy = ApprovalUnlimited
	default:
		return nil, fmt.Errorf("unknown approval policy: %q", policy)
	}
	return &AllowanceManager{source: source, builder: builder, policy: policy}, nil
}

// ApprovalAmount returns the allowance to request for a required amount,
// per the configured policy.
func (m *AllowanceManager) ApprovalAmount(required model.Amount) model.Amount {
	if m.policy == ApprovalExact {
		return required
	}
	unlimited, _ := model.NewAmount(maxUint256)
	return unlimited
}

// Policy returns the configured approval policy.
func (m *AllowanceManager) Policy() ApprovalPolicy {
	return m.policy
}
