package executor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tradeScope/internal/model"
)

func TestNeedsApproval(t *testing.T) {
	cases := []struct {
		name     string
		current  uint64
		required uint64
		want     bool
	}{
		{name: "zero allowance", current: 0, required: 1, want: true},
		{name: "short allowance", current: 999, required: 1_000, want: true},
		{name: "exact allowance", current: 1_000, required: 1_000, want: false},
		{name: "surplus allowance", current: 2_000, required: 1_000, want: false},
		{name: "zero required", current: 0, required: 0, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NeedsApproval(model.AmountFromUint64(tc.current), model.AmountFromUint64(tc.required))
			require.Equal(t, tc.want, got)
		})
	}
}

func TestApprovalAmountByPolicy(t *testing.T) {
	required := model.AmountFromUint64(1_234)

	unlimited, err := NewAllowanceManager(&fakeAllowances{}, &fakeApprovals{}, ApprovalUnlimited)
	require.NoError(t, err)
	require.Equal(t, maxUint256.String(), unlimited.ApprovalAmount(required).String())

	exact, err := NewAllowanceManager(&fakeAllowances{}, &fakeApprovals{}, ApprovalExact)
	require.NoError(t, err)
	require.Equal(t, "1234", exact.ApprovalAmount(required).String())
}

func TestNewAllowanceManagerPolicy(t *testing.T) {
	mgr, err := NewAllowanceManager(&fakeAllowances{}, &fakeApprovals{}, "")
	require.NoError(t, err)
	require.Equal(t, ApprovalUnlimited, mgr.Policy())

	_, err = NewAllowanceManager(&fakeAllowances{}, &fakeApprovals{}, "infinite")
	require.Error(t, err)

	_, err = NewAllowanceManager(nil, &fakeApprovals{}, ApprovalExact)
	require.Error(t, err)

	_, err = NewAllowanceManager(&fakeAllowances{}, nil, ApprovalExact)
	require.Error(t, err)
}
