package model

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// Amount is a non-negative token quantity in the token's smallest unit.
// It wraps big.Int so 10^18-scaled values never lose precision. The zero
// value is a zero amount.
type Amount struct {
	value *big.Int
}

// NewAmount copies v into an Amount. Negative values are rejected.
func NewAmount(v *big.Int) (Amount, error) {
	if v == nil {
		return Amount{}, fmt.Errorf("amount is nil")
	}
	if v.Sign() < 0 {
		return Amount{}, fmt.Errorf("amount must be non-negative: %s", v)
	}
	return Amount{value: new(big.Int).Set(v)}, nil
}

// AmountFromString parses a base-10 integer string into an Amount.
func AmountFromString(s string) (Amount, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, fmt.Errorf("invalid amount: %q", s)
	}
	return NewAmount(v)
}

// AmountFromUint64 wraps a uint64 into an Amount.
func AmountFromUint64(v uint64) Amount {
	return Amount{value: new(big.Int).SetUint64(v)}
}

// ZeroAmount returns a zero Amount.
func ZeroAmount() Amount {
	return Amount{}
}

// BigInt returns a copy of the underlying integer.
func (a Amount) BigInt() *big.Int {
	if a.value == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.value)
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.value == nil || a.value.Sign() == 0
}

// Cmp compares a against b, returning -1, 0, or 1.
func (a Amount) Cmp(b Amount) int {
	return a.BigInt().Cmp(b.BigInt())
}

func (a Amount) String() string {
	if a.value == nil {
		return "0"
	}
	return a.value.String()
}

// MarshalJSON encodes the amount as a decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes an amount from a decimal string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := AmountFromString(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
