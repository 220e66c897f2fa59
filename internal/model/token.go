package model

import "strings"

// Token captures ERC20 identity and metadata.
type Token struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
}

// SameAddress reports whether two hex addresses refer to the same account,
// ignoring checksum casing.
func SameAddress(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Is reports whether the token is the one at the given address.
func (t Token) Is(address string) bool {
	return SameAddress(t.Address, address)
}
