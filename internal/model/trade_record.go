package model

import "encoding/json"

// TradeRecord is the normalized representation of one trade attempt for
// the journal. Amounts are decimal strings so 256-bit values survive JSON.
type TradeRecord struct {
	ChainID     uint64 `json:"chain_id"`
	Kind        string `json:"kind"`
	Pool        string `json:"pool,omitempty"`
	TokenIn     string `json:"token_in,omitempty"`
	TokenOut    string `json:"token_out,omitempty"`
	AmountIn    string `json:"amount_in"`
	QuotedOut   string `json:"quoted_out"`
	MinOut      string `json:"min_out"`
	Deadline    uint64 `json:"deadline"`
	Status      string `json:"status"`
	TxHash      string `json:"tx_hash,omitempty"`
	Reason      string `json:"reason,omitempty"`
	SubmittedAt string `json:"submitted_at"`
}

// MarshalJSON ensures TradeRecord is encoded with stable field names.
func (tr TradeRecord) MarshalJSON() ([]byte, error) {
	type Alias TradeRecord
	return json.Marshal(Alias(tr))
}

// UnmarshalJSON decodes a TradeRecord from JSON.
func (tr *TradeRecord) UnmarshalJSON(data []byte) error {
	type Alias TradeRecord
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*tr = TradeRecord(a)
	return nil
}
