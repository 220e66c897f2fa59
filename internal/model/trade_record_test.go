package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestTradeRecordJSONRoundTrip(t *testing.T) {
	original := TradeRecord{
		ChainID:     56,
		Kind:        string(TradeSwap),
		Pool:        "0x1111111111111111111111111111111111111111",
		TokenIn:     "0x2222222222222222222222222222222222222222",
		TokenOut:    "0x3333333333333333333333333333333333333333",
		AmountIn:    "1000000000000000000",
		QuotedOut:   "1992000000000000000",
		MinOut:      "1982000000000000000",
		Deadline:    1700001200,
		Status:      string(OutcomeSucceeded),
		TxHash:      "0xdef456",
		SubmittedAt: "2024-01-01T00:00:00Z",
	}

	b, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded TradeRecord
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round-trip mismatch: %+v != %+v", original, decoded)
	}
}
