package models

import "testing"

func TestTradeIsClosed(t *testing.T) {
	trade := &Trade{Type: TradeTypeLong, EntryDate: 1, EntryPrice: 100, Contract: 1}
	if trade.IsClosed() {
		t.Error("expected trade without exit date to be open")
	}

	exitDate := int64(2)
	trade.ExitDate = &exitDate
	if !trade.IsClosed() {
		t.Error("expected trade with exit date to be closed")
	}
}

func TestWeightedProfit(t *testing.T) {
	trade := &Trade{Type: TradeTypeShort, EntryPrice: 100, Contract: 3}
	if got := trade.WeightedProfit(); got != 0 {
		t.Errorf("expected 0 for an open trade, got %v", got)
	}

	profit := 5.0
	trade.Profit = &profit
	if got := trade.WeightedProfit(); got != 15 {
		t.Errorf("expected profit scaled by contract, got %v", got)
	}
}
