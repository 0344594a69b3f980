package mocks

import (
	"testing"
)

func TestTradeGenerator_Generate(t *testing.T) {
	gen := NewTradeGenerator(42)
	config := DefaultConfig()
	config.Count = 100

	trades := gen.Generate(config)

	if len(trades) != 100 {
		t.Errorf("expected 100 trades, got %d", len(trades))
	}

	for i, tr := range trades {
		if tr.ExitDate.Before(tr.EntryDate) {
			t.Errorf("exit before entry at index %d", i)
		}

		if tr.Win != (tr.PnL > 0) {
			t.Errorf("win flag inconsistent with pnl at index %d", i)
		}

		if tr.Symbol != config.Symbols[i%len(config.Symbols)] {
			t.Errorf("unexpected symbol %s at index %d", tr.Symbol, i)
		}

		if tr.MaxLoss <= 0 {
			t.Errorf("non-positive max loss at index %d", i)
		}
	}
}

func TestTradeGenerator_Reproducibility(t *testing.T) {
	config := DefaultConfig()
	config.Count = 50

	first := NewTradeGenerator(7).Generate(config)
	second := NewTradeGenerator(7).Generate(config)

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("trades differ at index %d", i)
		}
	}
}

func TestTradeGenerator_ZeroCost(t *testing.T) {
	config := DefaultConfig()
	config.Count = 20
	config.ZeroCostRate = 1

	for i, tr := range NewTradeGenerator(1).Generate(config) {
		if tr.EntryCost != 0 || tr.PnLPct != 0 {
			t.Errorf("expected zero cost trade at index %d", i)
		}
	}
}
