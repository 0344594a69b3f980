package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-options/internal/types"
)

// TradeGenerator generates closed trade records for aggregator tests and benchmarks.
type TradeGenerator struct {
	rng *rand.Rand
}

// NewTradeGenerator creates a new TradeGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewTradeGenerator(seed int64) *TradeGenerator {
	return &TradeGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how trades are generated.
type GeneratorConfig struct {
	// Symbols are assigned to trades round-robin
	Symbols []string
	// StartDate is the entry date of the first trade
	StartDate time.Time
	// Count is the number of trades to generate
	Count int
	// WinRate is the probability of a winning trade (0.0 to 1.0)
	WinRate float64
	// Credit is the average credit received per trade
	Credit float64
	// Width is the strike width of each wing
	Width float64
	// ZeroCostRate is the probability of a trade with zero entry cost
	ZeroCostRate float64
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbols:      []string{"SPY", "QQQ", "IWM"},
		StartDate:    time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Count:        250,
		WinRate:      0.7,
		Credit:       1.5,
		Width:        5,
		ZeroCostRate: 0,
	}
}

// Generate creates trades that follow the proxy P&L model: winners keep 80%
// of the credit, losers give up half of the max loss.
func (g *TradeGenerator) Generate(config GeneratorConfig) []types.TradeRecord {
	trades := make([]types.TradeRecord, config.Count)
	reasons := []types.ExitReason{
		types.ExitReasonExpiration,
		types.ExitReasonStopLoss,
		types.ExitReasonProfitTarget,
		types.ExitReasonTrailingStop,
		types.ExitReasonBacktestEnd,
	}

	for i := 0; i < config.Count; i++ {
		credit := roundToDecimals(config.Credit*(0.5+g.rng.Float64()), 2)
		maxLoss := roundToDecimals(config.Width-credit, 2)

		entryCost := credit
		if g.rng.Float64() < config.ZeroCostRate {
			entryCost = 0
		}

		pnl := roundToDecimals(-maxLoss*0.5, 2)
		if g.rng.Float64() < config.WinRate {
			pnl = roundToDecimals(credit*0.8, 2)
		}

		pnlPct := 0.0
		if entryCost != 0 {
			pnlPct = pnl / math.Abs(entryCost) * 100
		}

		entry := config.StartDate.AddDate(0, 0, i)
		held := 1 + g.rng.Intn(45)

		trades[i] = types.TradeRecord{
			Symbol:     config.Symbols[i%len(config.Symbols)],
			Strategy:   types.StrategyIronCondor,
			EntryDate:  entry,
			ExitDate:   entry.AddDate(0, 0, held),
			DaysHeld:   held,
			EntryCost:  entryCost,
			PnL:        pnl,
			PnLPct:     pnlPct,
			MaxProfit:  credit,
			MaxLoss:    maxLoss,
			ExitReason: reasons[g.rng.Intn(len(reasons))],
			Win:        pnl > 0,
			Contracts:  1,
		}
	}

	return trades
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
