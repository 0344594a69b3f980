package stats

import (
	"math"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-options/internal/types"
	"github.com/rxtech-lab/argo-options/mocks"
	"github.com/stretchr/testify/suite"
)

type AggregatorTestSuite struct {
	suite.Suite
}

func TestAggregatorSuite(t *testing.T) {
	suite.Run(t, new(AggregatorTestSuite))
}

func trade(symbol string, exit time.Time, pnl float64, entryCost float64) types.TradeRecord {
	pnlPct := 0.0
	if entryCost != 0 {
		pnlPct = pnl / entryCost * 100
	}

	return types.TradeRecord{
		Symbol:     symbol,
		EntryDate:  exit.AddDate(0, 0, -7),
		ExitDate:   exit,
		DaysHeld:   7,
		EntryCost:  entryCost,
		PnL:        pnl,
		PnLPct:     pnlPct,
		ExitReason: types.ExitReasonExpiration,
		Win:        pnl > 0,
		Fees:       2.6,
	}
}

func jan(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func (suite *AggregatorTestSuite) fourTrades() []types.TradeRecord {
	return []types.TradeRecord{
		trade("SPY", jan(5), 100, 100),
		trade("QQQ", jan(12), -50, 100),
		trade("SPY", jan(19), 200, 100),
		trade("IWM", jan(26), -25, 100),
	}
}

func (suite *AggregatorTestSuite) TestFourTrades() {
	result := Calculate(suite.fourTrades())
	s := result.Stats

	suite.Equal(4, s.TotalTrades)
	suite.Equal(2, s.WinningTrades)
	suite.Equal(2, s.LosingTrades)
	suite.Equal(225.0, s.TotalPnL)
	suite.Equal(50.0, s.WinRate)
	suite.Equal(56.25, s.AvgPnL)
	suite.Equal(150.0, s.AvgWin)
	suite.Equal(-37.5, s.AvgLoss)
	suite.Equal(4.0, s.ProfitFactor)
	suite.Equal(-50.0, s.MaxDrawdown)
	suite.Equal(4.44, s.SharpeRatio)
	suite.Equal(10.4, s.TotalFees)
	suite.Equal(7.0, s.AvgDaysHeld)
	suite.Equal(200.0, s.MaxTradeProfit)
	suite.Equal(-25.0, s.MaxTradeLoss)
	suite.Equal(4, s.ExitReasons[types.ExitReasonExpiration])

	suite.Len(result.EquityCurve, 4)
	suite.Equal([]float64{100, 50, 250, 225}, cumulative(result.EquityCurve))
	suite.Len(result.BySymbol["SPY"], 2)
	suite.Len(result.BySymbol["QQQ"], 1)
	suite.Len(result.BySymbol["IWM"], 1)
}

func cumulative(curve []types.EquityPoint) []float64 {
	out := make([]float64, 0, len(curve))
	for _, p := range curve {
		out = append(out, p.CumulativePnL)
	}

	return out
}

func (suite *AggregatorTestSuite) TestZeroTrades() {
	for _, input := range [][]types.TradeRecord{nil, {}} {
		result := Calculate(input)
		suite.Equal(0, result.Stats.TotalTrades)
		suite.Equal(0.0, result.Stats.WinRate)
		suite.Equal(0.0, result.Stats.TotalPnL)
		suite.Equal(0.0, result.Stats.ProfitFactor)
		suite.Equal(0.0, result.Stats.MaxDrawdown)
		suite.Equal(0.0, result.Stats.SharpeRatio)
		suite.Empty(result.EquityCurve)
		suite.Empty(result.BySymbol)
	}
}

func (suite *AggregatorTestSuite) TestIdempotent() {
	trades := suite.fourTrades()
	first := Calculate(trades)
	second := Calculate(trades)

	suite.Equal(first, second)
	suite.Equal(suite.fourTrades(), trades)
}

func (suite *AggregatorTestSuite) TestEquityCurveSortsByExitDate() {
	trades := []types.TradeRecord{
		trade("SPY", jan(19), -30, 100),
		trade("SPY", jan(5), 10, 100),
		trade("QQQ", jan(19), 5, 100),
	}

	curve := Calculate(trades).EquityCurve
	suite.Equal(jan(5), curve[0].Date)
	suite.Equal(-30.0, curve[1].TradePnL)
	suite.Equal(5.0, curve[2].TradePnL)
	suite.Equal([]float64{10, -20, -15}, cumulative(curve))
	// running max starts at the first cumulative value
	suite.Equal(-30.0, Calculate(trades).Stats.MaxDrawdown)
}

func (suite *AggregatorTestSuite) TestDrawdownWhenFirstTradeLoses() {
	trades := []types.TradeRecord{
		trade("SPY", jan(5), -40, 100),
		trade("SPY", jan(12), -10, 100),
	}

	suite.Equal(-10.0, Calculate(trades).Stats.MaxDrawdown)
}

func (suite *AggregatorTestSuite) TestOnlyWinners() {
	trades := []types.TradeRecord{
		trade("SPY", jan(5), 40, 100),
		trade("SPY", jan(12), 40, 100),
	}

	s := Calculate(trades).Stats
	suite.Equal(0.0, s.AvgLoss)
	suite.Equal(0.0, s.ProfitFactor)
	// identical returns have zero deviation
	suite.Equal(0.0, s.SharpeRatio)
	suite.Equal(100.0, s.WinRate)
}

func (suite *AggregatorTestSuite) TestZeroPnLCountsAsLoss() {
	s := Calculate([]types.TradeRecord{trade("SPY", jan(5), 0, 0)}).Stats

	suite.Equal(0, s.WinningTrades)
	suite.Equal(1, s.LosingTrades)
	suite.Equal(0.0, s.SharpeRatio)
}

func (suite *AggregatorTestSuite) TestGeneratedTradesInvariants() {
	config := mocks.DefaultConfig()
	config.ZeroCostRate = 0.1
	trades := mocks.NewTradeGenerator(42).Generate(config)

	result := Calculate(trades)
	s := result.Stats

	suite.Equal(len(trades), s.TotalTrades)
	suite.Equal(s.TotalTrades, s.WinningTrades+s.LosingTrades)
	suite.LessOrEqual(s.MaxDrawdown, 0.0)
	suite.GreaterOrEqual(s.WinRate, 0.0)
	suite.LessOrEqual(s.WinRate, 100.0)
	suite.Len(result.EquityCurve, len(trades))

	bySymbol := 0
	for _, records := range result.BySymbol {
		bySymbol += len(records)
	}

	suite.Equal(len(trades), bySymbol)

	reasons := 0
	for _, count := range s.ExitReasons {
		reasons += count
	}

	suite.Equal(len(trades), reasons)

	for i := 1; i < len(result.EquityCurve); i++ {
		suite.False(result.EquityCurve[i].Date.Before(result.EquityCurve[i-1].Date))
	}

	suite.Equal(result, Calculate(trades))
}

func (suite *AggregatorTestSuite) TestSharpeRatio() {
	tests := []struct {
		name    string
		returns []float64
		want    float64
	}{
		{name: "single trade", returns: []float64{5}, want: 0},
		{name: "constant returns", returns: []float64{2, 2, 2}, want: 0},
		// mean 2, population std 1
		{name: "two trades", returns: []float64{1, 3}, want: 2 * math.Sqrt(TradingDaysPerYear/2.0)},
		{name: "negative mean", returns: []float64{-1, -3}, want: -2 * math.Sqrt(TradingDaysPerYear/2.0)},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.InDelta(tc.want, sharpeRatio(tc.returns), 1e-9)
		})
	}
}

func BenchmarkCalculate(b *testing.B) {
	config := mocks.DefaultConfig()
	config.Count = 10000
	trades := mocks.NewTradeGenerator(42).Generate(config)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		Calculate(trades)
	}
}
