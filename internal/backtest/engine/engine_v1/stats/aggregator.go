package stats

import (
	"math"
	"sort"

	mstats "github.com/montanaflynn/stats"
	"github.com/rxtech-lab/argo-options/internal/types"
	"github.com/shopspring/decimal"
)

const (
	// TradingDaysPerYear annualizes the trade-level Sharpe ratio.
	TradingDaysPerYear = 252
	// StatsPrecision is the number of decimals kept in SummaryStats.
	StatsPrecision = 2
)

// Aggregate is the output of Calculate.
type Aggregate struct {
	Stats       types.SummaryStats
	EquityCurve []types.EquityPoint
	BySymbol    map[string][]types.TradeRecord
}

// Calculate derives summary statistics, the equity curve and the per-symbol
// breakdown from closed trade records. It does not modify its input and
// returns identical output for identical input.
func Calculate(trades []types.TradeRecord) Aggregate {
	result := Aggregate{
		Stats:       types.SummaryStats{ExitReasons: map[types.ExitReason]int{}},
		EquityCurve: []types.EquityPoint{},
		BySymbol:    map[string][]types.TradeRecord{},
	}

	n := len(trades)
	if n == 0 {
		return result
	}

	wins, losses, totalDays := 0, 0, 0
	totalPnL, sumWin, sumLoss, totalFees := 0.0, 0.0, 0.0, 0.0
	maxProfit, maxLoss := math.Inf(-1), math.Inf(1)
	pnlPcts := make([]float64, 0, n)

	for _, t := range trades {
		totalPnL += t.PnL
		totalFees += t.Fees
		totalDays += t.DaysHeld
		pnlPcts = append(pnlPcts, t.PnLPct)
		maxProfit = math.Max(maxProfit, t.PnL)
		maxLoss = math.Min(maxLoss, t.PnL)

		if t.Win {
			wins++
			sumWin += t.PnL
		} else {
			losses++
			sumLoss += t.PnL
		}

		result.Stats.ExitReasons[t.ExitReason]++
		result.BySymbol[t.Symbol] = append(result.BySymbol[t.Symbol], t)
	}

	avgWin := 0.0
	if wins > 0 {
		avgWin = sumWin / float64(wins)
	}

	avgLoss := 0.0
	if losses > 0 {
		avgLoss = sumLoss / float64(losses)
	}

	profitFactor := 0.0
	if avgLoss != 0 {
		profitFactor = math.Abs(avgWin / avgLoss)
	}

	result.EquityCurve = equityCurve(trades)

	result.Stats.TotalTrades = n
	result.Stats.WinningTrades = wins
	result.Stats.LosingTrades = losses
	result.Stats.WinRate = round(float64(wins) / float64(n) * 100)
	result.Stats.TotalPnL = round(totalPnL)
	result.Stats.AvgPnL = round(totalPnL / float64(n))
	result.Stats.AvgWin = round(avgWin)
	result.Stats.AvgLoss = round(avgLoss)
	result.Stats.ProfitFactor = round(profitFactor)
	result.Stats.MaxDrawdown = round(maxDrawdown(result.EquityCurve))
	result.Stats.SharpeRatio = round(sharpeRatio(pnlPcts))
	result.Stats.TotalFees = round(totalFees)
	result.Stats.AvgDaysHeld = round(float64(totalDays) / float64(n))
	result.Stats.MaxTradeProfit = round(maxProfit)
	result.Stats.MaxTradeLoss = round(maxLoss)

	return result
}

// equityCurve accumulates P&L in exit-date order. Trades closing on the same
// date keep their input order.
func equityCurve(trades []types.TradeRecord) []types.EquityPoint {
	sorted := make([]types.TradeRecord, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ExitDate.Before(sorted[j].ExitDate)
	})

	curve := make([]types.EquityPoint, 0, len(sorted))
	cumulative := 0.0

	for _, t := range sorted {
		cumulative += t.PnL
		curve = append(curve, types.EquityPoint{
			Date:          t.ExitDate,
			CumulativePnL: cumulative,
			TradePnL:      t.PnL,
		})
	}

	return curve
}

// maxDrawdown is min(cumulative - running max) with the running max seeded by
// the first point of the curve.
func maxDrawdown(curve []types.EquityPoint) float64 {
	if len(curve) == 0 {
		return 0
	}

	runningMax := curve[0].CumulativePnL
	drawdown := 0.0

	for _, p := range curve {
		runningMax = math.Max(runningMax, p.CumulativePnL)
		drawdown = math.Min(drawdown, p.CumulativePnL-runningMax)
	}

	return drawdown
}

// sharpeRatio uses the population standard deviation of per-trade returns.
func sharpeRatio(returns []float64) float64 {
	n := len(returns)
	if n < 2 {
		return 0
	}

	mean, err := mstats.Mean(returns)
	if err != nil {
		return 0
	}

	std, err := mstats.StandardDeviationPopulation(returns)
	if err != nil || std == 0 {
		return 0
	}

	return mean / std * math.Sqrt(TradingDaysPerYear/float64(n))
}

func round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(StatsPrecision).InexactFloat64()
}
