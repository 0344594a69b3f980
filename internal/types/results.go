package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SummaryStats aggregates every closed trade of a run.
type SummaryStats struct {
	TotalTrades   int     `yaml:"total_trades" json:"total_trades"`
	WinningTrades int     `yaml:"winning_trades" json:"winning_trades"`
	LosingTrades  int     `yaml:"losing_trades" json:"losing_trades"`
	WinRate       float64 `yaml:"win_rate" json:"win_rate"`
	TotalPnL      float64 `yaml:"total_pnl" json:"total_pnl"`
	AvgPnL        float64 `yaml:"avg_pnl" json:"avg_pnl"`
	AvgWin        float64 `yaml:"avg_win" json:"avg_win"`
	AvgLoss       float64 `yaml:"avg_loss" json:"avg_loss"`
	// ProfitFactor is |AvgWin / AvgLoss|, 0 when there are no losses.
	ProfitFactor float64 `yaml:"profit_factor" json:"profit_factor"`
	// MaxDrawdown is the deepest fall of cumulative P&L below its running peak. Always <= 0.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
	// SharpeRatio is a trade-level approximation annualized with sqrt(252/n).
	SharpeRatio    float64            `yaml:"sharpe_ratio" json:"sharpe_ratio"`
	TotalFees      float64            `yaml:"total_fees" json:"total_fees"`
	AvgDaysHeld    float64            `yaml:"avg_days_held" json:"avg_days_held"`
	MaxTradeProfit float64            `yaml:"max_trade_profit" json:"max_trade_profit"`
	MaxTradeLoss   float64            `yaml:"max_trade_loss" json:"max_trade_loss"`
	ExitReasons    map[ExitReason]int `yaml:"exit_reasons" json:"exit_reasons"`
}

// EquityPoint is one step of the cumulative P&L curve, ordered by exit date.
type EquityPoint struct {
	Date          time.Time `yaml:"date" json:"date"`
	CumulativePnL float64   `yaml:"cumulative_pnl" json:"cumulative_pnl"`
	TradePnL      float64   `yaml:"trade_pnl" json:"trade_pnl"`
}

// Results is everything a backtest run reports.
type Results struct {
	// ID is the unique identifier for this backtest run.
	ID        string       `yaml:"id" json:"id"`
	Strategy  StrategyKind `yaml:"strategy" json:"strategy"`
	StartDate time.Time    `yaml:"start_date" json:"start_date"`
	EndDate   time.Time    `yaml:"end_date" json:"end_date"`
	// Cancelled is true when the run stopped before reaching the end date.
	Cancelled   bool                     `yaml:"cancelled" json:"cancelled"`
	Stats       SummaryStats             `yaml:"stats" json:"stats"`
	Trades      []TradeRecord            `yaml:"trades" json:"trades"`
	EquityCurve []EquityPoint            `yaml:"equity_curve" json:"equity_curve"`
	BySymbol    map[string][]TradeRecord `yaml:"by_symbol" json:"by_symbol"`
	// TradesFilePath is the path to the trades parquet file, when results were persisted.
	TradesFilePath string `yaml:"trades_file_path,omitempty" json:"trades_file_path,omitempty"`
}

// WriteResults writes the results as YAML to path.
func WriteResults(path string, results Results) error {
	data, err := yaml.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal results to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write results to file: %w", err)
	}

	return nil
}

// ReadResults loads results previously written by WriteResults.
func ReadResults(path string) (Results, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Results{}, fmt.Errorf("failed to read results file: %w", err)
	}

	var results Results
	if err := yaml.Unmarshal(data, &results); err != nil {
		return Results{}, fmt.Errorf("failed to unmarshal results: %w", err)
	}

	return results, nil
}
