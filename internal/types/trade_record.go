package types

import "time"

// TradeRecord is the flat, reporting-only projection of a closed Position.
type TradeRecord struct {
	PositionID           string       `yaml:"position_id" json:"position_id"`
	Symbol               string       `yaml:"symbol" json:"symbol"`
	Strategy             StrategyKind `yaml:"strategy" json:"strategy"`
	EntryDate            time.Time    `yaml:"entry_date" json:"entry_date"`
	ExitDate             time.Time    `yaml:"exit_date" json:"exit_date"`
	ExpirationDate       time.Time    `yaml:"expiration_date" json:"expiration_date"`
	DaysHeld             int          `yaml:"days_held" json:"days_held"`
	UnderlyingEntryPrice float64      `yaml:"underlying_entry_price" json:"underlying_entry_price"`
	UnderlyingExitPrice  float64      `yaml:"underlying_exit_price" json:"underlying_exit_price"`
	EntryCost            float64      `yaml:"entry_cost" json:"entry_cost"`
	PnL                  float64      `yaml:"pnl" json:"pnl"`
	// PnLPct is PnL relative to |EntryCost| in percent, 0 when EntryCost is 0.
	PnLPct     float64    `yaml:"pnl_pct" json:"pnl_pct"`
	MaxProfit  float64    `yaml:"max_profit" json:"max_profit"`
	MaxLoss    float64    `yaml:"max_loss" json:"max_loss"`
	ExitReason ExitReason `yaml:"exit_reason" json:"exit_reason"`
	Win        bool       `yaml:"win" json:"win"`
	Contracts  int        `yaml:"contracts" json:"contracts"`
	Fees       float64    `yaml:"fees" json:"fees"`
}
