package types

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-options/pkg/errors"
)

// Position is a simulated multi-leg options position held by the backtest driver.
//
// EntryCost is signed: positive means a net credit was received. MaxProfit and
// MaxLoss are fixed at construction. The exit fields stay None while the
// position is open and are set exactly once by Close.
type Position struct {
	ID                   string       `yaml:"id" json:"id"`
	Symbol               string       `yaml:"symbol" json:"symbol"`
	Strategy             StrategyKind `yaml:"strategy" json:"strategy"`
	EntryDate            time.Time    `yaml:"entry_date" json:"entry_date"`
	ExpirationDate       time.Time    `yaml:"expiration_date" json:"expiration_date"`
	Legs                 []Leg        `yaml:"legs" json:"legs"`
	EntryCost            float64      `yaml:"entry_cost" json:"entry_cost"`
	MaxProfit            float64      `yaml:"max_profit" json:"max_profit"`
	MaxLoss              float64      `yaml:"max_loss" json:"max_loss"`
	UnderlyingEntryPrice float64      `yaml:"underlying_entry_price" json:"underlying_entry_price"`
	// Contracts is the number of identical structures opened, sized from capital per trade.
	Contracts int `yaml:"contracts" json:"contracts"`
	// Fees is the total commission charged for opening and closing every leg.
	Fees float64 `yaml:"fees" json:"fees"`

	CurrentPnL float64 `yaml:"current_pnl" json:"current_pnl"`
	// HighWaterMark is the best mark observed so far, floored at zero.
	HighWaterMark float64 `yaml:"high_water_mark" json:"high_water_mark"`
	DaysHeld      int     `yaml:"days_held" json:"days_held"`

	UnderlyingExitPrice optional.Option[float64]    `yaml:"-" json:"-"`
	ExitDate            optional.Option[time.Time]  `yaml:"-" json:"-"`
	ExitReason          optional.Option[ExitReason] `yaml:"-" json:"-"`
}

// NewPosition creates an open position with a single contract.
func NewPosition(symbol string, strategy StrategyKind, entryDate time.Time, expiration time.Time, legs []Leg, entryCost float64, maxProfit float64, maxLoss float64, underlyingPrice float64) *Position {
	return &Position{
		ID:                   uuid.New().String(),
		Symbol:               symbol,
		Strategy:             strategy,
		EntryDate:            Date(entryDate),
		ExpirationDate:       Date(expiration),
		Legs:                 legs,
		EntryCost:            entryCost,
		MaxProfit:            maxProfit,
		MaxLoss:              maxLoss,
		UnderlyingEntryPrice: underlyingPrice,
		Contracts:            1,
		Fees:                 0,
		CurrentPnL:           0,
		HighWaterMark:        0,
		DaysHeld:             0,
		UnderlyingExitPrice:  optional.None[float64](),
		ExitDate:             optional.None[time.Time](),
		ExitReason:           optional.None[ExitReason](),
	}
}

// IsOpen reports whether the position has not been closed yet.
func (p *Position) IsOpen() bool {
	return p.ExitReason.IsNone()
}

// IsExpired reports whether date is on or after the expiration calendar date.
func (p *Position) IsExpired(date time.Time) bool {
	return !Date(date).Before(p.ExpirationDate)
}

// ShortStrike returns the strike of the sold leg with the given option type.
func (p *Position) ShortStrike(optionType OptionType) optional.Option[float64] {
	for _, leg := range p.Legs {
		if leg.OptionType == optionType && leg.IsShort() {
			return optional.Some(leg.Strike)
		}
	}

	return optional.None[float64]()
}

// Mark records the P&L of the position as of date.
func (p *Position) Mark(date time.Time, pnl float64) error {
	if !p.IsOpen() {
		return errors.Newf(errors.ErrCodePositionAlreadyClosed, "position %s on %s is already closed", p.ID, p.Symbol)
	}

	p.CurrentPnL = pnl
	if pnl > p.HighWaterMark {
		p.HighWaterMark = pnl
	}

	p.DaysHeld = DaysBetween(p.EntryDate, date)

	return nil
}

// Close transitions the position to closed. It fails if the position was closed before,
// leaving the recorded exit untouched.
func (p *Position) Close(date time.Time, underlyingPrice float64, reason ExitReason) error {
	if !p.IsOpen() {
		return errors.Newf(errors.ErrCodePositionAlreadyClosed, "position %s on %s is already closed", p.ID, p.Symbol)
	}

	exit := Date(date)
	if exit.Before(p.EntryDate) {
		exit = p.EntryDate
	}

	p.ExitDate = optional.Some(exit)
	p.UnderlyingExitPrice = optional.Some(underlyingPrice)
	p.ExitReason = optional.Some(reason)
	p.DaysHeld = DaysBetween(p.EntryDate, exit)

	return nil
}

// ToTradeRecord projects a closed position into a flat trade record.
func (p *Position) ToTradeRecord() (TradeRecord, error) {
	if p.IsOpen() {
		return TradeRecord{}, errors.Newf(errors.ErrCodeInvalidParameter, "position %s on %s is still open", p.ID, p.Symbol)
	}

	pnlPct := 0.0
	if p.EntryCost != 0 {
		pnlPct = p.CurrentPnL / math.Abs(p.EntryCost) * 100
	}

	return TradeRecord{
		PositionID:           p.ID,
		Symbol:               p.Symbol,
		Strategy:             p.Strategy,
		EntryDate:            p.EntryDate,
		ExitDate:             p.ExitDate.Unwrap(),
		ExpirationDate:       p.ExpirationDate,
		DaysHeld:             p.DaysHeld,
		UnderlyingEntryPrice: p.UnderlyingEntryPrice,
		UnderlyingExitPrice:  p.UnderlyingExitPrice.Unwrap(),
		EntryCost:            p.EntryCost,
		PnL:                  p.CurrentPnL,
		PnLPct:               pnlPct,
		MaxProfit:            p.MaxProfit,
		MaxLoss:              p.MaxLoss,
		ExitReason:           p.ExitReason.Unwrap(),
		Win:                  p.CurrentPnL > 0,
		Contracts:            p.Contracts,
		Fees:                 p.Fees,
	}, nil
}
