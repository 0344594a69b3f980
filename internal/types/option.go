package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// OptionType is the right carried by an option contract.
type OptionType string

const (
	OptionTypeCall OptionType = "call"
	OptionTypePut  OptionType = "put"
)

// LegAction is the side taken on a single option leg.
type LegAction string

const (
	LegActionBuy  LegAction = "buy"
	LegActionSell LegAction = "sell"
)

// Leg is one option contract inside a multi-leg position.
type Leg struct {
	OptionType OptionType `yaml:"option_type" json:"option_type"`
	Action     LegAction  `yaml:"action" json:"action"`
	Strike     float64    `yaml:"strike" json:"strike"`
}

// IsShort reports whether the leg was sold to open.
func (l Leg) IsShort() bool {
	return l.Action == LegActionSell
}

// OptionQuote is a single contract of an option chain as seen on one trading day.
// OpenInterest and Volume are None when the data source does not provide them.
type OptionQuote struct {
	Strike       float64                `yaml:"strike" json:"strike"`
	Bid          float64                `yaml:"bid" json:"bid"`
	Ask          float64                `yaml:"ask" json:"ask"`
	OptionType   OptionType             `yaml:"option_type" json:"option_type"`
	OpenInterest optional.Option[int64] `yaml:"-" json:"-"`
	Volume       optional.Option[int64] `yaml:"-" json:"-"`
}

// Mid returns the midpoint between bid and ask.
func (q OptionQuote) Mid() float64 {
	return (q.Bid + q.Ask) / 2
}

// StrategyKind identifies a registered strategy constructor.
type StrategyKind string

const (
	StrategyIronCondor     StrategyKind = "iron-condor"
	StrategyBullPutSpread  StrategyKind = "bull-put-spread"
	StrategyBearCallSpread StrategyKind = "bear-call-spread"
)

// AllStrategies lists every strategy kind the engine can construct.
var AllStrategies = []any{
	StrategyIronCondor,
	StrategyBullPutSpread,
	StrategyBearCallSpread,
}

// Date truncates t to midnight UTC of its calendar day.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from start to end.
func DaysBetween(start time.Time, end time.Time) int {
	return int(Date(end).Sub(Date(start)).Hours() / 24)
}
