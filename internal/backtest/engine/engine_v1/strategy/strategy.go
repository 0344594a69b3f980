package strategy

import (
	"sort"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-options/internal/types"
	"github.com/rxtech-lab/argo-options/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	// OTMCallFactor bounds call candidates: strike must be above price * OTMCallFactor.
	OTMCallFactor = 1.02
	// OTMPutFactor bounds put candidates: strike must be below price * OTMPutFactor.
	OTMPutFactor = 0.98
)

// Entry is everything a constructor sees for one ticker on one check date.
type Entry struct {
	Symbol          string
	Date            time.Time
	Expiration      time.Time
	UnderlyingPrice float64
	Chain           []types.OptionQuote
}

// Constructor builds a position from an option chain, or declines.
// Declining is an expected outcome and is never reported as an error.
type Constructor interface {
	Kind() types.StrategyKind
	Construct(entry Entry) optional.Option[*types.Position]
}

// LiquidityFilter drops quotes below the configured minimums. Zero disables a
// minimum, and a quote without the corresponding field is never dropped by it.
type LiquidityFilter struct {
	MinOpenInterest int64
	MinVolume       int64
}

func (f LiquidityFilter) accept(q types.OptionQuote) bool {
	if f.MinOpenInterest > 0 && q.OpenInterest.IsSome() && q.OpenInterest.Unwrap() < f.MinOpenInterest {
		return false
	}

	if f.MinVolume > 0 && q.Volume.IsSome() && q.Volume.Unwrap() < f.MinVolume {
		return false
	}

	return true
}

// NewConstructor returns the constructor registered for kind.
func NewConstructor(kind types.StrategyKind, filter LiquidityFilter) (Constructor, error) {
	switch kind {
	case types.StrategyIronCondor:
		return NewIronCondor(filter), nil
	case types.StrategyBullPutSpread:
		return NewBullPutSpread(filter), nil
	case types.StrategyBearCallSpread:
		return NewBearCallSpread(filter), nil
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedStrategy, "unsupported strategy: %s", kind)
	}
}

// splitChain partitions the chain into calls and puts sorted by strike ascending,
// skipping illiquid quotes.
func splitChain(chain []types.OptionQuote, filter LiquidityFilter) ([]types.OptionQuote, []types.OptionQuote) {
	var calls, puts []types.OptionQuote

	for _, q := range chain {
		if !filter.accept(q) {
			continue
		}

		switch q.OptionType {
		case types.OptionTypeCall:
			calls = append(calls, q)
		case types.OptionTypePut:
			puts = append(puts, q)
		}
	}

	sort.SliceStable(calls, func(i, j int) bool { return calls[i].Strike < calls[j].Strike })
	sort.SliceStable(puts, func(i, j int) bool { return puts[i].Strike < puts[j].Strike })

	return calls, puts
}

// otmCalls keeps calls strictly above price * OTMCallFactor, nearest first.
func otmCalls(calls []types.OptionQuote, price float64) []types.OptionQuote {
	threshold := price * OTMCallFactor

	var out []types.OptionQuote

	for _, c := range calls {
		if c.Strike > threshold {
			out = append(out, c)
		}
	}

	return out
}

// otmPuts keeps puts strictly below price * OTMPutFactor, nearest first.
func otmPuts(puts []types.OptionQuote, price float64) []types.OptionQuote {
	threshold := price * OTMPutFactor

	var out []types.OptionQuote

	for i := len(puts) - 1; i >= 0; i-- {
		if puts[i].Strike < threshold {
			out = append(out, puts[i])
		}
	}

	return out
}

// vertical is a sold leg plus its protective bought leg.
type vertical struct {
	sold   types.OptionQuote
	bought types.OptionQuote
}

func (v vertical) credit() decimal.Decimal {
	return mid(v.sold).Sub(mid(v.bought))
}

func (v vertical) width() decimal.Decimal {
	return decimal.NewFromFloat(v.bought.Strike).Sub(decimal.NewFromFloat(v.sold.Strike)).Abs()
}

func (v vertical) legs() []types.Leg {
	return []types.Leg{
		{OptionType: v.sold.OptionType, Action: types.LegActionSell, Strike: v.sold.Strike},
		{OptionType: v.bought.OptionType, Action: types.LegActionBuy, Strike: v.bought.Strike},
	}
}

// nearestVertical pairs the nearest OTM quote with the next one further out.
func nearestVertical(otm []types.OptionQuote) optional.Option[vertical] {
	if len(otm) < 2 {
		return optional.None[vertical]()
	}

	return optional.Some(vertical{sold: otm[0], bought: otm[1]})
}

func mid(q types.OptionQuote) decimal.Decimal {
	return decimal.NewFromFloat(q.Bid).Add(decimal.NewFromFloat(q.Ask)).Div(decimal.NewFromInt(2))
}

// newCreditPosition applies the shared credit and risk checks and builds the position.
func newCreditPosition(kind types.StrategyKind, entry Entry, verticals ...vertical) optional.Option[*types.Position] {
	credit := decimal.Zero
	width := decimal.Zero

	var legs []types.Leg

	for _, v := range verticals {
		credit = credit.Add(v.credit())
		width = decimal.Max(width, v.width())
		legs = append(legs, v.legs()...)
	}

	if !credit.IsPositive() {
		return optional.None[*types.Position]()
	}

	maxLoss := width.Sub(credit)
	if !maxLoss.IsPositive() {
		return optional.None[*types.Position]()
	}

	entryCost := credit.InexactFloat64()

	return optional.Some(types.NewPosition(
		entry.Symbol,
		kind,
		entry.Date,
		entry.Expiration,
		legs,
		entryCost,
		entryCost,
		maxLoss.InexactFloat64(),
		entry.UnderlyingPrice,
	))
}
