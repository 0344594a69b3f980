package pricing

import (
	"math"
	"time"

	"github.com/rxtech-lab/argo-options/internal/types"
)

// Pricer marks an open position to a P&L value given the underlying price on date.
// Implementations must be deterministic for the same inputs.
type Pricer interface {
	Mark(position *types.Position, underlyingPrice float64, date time.Time) float64
}

// PricerFunc adapts a plain function to the Pricer interface.
type PricerFunc func(position *types.Position, underlyingPrice float64, date time.Time) float64

// Mark implements Pricer.
func (f PricerFunc) Mark(position *types.Position, underlyingPrice float64, date time.Time) float64 {
	return f(position, underlyingPrice, date)
}

const (
	DefaultProfitFraction = 0.8
	DefaultLossFraction   = 0.5
)

// ProxyPricer is a coarse two-state P&L model. While the underlying trades inside
// the zone bounded by the short strikes the position is worth ProfitFraction of
// its max profit, otherwise it has lost LossFraction of its max loss.
// A structure without a short put (or short call) is unbounded on that side.
type ProxyPricer struct {
	ProfitFraction float64
	LossFraction   float64
}

// NewProxyPricer returns a ProxyPricer with the default 0.8 / 0.5 fractions.
func NewProxyPricer() *ProxyPricer {
	return &ProxyPricer{
		ProfitFraction: DefaultProfitFraction,
		LossFraction:   DefaultLossFraction,
	}
}

// Mark implements Pricer.
func (p *ProxyPricer) Mark(position *types.Position, underlyingPrice float64, _ time.Time) float64 {
	lower := position.ShortStrike(types.OptionTypePut).TakeOr(math.Inf(-1))
	upper := position.ShortStrike(types.OptionTypeCall).TakeOr(math.Inf(1))

	if underlyingPrice >= lower && underlyingPrice <= upper {
		return position.MaxProfit * p.ProfitFraction
	}

	return -position.MaxLoss * p.LossFraction
}
