package strategy

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-options/internal/types"
)

// IronCondor sells the nearest OTM call and put and buys the next strikes out
// as protection. Max profit is the net credit, max loss is the wider wing minus
// the credit.
type IronCondor struct {
	filter LiquidityFilter
}

func NewIronCondor(filter LiquidityFilter) *IronCondor {
	return &IronCondor{filter: filter}
}

// Kind implements Constructor.
func (c *IronCondor) Kind() types.StrategyKind {
	return types.StrategyIronCondor
}

// Construct implements Constructor.
func (c *IronCondor) Construct(entry Entry) optional.Option[*types.Position] {
	calls, puts := splitChain(entry.Chain, c.filter)

	callSide := nearestVertical(otmCalls(calls, entry.UnderlyingPrice))
	putSide := nearestVertical(otmPuts(puts, entry.UnderlyingPrice))

	if callSide.IsNone() || putSide.IsNone() {
		return optional.None[*types.Position]()
	}

	return newCreditPosition(c.Kind(), entry, callSide.Unwrap(), putSide.Unwrap())
}
