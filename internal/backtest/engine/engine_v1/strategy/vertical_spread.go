package strategy

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-options/internal/types"
)

// BullPutSpread sells the nearest OTM put and buys the next lower strike.
type BullPutSpread struct {
	filter LiquidityFilter
}

func NewBullPutSpread(filter LiquidityFilter) *BullPutSpread {
	return &BullPutSpread{filter: filter}
}

// Kind implements Constructor.
func (c *BullPutSpread) Kind() types.StrategyKind {
	return types.StrategyBullPutSpread
}

// Construct implements Constructor.
func (c *BullPutSpread) Construct(entry Entry) optional.Option[*types.Position] {
	_, puts := splitChain(entry.Chain, c.filter)

	side := nearestVertical(otmPuts(puts, entry.UnderlyingPrice))
	if side.IsNone() {
		return optional.None[*types.Position]()
	}

	return newCreditPosition(c.Kind(), entry, side.Unwrap())
}

// BearCallSpread sells the nearest OTM call and buys the next higher strike.
type BearCallSpread struct {
	filter LiquidityFilter
}

func NewBearCallSpread(filter LiquidityFilter) *BearCallSpread {
	return &BearCallSpread{filter: filter}
}

// Kind implements Constructor.
func (c *BearCallSpread) Kind() types.StrategyKind {
	return types.StrategyBearCallSpread
}

// Construct implements Constructor.
func (c *BearCallSpread) Construct(entry Entry) optional.Option[*types.Position] {
	calls, _ := splitChain(entry.Chain, c.filter)

	side := nearestVertical(otmCalls(calls, entry.UnderlyingPrice))
	if side.IsNone() {
		return optional.None[*types.Position]()
	}

	return newCreditPosition(c.Kind(), entry, side.Unwrap())
}
