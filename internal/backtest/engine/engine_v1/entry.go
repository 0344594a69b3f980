package engine

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-options/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-options/internal/backtest/engine/engine_v1/strategy"
	"github.com/rxtech-lab/argo-options/internal/observability"
	"github.com/rxtech-lab/argo-options/internal/types"
	"github.com/rxtech-lab/argo-options/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// findEntry returns the position built for the first candidate, in rotation order,
// whose entry check succeeds. With more than one entry worker the candidates are
// checked concurrently but the winner is still chosen by rotation order.
func (b *BacktestEngineV1) findEntry(ctx context.Context, candidates []string, date time.Time) (optional.Option[*types.Position], error) {
	if b.config.EntryWorkers <= 1 || len(candidates) == 1 {
		for _, ticker := range candidates {
			if position := b.checkEntry(ctx, ticker, date); position.IsSome() {
				return position, nil
			}
		}

		return noPosition(), nil
	}

	found := make([]optional.Option[*types.Position], len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.config.EntryWorkers)

	for i, ticker := range candidates {
		g.Go(func() error {
			found[i] = b.checkEntry(gctx, ticker, date)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return noPosition(), err
	}

	for _, position := range found {
		if position.IsSome() {
			return position, nil
		}
	}

	return noPosition(), nil
}

// checkEntry looks up market data for ticker on date and asks the strategy constructor
// for a position. Missing data at any stage means no entry today.
func (b *BacktestEngineV1) checkEntry(ctx context.Context, ticker string, date time.Time) optional.Option[*types.Position] {
	price, err := b.datasource.GetUnderlyingPrice(ctx, ticker, date)
	if err != nil || price.IsNone() {
		b.skip(observability.StagePrice, ticker, date, err)

		return noPosition()
	}

	expirations, err := b.datasource.ListExpirations(ctx, ticker, date, b.config.MinDTE, b.config.MaxDTE)
	if err != nil || len(expirations) == 0 {
		b.skip(observability.StageExpirations, ticker, date, err)

		return noPosition()
	}

	expiration := expirations[0]

	chain, err := b.datasource.GetOptionChain(ctx, ticker, date, expiration)
	if err != nil || len(chain) == 0 {
		b.skip(observability.StageChain, ticker, date, err)

		return noPosition()
	}

	position := b.constructor.Construct(strategy.Entry{
		Symbol:          ticker,
		Date:            date,
		Expiration:      expiration,
		UnderlyingPrice: price.Unwrap(),
		Chain:           chain,
	})
	if position.IsNone() {
		b.skip(observability.StageConstruct, ticker, date, nil)

		return noPosition()
	}

	opened := position.Unwrap()
	opened.Contracts = utils.CalculateContracts(b.config.CapitalPerTrade, opened.MaxLoss, len(opened.Legs), b.commissionFee)
	opened.Fees = commission_fee.RoundTrip(b.commissionFee, len(opened.Legs), opened.Contracts)

	return optional.Some(opened)
}

func (b *BacktestEngineV1) skip(stage string, ticker string, date time.Time, err error) {
	b.log.Debug("Entry check skipped",
		zap.String("stage", stage),
		zap.String("symbol", ticker),
		zap.Time("date", date),
		zap.Error(err),
	)
	b.metrics.RecordSkipped(stage)
}
