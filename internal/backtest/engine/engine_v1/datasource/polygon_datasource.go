package datasource

import (
	"context"
	"math"
	"time"

	"github.com/moznion/go-optional"
	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-options/internal/logger"
	"github.com/rxtech-lab/argo-options/internal/types"
	"github.com/rxtech-lab/argo-options/pkg/errors"
	"go.uber.org/zap"
)

const (
	// polygonContractsPerChain caps the per-contract price lookups made for one chain.
	polygonContractsPerChain = 50
	polygonMinSpread         = 0.05
	polygonSpreadFraction    = 0.02
	polygonMinBid            = 0.01
	polygonMinAsk            = 0.02
)

// PolygonDataSource fetches daily underlying bars and option contract bars from Polygon.io.
// Bid and ask are derived from each contract's daily close.
type PolygonDataSource struct {
	client *polygon.Client
	logger *logger.Logger
}

func NewPolygonDataSource(apiKey string, logger *logger.Logger) (*PolygonDataSource, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "polygon api key is required")
	}

	return &PolygonDataSource{
		client: polygon.New(apiKey),
		logger: logger,
	}, nil
}

// GetUnderlyingPrice implements DataSource.
func (p *PolygonDataSource) GetUnderlyingPrice(ctx context.Context, ticker string, date time.Time) (optional.Option[float64], error) {
	return p.dailyClose(ctx, ticker, date)
}

// ListExpirations implements DataSource.
func (p *PolygonDataSource) ListExpirations(ctx context.Context, ticker string, date time.Time, minDTE int, maxDTE int) ([]time.Time, error) {
	first, last := dteWindow(date, minDTE, maxDTE)

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListOptionsContractsParams{}.
		WithUnderlyingTicker(models.EQ, ticker).
		WithExpirationDate(models.GTE, models.Date(first)).
		WithExpirationDate(models.LTE, models.Date(last)).
		WithAsOf(models.Date(types.Date(date))).
		WithLimit(1000)

	seen := make(map[time.Time]bool)

	var expirations []time.Time

	iter := p.client.ListOptionsContracts(ctx, params)
	for iter.Next() {
		expiration := types.Date(time.Time(iter.Item().ExpirationDate))
		if !seen[expiration] {
			seen[expiration] = true
			expirations = append(expirations, expiration)
		}
	}

	if err := iter.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to list option contracts of %s", ticker)
	}

	sortDates(expirations)

	return expirations, nil
}

// GetOptionChain implements DataSource.
func (p *PolygonDataSource) GetOptionChain(ctx context.Context, ticker string, date time.Time, expiration time.Time) ([]types.OptionQuote, error) {
	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListOptionsContractsParams{}.
		WithUnderlyingTicker(models.EQ, ticker).
		WithExpirationDate(models.EQ, models.Date(types.Date(expiration))).
		WithAsOf(models.Date(types.Date(date))).
		WithLimit(100)

	var contracts []models.OptionsContract

	iter := p.client.ListOptionsContracts(ctx, params)
	for iter.Next() && len(contracts) < polygonContractsPerChain {
		contracts = append(contracts, iter.Item())
	}

	if err := iter.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to list option contracts of %s", ticker)
	}

	chain := make([]types.OptionQuote, 0, len(contracts))

	for _, contract := range contracts {
		agg, err := p.dailyAgg(ctx, contract.Ticker, date)
		if err != nil {
			p.logger.Debug("Skipping option contract without price",
				zap.String("contract", contract.Ticker),
				zap.Error(err),
			)

			continue
		}

		if agg.IsNone() || agg.Unwrap().Close <= 0 {
			continue
		}

		quote := quoteFromClose(types.OptionType(contract.ContractType), contract.StrikePrice, agg.Unwrap().Close)
		quote.Volume = optional.Some(int64(agg.Unwrap().Volume))
		chain = append(chain, quote)
	}

	return chain, nil
}

// Close implements DataSource.
func (p *PolygonDataSource) Close() error {
	return nil
}

func (p *PolygonDataSource) dailyClose(ctx context.Context, ticker string, date time.Time) (optional.Option[float64], error) {
	agg, err := p.dailyAgg(ctx, ticker, date)
	if err != nil || agg.IsNone() {
		return optional.None[float64](), err
	}

	return optional.Some(agg.Unwrap().Close), nil
}

func (p *PolygonDataSource) dailyAgg(ctx context.Context, ticker string, date time.Time) (optional.Option[models.Agg], error) {
	day := types.Date(date)

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(day),
		To:         models.Millis(day),
	}.WithLimit(1)

	iter := p.client.ListAggs(ctx, params)
	if iter.Next() {
		return optional.Some(iter.Item()), nil
	}

	if err := iter.Err(); err != nil {
		return optional.None[models.Agg](), errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch daily bar of %s", ticker)
	}

	return optional.None[models.Agg](), nil
}

// quoteFromClose synthesizes a two-sided quote around a daily close.
func quoteFromClose(optionType types.OptionType, strike float64, closePrice float64) types.OptionQuote {
	spread := math.Max(polygonMinSpread, closePrice*polygonSpreadFraction)

	return types.OptionQuote{
		Strike:       strike,
		Bid:          math.Max(polygonMinBid, closePrice-spread/2),
		Ask:          math.Max(polygonMinAsk, closePrice+spread/2),
		OptionType:   optionType,
		OpenInterest: optional.None[int64](),
		Volume:       optional.None[int64](),
	}
}
