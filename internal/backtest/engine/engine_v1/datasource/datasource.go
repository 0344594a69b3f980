package datasource

import (
	"context"
	"sort"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-options/internal/types"
)

// DataSource supplies the market data a backtest needs for one ticker on one date.
//
// An error or an empty result means "no data today": the engine skips the ticker
// for that step and never aborts the run because of it. Implementations used with
// parallel entry checks must be safe for concurrent use.
type DataSource interface {
	// GetUnderlyingPrice returns the closing price of ticker on date, or None when
	// the market was closed or the price is unknown.
	GetUnderlyingPrice(ctx context.Context, ticker string, date time.Time) (optional.Option[float64], error)
	// ListExpirations returns the option expirations listed on date whose DTE lies
	// within [minDTE, maxDTE], in ascending order.
	ListExpirations(ctx context.Context, ticker string, date time.Time, minDTE int, maxDTE int) ([]time.Time, error)
	// GetOptionChain returns the quotes for every contract of ticker expiring on
	// expiration, as seen on date.
	GetOptionChain(ctx context.Context, ticker string, date time.Time, expiration time.Time) ([]types.OptionQuote, error)
	// Close releases any resources held by the data source.
	Close() error
}

// Provider names a concrete DataSource implementation.
type Provider string

const (
	ProviderSynthetic Provider = "synthetic"
	ProviderDuckDB    Provider = "duckdb"
	ProviderPolygon   Provider = "polygon"
)

// AllProviders lists every supported provider.
var AllProviders = []any{
	ProviderSynthetic,
	ProviderDuckDB,
	ProviderPolygon,
}

// dteWindow returns the first and last acceptable expiration dates for date.
func dteWindow(date time.Time, minDTE int, maxDTE int) (time.Time, time.Time) {
	day := types.Date(date)

	return day.AddDate(0, 0, minDTE), day.AddDate(0, 0, maxDTE)
}

func sortDates(dates []time.Time) {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
}
