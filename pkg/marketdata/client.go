// Package marketdata snapshots option market data from any data source into parquet
// files that the duckdb data source can replay.
package marketdata

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-options/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-options/internal/logger"
	"github.com/rxtech-lab/argo-options/internal/types"
	"github.com/rxtech-lab/argo-options/pkg/errors"
	"github.com/rxtech-lab/argo-options/pkg/marketdata/writer"
	"go.uber.org/zap"
)

// OnDownloadProgress is called after each snapshot day.
type OnDownloadProgress = func(current float64, total float64, message string)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	DataPath string `validate:"required"`
}

// DownloadParams holds the parameters for a snapshot request.
type DownloadParams struct {
	Tickers   []string  `validate:"required,min=1,dive,required"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required,gtefield=StartDate"`
	MinDTE    int       `validate:"gte=0"`
	MaxDTE    int       `validate:"gtefield=MinDTE"`
}

// Client copies prices, expirations and option chains from a data source into a
// snapshot writer.
type Client struct {
	source     datasource.DataSource
	config     ClientConfig
	validate   *validator.Validate
	onProgress OnDownloadProgress
	log        *logger.Logger
	newWriter  func(outputDir string) writer.SnapshotWriter
}

// NewClient creates a new market data client reading from source.
func NewClient(config ClientConfig, source datasource.DataSource, log *logger.Logger, onProgress OnDownloadProgress) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	if source == nil {
		return nil, errors.New(errors.ErrCodeBacktestNoDatasource, "data source is required")
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Client{
		source:     source,
		config:     config,
		validate:   validate,
		onProgress: onProgress,
		log:        log,
		newWriter:  writer.NewDuckDBWriter,
	}, nil
}

// Download snapshots every weekday in [StartDate, EndDate]. Days and tickers
// without data are skipped. Cancelling ctx discards the partial snapshot.
func (c *Client) Download(ctx context.Context, params DownloadParams) (writer.Output, error) {
	if err := c.validate.Struct(params); err != nil {
		return writer.Output{}, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download parameters", err)
	}

	snapshotWriter, err := c.setupWriter()
	if err != nil {
		return writer.Output{}, err
	}

	defer func() {
		if err := snapshotWriter.Close(); err != nil {
			c.log.Warn("Failed to close snapshot writer", zap.Error(err))
		}
	}()

	days := tradingDays(params.StartDate, params.EndDate)

	for i, day := range days {
		for _, ticker := range params.Tickers {
			if err := ctx.Err(); err != nil {
				return writer.Output{}, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "download cancelled", err)
			}

			if err := c.snapshot(ctx, snapshotWriter, ticker, day, params); err != nil {
				return writer.Output{}, err
			}
		}

		if c.onProgress != nil {
			c.onProgress(float64(i+1), float64(len(days)), fmt.Sprintf("Downloaded %s", day.Format("2006-01-02")))
		}
	}

	output, err := snapshotWriter.Finalize()
	if err != nil {
		return writer.Output{}, errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to write snapshot", err)
	}

	c.log.Info("Snapshot written",
		zap.String("prices", output.PricesPath),
		zap.String("quotes", output.QuotesPath),
		zap.Int("price_rows", output.Prices),
		zap.Int("quote_rows", output.Quotes),
	)

	return output, nil
}

// snapshot writes one ticker's price and chains for day. Only writer failures are
// returned; missing market data is logged and skipped.
func (c *Client) snapshot(ctx context.Context, snapshotWriter writer.SnapshotWriter, ticker string, day time.Time, params DownloadParams) error {
	price, err := c.source.GetUnderlyingPrice(ctx, ticker, day)
	if err != nil {
		c.log.Debug("Skipping ticker without price", zap.String("ticker", ticker), zap.Time("date", day), zap.Error(err))

		return nil
	}

	if price.IsNone() {
		return nil
	}

	if err := snapshotWriter.WritePrice(writer.PriceRow{Symbol: ticker, Date: day, Close: price.Unwrap()}); err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to write price", err)
	}

	expirations, err := c.source.ListExpirations(ctx, ticker, day, params.MinDTE, params.MaxDTE)
	if err != nil {
		c.log.Debug("Skipping ticker without expirations", zap.String("ticker", ticker), zap.Time("date", day), zap.Error(err))

		return nil
	}

	for _, expiration := range expirations {
		chain, err := c.source.GetOptionChain(ctx, ticker, day, expiration)
		if err != nil {
			c.log.Debug("Skipping expiration without chain",
				zap.String("ticker", ticker), zap.Time("date", day), zap.Time("expiration", expiration), zap.Error(err))

			continue
		}

		for _, quote := range chain {
			row := writer.QuoteRow{Symbol: ticker, Date: day, Expiration: types.Date(expiration), Quote: quote}
			if err := snapshotWriter.WriteQuote(row); err != nil {
				return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to write quote", err)
			}
		}
	}

	return nil
}

// setupWriter creates the data directory when missing and initializes a writer in it.
func (c *Client) setupWriter() (writer.SnapshotWriter, error) {
	if err := os.MkdirAll(c.config.DataPath, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to create data directory", err)
	}

	snapshotWriter := c.newWriter(c.config.DataPath)
	if err := snapshotWriter.Initialize(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeResultWriteFailed, fmt.Sprintf("failed to initialize writer at %s", c.config.DataPath), err)
	}

	return snapshotWriter, nil
}

// tradingDays returns the weekdays between start and end, inclusive.
func tradingDays(start time.Time, end time.Time) []time.Time {
	var days []time.Time

	for day := types.Date(start); !day.After(types.Date(end)); day = day.AddDate(0, 0, 1) {
		if day.Weekday() != time.Saturday && day.Weekday() != time.Sunday {
			days = append(days, day)
		}
	}

	return days
}
