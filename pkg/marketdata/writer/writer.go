package writer

import (
	"time"

	"github.com/rxtech-lab/argo-options/internal/types"
)

const (
	PricesFileName = "prices.parquet"
	QuotesFileName = "quotes.parquet"
)

// PriceRow is the closing price of one underlying on one day.
type PriceRow struct {
	Symbol string
	Date   time.Time
	Close  float64
}

// QuoteRow is one option quote of an underlying's chain as seen on Date.
type QuoteRow struct {
	Symbol     string
	Date       time.Time
	Expiration time.Time
	Quote      types.OptionQuote
}

// Output holds the files produced by Finalize.
type Output struct {
	PricesPath string `yaml:"prices_path" json:"prices_path"`
	QuotesPath string `yaml:"quotes_path" json:"quotes_path"`
	Prices     int    `yaml:"prices" json:"prices"`
	Quotes     int    `yaml:"quotes" json:"quotes"`
}

// SnapshotWriter persists a market data snapshot in the layout read by the duckdb data source.
type SnapshotWriter interface {
	// Initialize sets up the writer, creating its tables.
	Initialize() error
	// WritePrice persists a single underlying price.
	WritePrice(row PriceRow) error
	// WriteQuote persists a single option quote.
	WriteQuote(row QuoteRow) error
	// Finalize commits pending rows and exports the parquet files.
	Finalize() (Output, error)
	// Close releases any resources held by the writer.
	Close() error
	// GetOutputDir returns the directory the parquet files are written to.
	GetOutputDir() string
}
