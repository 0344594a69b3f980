package datasource

import (
	"time"

	"github.com/rxtech-lab/argo-options/internal/logger"
	"github.com/rxtech-lab/argo-options/pkg/errors"
)

// ProviderConfig selects and configures a DataSource.
type ProviderConfig struct {
	Provider Provider

	// duckdb
	PricesPath string
	QuotesPath string

	// polygon
	PolygonAPIKey string

	// synthetic
	Seed            int64
	Anchor          time.Time
	MissingDataRate float64

	// Cache wraps the data source in a CachedDataSource.
	Cache bool
}

// NewDataSource builds the data source named by config.Provider.
func NewDataSource(config ProviderConfig, log *logger.Logger) (DataSource, error) {
	var (
		dataSource DataSource
		err        error
	)

	switch config.Provider {
	case ProviderSynthetic:
		synthetic := DefaultSyntheticConfig(config.Seed, config.Anchor)
		synthetic.MissingDataRate = config.MissingDataRate
		dataSource = NewSyntheticDataSource(synthetic)
	case ProviderDuckDB:
		if config.PricesPath == "" || config.QuotesPath == "" {
			return nil, errors.NewField(errors.ErrCodeMissingParameter, "prices", "duckdb provider needs a prices and a quotes parquet path")
		}

		dataSource, err = newDuckDB(config, log)
	case ProviderPolygon:
		if config.PolygonAPIKey == "" {
			return nil, errors.NewField(errors.ErrCodeMissingParameter, "polygon_api_key", "polygon provider needs an API key")
		}

		dataSource, err = NewPolygonDataSource(config.PolygonAPIKey, log)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported data provider: %s", config.Provider)
	}

	if err != nil {
		return nil, err
	}

	if config.Cache {
		return NewCachedDataSource(dataSource), nil
	}

	return dataSource, nil
}

func newDuckDB(config ProviderConfig, log *logger.Logger) (DataSource, error) {
	duckdb, err := NewDuckDBDataSource(log)
	if err != nil {
		return nil, err
	}

	if err := duckdb.Initialize(config.PricesPath, config.QuotesPath); err != nil {
		_ = duckdb.Close()

		return nil, err
	}

	return duckdb, nil
}
