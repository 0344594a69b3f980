package datasource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-options/internal/logger"
	"github.com/rxtech-lab/argo-options/internal/types"
	argoErrors "github.com/rxtech-lab/argo-options/pkg/errors"
	"go.uber.org/zap"
)

// DuckDBDataSource serves historical data from two parquet files:
//
//	underlying prices: symbol, date, close
//	option quotes:     symbol, date, expiration, option_type, strike, bid, ask, open_interest, volume
//
// open_interest and volume may be NULL.
type DuckDBDataSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBDataSource opens an in-memory DuckDB database. Call Initialize to attach the parquet files.
func NewDuckDBDataSource(logger *logger.Logger) (*DuckDBDataSource, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, argoErrors.Wrap(argoErrors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	return &DuckDBDataSource{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Initialize creates the underlying_prices and option_quotes views over the given parquet files.
func (d *DuckDBDataSource) Initialize(pricesPath string, quotesPath string) error {
	d.logger.Debug("Initializing DuckDB data source",
		zap.String("prices", pricesPath),
		zap.String("quotes", quotesPath),
	)

	views := []struct {
		name string
		path string
	}{
		{"underlying_prices", pricesPath},
		{"option_quotes", quotesPath},
	}

	for _, view := range views {
		if _, err := d.db.Exec(fmt.Sprintf(`DROP VIEW IF EXISTS %s;`, view.name)); err != nil {
			return fmt.Errorf("failed to drop existing view %s: %w", view.name, err)
		}

		// CREATE VIEW is not expressible with squirrel
		query := fmt.Sprintf(`CREATE VIEW %s AS SELECT * FROM read_parquet('%s');`, view.name, view.path)
		if _, err := d.db.Exec(query); err != nil {
			return argoErrors.Wrapf(argoErrors.ErrCodeDataSourceUnavailable, err, "failed to create view %s", view.name)
		}
	}

	return nil
}

// GetUnderlyingPrice implements DataSource.
func (d *DuckDBDataSource) GetUnderlyingPrice(ctx context.Context, ticker string, date time.Time) (optional.Option[float64], error) {
	query, args, err := d.sq.
		Select("close").
		From("underlying_prices").
		Where(squirrel.Eq{"symbol": ticker}).
		Where("CAST(date AS DATE) = CAST(? AS DATE)", dateKey(date)).
		Limit(1).
		ToSql()
	if err != nil {
		return optional.None[float64](), fmt.Errorf("failed to build price query: %w", err)
	}

	var price float64

	err = d.db.QueryRowContext(ctx, query, args...).Scan(&price)
	if errors.Is(err, sql.ErrNoRows) {
		return optional.None[float64](), nil
	}

	if err != nil {
		return optional.None[float64](), argoErrors.Wrapf(argoErrors.ErrCodeQueryFailed, err, "failed to query price of %s", ticker)
	}

	return optional.Some(price), nil
}

// ListExpirations implements DataSource.
func (d *DuckDBDataSource) ListExpirations(ctx context.Context, ticker string, date time.Time, minDTE int, maxDTE int) ([]time.Time, error) {
	first, last := dteWindow(date, minDTE, maxDTE)

	query, args, err := d.sq.
		Select("DISTINCT CAST(expiration AS DATE) AS expiration").
		From("option_quotes").
		Where(squirrel.Eq{"symbol": ticker}).
		Where("CAST(date AS DATE) = CAST(? AS DATE)", dateKey(date)).
		Where("CAST(expiration AS DATE) BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)", dateKey(first), dateKey(last)).
		OrderBy("expiration").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build expirations query: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, argoErrors.Wrapf(argoErrors.ErrCodeQueryFailed, err, "failed to query expirations of %s", ticker)
	}
	defer rows.Close()

	var expirations []time.Time

	for rows.Next() {
		var expiration time.Time
		if err := rows.Scan(&expiration); err != nil {
			return nil, fmt.Errorf("failed to scan expiration: %w", err)
		}

		expirations = append(expirations, types.Date(expiration))
	}

	return expirations, rows.Err()
}

// GetOptionChain implements DataSource.
func (d *DuckDBDataSource) GetOptionChain(ctx context.Context, ticker string, date time.Time, expiration time.Time) ([]types.OptionQuote, error) {
	query, args, err := d.sq.
		Select("strike", "bid", "ask", "option_type", "open_interest", "volume").
		From("option_quotes").
		Where(squirrel.Eq{"symbol": ticker}).
		Where("CAST(date AS DATE) = CAST(? AS DATE)", dateKey(date)).
		Where("CAST(expiration AS DATE) = CAST(? AS DATE)", dateKey(expiration)).
		OrderBy("option_type", "strike").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build chain query: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, argoErrors.Wrapf(argoErrors.ErrCodeQueryFailed, err, "failed to query option chain of %s", ticker)
	}
	defer rows.Close()

	var chain []types.OptionQuote

	for rows.Next() {
		var (
			quote        types.OptionQuote
			optionType   string
			openInterest sql.NullInt64
			volume       sql.NullInt64
		)

		if err := rows.Scan(&quote.Strike, &quote.Bid, &quote.Ask, &optionType, &openInterest, &volume); err != nil {
			return nil, fmt.Errorf("failed to scan option quote: %w", err)
		}

		quote.OptionType = types.OptionType(optionType)
		quote.OpenInterest = nullableInt(openInterest)
		quote.Volume = nullableInt(volume)
		chain = append(chain, quote)
	}

	return chain, rows.Err()
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	if d.db != nil {
		return d.db.Close()
	}

	return nil
}

func nullableInt(v sql.NullInt64) optional.Option[int64] {
	if !v.Valid {
		return optional.None[int64]()
	}

	return optional.Some(v.Int64)
}
