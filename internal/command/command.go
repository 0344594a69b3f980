// Package command holds the flags and setup shared by the backtest and optimize CLIs.
package command

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-options/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-options/internal/logger"
	"github.com/rxtech-lab/argo-options/internal/observability"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap/zapcore"
)

// Flag names.
const (
	FlagConfig          = "config"
	FlagTickers         = "tickers"
	FlagProvider        = "provider"
	FlagPrices          = "prices"
	FlagQuotes          = "quotes"
	FlagPolygonAPIKey   = "polygon-api-key"
	FlagSeed            = "seed"
	FlagMissingDataRate = "missing-rate"
	FlagNoCache         = "no-cache"
	FlagLogLevel        = "log-level"
	FlagMetricsAddr     = "metrics-addr"
)

// RunFlags returns the flags every command that runs backtests accepts.
func RunFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:     FlagConfig,
			Aliases:  []string{"c"},
			Usage:    "Path to the backtest config `FILE` (YAML)",
			Required: true,
		},
		TickersFlag(),
	}

	flags = append(flags, DataSourceFlags()...)

	return append(flags,
		LogLevelFlag(),
		&cli.StringFlag{
			Name:  FlagMetricsAddr,
			Usage: "Serve Prometheus metrics on `ADDR` while running (e.g. :9090)",
		},
	)
}

// LogLevelFlag returns the flag read by Logger.
func LogLevelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  FlagLogLevel,
		Usage: "Log level (debug, info, warn, error)",
		Value: "warn",
	}
}

// TickersFlag returns the required ticker universe flag.
func TickersFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:     FlagTickers,
		Aliases:  []string{"t"},
		Usage:    "Ticker universe, in rotation order (repeat or comma-separate)",
		Required: true,
	}
}

// DataSourceFlags returns the flags read by DataSource.
func DataSourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    FlagProvider,
			Aliases: []string{"p"},
			Usage: fmt.Sprintf("Data provider to use (%s, %s, %s)",
				datasource.ProviderSynthetic, datasource.ProviderDuckDB, datasource.ProviderPolygon),
			Value: string(datasource.ProviderSynthetic),
		},
		&cli.StringFlag{
			Name:  FlagPrices,
			Usage: "Underlying prices parquet `FILE` (duckdb provider)",
		},
		&cli.StringFlag{
			Name:  FlagQuotes,
			Usage: "Option quotes parquet `FILE` (duckdb provider)",
		},
		&cli.StringFlag{
			Name:    FlagPolygonAPIKey,
			Usage:   "Polygon API key (polygon provider)",
			Sources: cli.EnvVars("POLYGON_API_KEY"),
		},
		&cli.IntFlag{
			Name:  FlagSeed,
			Usage: "Random seed (synthetic provider)",
			Value: 42,
		},
		&cli.FloatFlag{
			Name:  FlagMissingDataRate,
			Usage: "Share of ticker-days without data, between 0 and 1 (synthetic provider)",
			Value: 0,
		},
		&cli.BoolFlag{
			Name:  FlagNoCache,
			Usage: "Do not cache market data lookups",
		},
	}
}

// ReadConfig returns the raw config file named by the config flag.
func ReadConfig(cmd *cli.Command) (string, error) {
	data, err := os.ReadFile(cmd.String(FlagConfig))
	if err != nil {
		return "", fmt.Errorf("failed to read config: %w", err)
	}

	return string(data), nil
}

// Tickers returns the ticker flag values, split on commas and upper-cased.
func Tickers(cmd *cli.Command) []string {
	var tickers []string

	for _, value := range cmd.StringSlice(FlagTickers) {
		for _, ticker := range strings.Split(value, ",") {
			ticker = strings.ToUpper(strings.TrimSpace(ticker))
			if ticker != "" {
				tickers = append(tickers, ticker)
			}
		}
	}

	return tickers
}

// Logger builds a logger at the level named by the log-level flag.
func Logger(cmd *cli.Command) (*logger.Logger, error) {
	level, err := zapcore.ParseLevel(cmd.String(FlagLogLevel))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	return logger.NewLoggerWithLevel(level)
}

// DataSource builds the data source selected by the provider flags. anchor is the
// first date the synthetic provider generates prices for.
func DataSource(cmd *cli.Command, anchor time.Time, log *logger.Logger) (datasource.DataSource, error) {
	return datasource.NewDataSource(datasource.ProviderConfig{
		Provider:        datasource.Provider(cmd.String(FlagProvider)),
		PricesPath:      cmd.String(FlagPrices),
		QuotesPath:      cmd.String(FlagQuotes),
		PolygonAPIKey:   cmd.String(FlagPolygonAPIKey),
		Seed:            cmd.Int(FlagSeed),
		Anchor:          anchor,
		MissingDataRate: cmd.Float(FlagMissingDataRate),
		Cache:           !cmd.Bool(FlagNoCache),
	}, log)
}

// Metrics creates the metrics registry and, when the metrics-addr flag is set,
// starts serving it. The returned stop function is always safe to call.
func Metrics(cmd *cli.Command, log *logger.Logger) (*observability.Metrics, func(), error) {
	metrics := observability.NewMetrics("")

	address := cmd.String(FlagMetricsAddr)
	if address == "" {
		return metrics, func() {}, nil
	}

	server := observability.NewServer(metrics, log)
	if err := server.Start(address); err != nil {
		return nil, nil, err
	}

	stop := func() {
		if err := server.Stop(); err != nil {
			log.Warn("Failed to stop metrics server")
		}
	}

	return metrics, stop, nil
}
