package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-options/internal/backtest/engine"
	"github.com/rxtech-lab/argo-options/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-options/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-options/internal/backtest/engine/engine_v1/pricing"
	"github.com/rxtech-lab/argo-options/internal/backtest/engine/engine_v1/risk"
	"github.com/rxtech-lab/argo-options/internal/backtest/engine/engine_v1/stats"
	"github.com/rxtech-lab/argo-options/internal/backtest/engine/engine_v1/strategy"
	"github.com/rxtech-lab/argo-options/internal/logger"
	"github.com/rxtech-lab/argo-options/internal/observability"
	"github.com/rxtech-lab/argo-options/internal/types"
	"github.com/rxtech-lab/argo-options/pkg/errors"
	"go.uber.org/zap"
)

const resultsFileName = "results.yaml"

var _ engine.Engine = (*BacktestEngineV1)(nil)

// BacktestEngineV1 simulates an options strategy day by day over a ticker universe.
// A single engine must not run more than one backtest at a time.
type BacktestEngineV1 struct {
	config        BacktestEngineV1Config
	initialized   bool
	resultsFolder string
	log           *logger.Logger
	metrics       *observability.Metrics
	datasource    datasource.DataSource
	pricer        pricing.Pricer
	constructor   strategy.Constructor
	riskManager   *risk.Manager
	commissionFee commission_fee.CommissionFee
	state         *BacktestState
}

func NewBacktestEngineV1() *BacktestEngineV1 {
	return &BacktestEngineV1{
		config:        EmptyConfig(),
		initialized:   false,
		resultsFolder: "",
		log:           nil,
		metrics:       nil,
		datasource:    nil,
		pricer:        pricing.NewProxyPricer(),
		constructor:   nil,
		riskManager:   nil,
		commissionFee: nil,
		state:         nil,
	}
}

// SetLogger replaces the logger. It must be called before Initialize to take effect there.
func (b *BacktestEngineV1) SetLogger(log *logger.Logger) {
	b.log = log
}

// SetMetrics attaches Prometheus collectors. Nil disables metrics.
func (b *BacktestEngineV1) SetMetrics(metrics *observability.Metrics) {
	b.metrics = metrics
}

// Initialize implements engine.Engine.
func (b *BacktestEngineV1) Initialize(config string) error {
	parsed, err := ParseConfig(config)
	if err != nil {
		return err
	}

	return b.InitializeWithConfig(parsed)
}

// InitializeWithConfig validates and applies a typed configuration.
func (b *BacktestEngineV1) InitializeWithConfig(config BacktestEngineV1Config) error {
	if err := config.Validate(); err != nil {
		return err
	}

	if b.log == nil {
		var loggerError error

		b.log, loggerError = logger.NewLogger()
		if loggerError != nil {
			return loggerError
		}
	}

	constructor, err := strategy.NewConstructor(config.Strategy, config.Parameters.LiquidityFilter())
	if err != nil {
		return err
	}

	if b.state == nil {
		b.state, err = NewBacktestState(b.log)
		if err != nil {
			return errors.Wrap(errors.ErrCodeBacktestStateFailed, "failed to create backtest state", err)
		}
	}

	if err := b.state.Initialize(); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestStateFailed, "failed to initialize state", err)
	}

	b.config = config
	b.constructor = constructor
	b.riskManager = risk.NewManager(config.RiskManagement.Rules())
	b.commissionFee = commission_fee.GetCommissionFeeHandler(config.Broker)
	b.initialized = true

	b.log.Debug("Backtest engine initialized",
		zap.String("strategy", string(config.Strategy)),
		zap.Time("start_date", config.StartDate),
		zap.Time("end_date", config.EndDate),
		zap.String("trade_frequency", string(config.TradeFrequency)),
		zap.Int("max_positions", config.MaxPositions),
	)

	return nil
}

// Config returns the active configuration.
func (b *BacktestEngineV1) Config() BacktestEngineV1Config {
	return b.config
}

// SetDataSource implements engine.Engine.
func (b *BacktestEngineV1) SetDataSource(dataSource datasource.DataSource) error {
	if dataSource == nil {
		return errors.NewField(errors.ErrCodeInvalidParameter, "datasource", "datasource cannot be nil")
	}

	b.datasource = dataSource

	return nil
}

// SetPricer implements engine.Engine.
func (b *BacktestEngineV1) SetPricer(pricer pricing.Pricer) error {
	if pricer == nil {
		return errors.NewField(errors.ErrCodeInvalidParameter, "pricer", "pricer cannot be nil")
	}

	b.pricer = pricer

	return nil
}

// SetResultsFolder implements engine.Engine.
func (b *BacktestEngineV1) SetResultsFolder(folder string) error {
	b.resultsFolder = folder

	return nil
}

// GetConfigSchema implements engine.Engine.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	config := b.config

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return "", fmt.Errorf("failed to generate schema: %w", err)
	}

	return schema, nil
}

// Close releases the trade store.
func (b *BacktestEngineV1) Close() error {
	if b.state == nil {
		return nil
	}

	err := b.state.Close()
	b.state = nil
	b.initialized = false

	return err
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(ctx context.Context, tickers []string, callbacks engine.LifecycleCallbacks) (results types.Results, err error) {
	if err := b.preRunCheck(tickers); err != nil {
		return types.Results{}, err
	}

	started := time.Now()
	runID := uuid.New().String()
	tickers = uniqueTickers(tickers)
	dates := CheckDates(b.config.StartDate, b.config.EndDate, b.config.TradeFrequency)

	if callbacks.OnBacktestStart != nil {
		if err := (*callbacks.OnBacktestStart)(runID, tickers, len(dates)); err != nil {
			return types.Results{}, err
		}
	}

	defer func() {
		if callbacks.OnBacktestEnd != nil {
			(*callbacks.OnBacktestEnd)(err)
		}

		b.metrics.RecordRun(string(b.config.Strategy), runStatus(results, err), time.Since(started))
	}()

	if err := b.state.Cleanup(); err != nil {
		return types.Results{}, errors.Wrap(errors.ErrCodeBacktestStateFailed, "failed to reset state", err)
	}

	b.log.Info("Starting backtest",
		zap.String("run_id", runID),
		zap.String("strategy", string(b.config.Strategy)),
		zap.Strings("tickers", tickers),
		zap.Int("steps", len(dates)),
	)

	sim := newSimulationState(runID, tickers, b.config.StartDate)
	progressInterval := b.config.EffectiveProgressInterval()

	for i, date := range dates {
		if ctxErr := ctx.Err(); ctxErr != nil {
			b.log.Info("Backtest cancelled",
				zap.String("run_id", runID),
				zap.Time("date", date),
				zap.Int("closed", len(sim.closed)),
			)

			var writeErr error

			results, writeErr = b.finish(sim, true)
			if writeErr != nil {
				return results, writeErr
			}

			return results, errors.Wrap(errors.ErrCodeBacktestCancelled, "backtest cancelled", ctxErr)
		}

		if err := b.step(ctx, sim, date, callbacks); err != nil {
			return types.Results{}, err
		}

		b.metrics.RecordStep(len(sim.open))

		if callbacks.OnStep != nil {
			(*callbacks.OnStep)(i+1, len(dates), date)
		}

		if callbacks.OnProgress != nil && (i+1)%progressInterval == 0 {
			(*callbacks.OnProgress)(fmt.Sprintf("Processing %s (%d/%d) | open: %d | closed: %d",
				date.Format("2006-01-02"), i+1, len(dates), len(sim.open), len(sim.closed)))
		}
	}

	if err := b.closeRemaining(ctx, sim, callbacks); err != nil {
		return types.Results{}, err
	}

	results, err = b.finish(sim, false)
	if err != nil {
		return results, err
	}

	b.log.Info("Backtest completed",
		zap.String("run_id", runID),
		zap.Int("trades", results.Stats.TotalTrades),
		zap.Float64("total_pnl", results.Stats.TotalPnL),
		zap.Float64("win_rate", results.Stats.WinRate),
	)

	return results, nil
}

// finish aggregates the closed trades and persists them when a results folder is set.
func (b *BacktestEngineV1) finish(sim *simulationState, cancelled bool) (types.Results, error) {
	trades := append([]types.TradeRecord{}, sim.closed...)
	aggregate := stats.Calculate(trades)

	results := types.Results{
		ID:          sim.runID,
		Strategy:    b.config.Strategy,
		StartDate:   b.config.StartDate,
		EndDate:     b.config.EndDate,
		Cancelled:   cancelled,
		Stats:       aggregate.Stats,
		Trades:      trades,
		EquityCurve: aggregate.EquityCurve,
		BySymbol:    aggregate.BySymbol,
	}

	if b.resultsFolder == "" {
		return results, nil
	}

	if err := b.writeResults(&results); err != nil {
		return results, errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to write results", err)
	}

	return results, nil
}

func (b *BacktestEngineV1) writeResults(results *types.Results) error {
	resultFolderPath := getResultFolder(b, results.ID)

	tradesPath, err := b.state.Write(resultFolderPath)
	if err != nil {
		return fmt.Errorf("failed to write trades: %w", err)
	}

	results.TradesFilePath = tradesPath

	if err := types.WriteResults(filepath.Join(resultFolderPath, resultsFileName), *results); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	b.log.Info("Backtest results written",
		zap.String("folder", resultFolderPath),
	)

	return nil
}

func (b *BacktestEngineV1) preRunCheck(tickers []string) error {
	if !b.initialized {
		return errors.New(errors.ErrCodeBacktestNotInitialized, "backtest engine is not initialized")
	}

	if b.datasource == nil {
		b.log.Error("No datasource set")

		return errors.New(errors.ErrCodeBacktestNoDatasource, "no datasource set")
	}

	if len(uniqueTickers(tickers)) == 0 {
		b.log.Error("No tickers given")

		return errors.NewField(errors.ErrCodeEmptyTickerUniverse, "tickers", "ticker universe is empty")
	}

	return nil
}

func runStatus(results types.Results, err error) string {
	switch {
	case results.Cancelled:
		return observability.StatusCancelled
	case err != nil:
		return observability.StatusFailed
	default:
		return observability.StatusCompleted
	}
}

// uniqueTickers drops blanks and duplicates, keeping first occurrence order.
func uniqueTickers(tickers []string) []string {
	seen := make(map[string]struct{}, len(tickers))
	unique := make([]string, 0, len(tickers))

	for _, ticker := range tickers {
		if ticker == "" {
			continue
		}

		if _, ok := seen[ticker]; ok {
			continue
		}

		seen[ticker] = struct{}{}
		unique = append(unique, ticker)
	}

	return unique
}
