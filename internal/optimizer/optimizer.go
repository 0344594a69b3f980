// Package optimizer searches a parameter grid by running one backtest per combination.
package optimizer

import (
	"context"
	"fmt"
	"sync"

	"github.com/rxtech-lab/argo-options/internal/backtest/engine"
	engine_v1 "github.com/rxtech-lab/argo-options/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-options/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-options/internal/logger"
	"github.com/rxtech-lab/argo-options/internal/observability"
	"github.com/rxtech-lab/argo-options/internal/types"
	"github.com/rxtech-lab/argo-options/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultStartingCapital = 20000.0

// ProgressCallback receives a status line and the number of finished combinations.
type ProgressCallback func(message string, current int, total int)

// Config describes one optimization.
type Config struct {
	Base    engine_v1.BacktestEngineV1Config
	Tickers []string
	Grid    Grid
	// MaxCombinations caps the evaluated combinations. Zero evaluates the whole grid.
	MaxCombinations int
	// Workers is the number of backtests run at once.
	Workers int
	// StartingCapital is the denominator of the total return percentage.
	StartingCapital float64
}

// Result is the score of one combination.
type Result struct {
	Combination    Combination        `yaml:"combination" json:"combination"`
	TotalReturnPct float64            `yaml:"total_return_pct" json:"total_return_pct"`
	Stats          types.SummaryStats `yaml:"stats" json:"stats"`
}

// Report is the outcome of an optimization. Results are ordered by combination index.
type Report struct {
	Best      Result   `yaml:"best" json:"best"`
	Results   []Result `yaml:"results" json:"results"`
	Total     int      `yaml:"total" json:"total"`
	NoTrades  int      `yaml:"no_trades" json:"no_trades"`
	Invalid   int      `yaml:"invalid" json:"invalid"`
	Cancelled bool     `yaml:"cancelled" json:"cancelled"`
}

type Optimizer struct {
	config     Config
	datasource datasource.DataSource
	log        *logger.Logger
	metrics    *observability.Metrics
}

func NewOptimizer(config Config, dataSource datasource.DataSource, log *logger.Logger, metrics *observability.Metrics) *Optimizer {
	if log == nil {
		log = logger.NewNopLogger()
	}

	if config.Workers < 1 {
		config.Workers = 1
	}

	if config.StartingCapital <= 0 {
		config.StartingCapital = DefaultStartingCapital
	}

	return &Optimizer{
		config:     config,
		datasource: dataSource,
		log:        log,
		metrics:    metrics,
	}
}

// progress serializes progress reporting and tracks the best result so far.
type progress struct {
	mu       sync.Mutex
	done     int
	total    int
	best     *Result
	callback ProgressCallback
}

func (p *progress) finish(result *Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++

	if result != nil && isBetter(*result, p.best) {
		best := *result
		p.best = &best
	}

	if p.callback == nil {
		return
	}

	if p.best == nil {
		p.callback(fmt.Sprintf("Tested %d/%d combinations", p.done, p.total), p.done, p.total)

		return
	}

	p.callback(fmt.Sprintf("Tested %d/%d combinations. Best so far: %.2f%% return", p.done, p.total, p.best.TotalReturnPct), p.done, p.total)
}

// isBetter ranks by return, then by the earlier combination.
func isBetter(candidate Result, best *Result) bool {
	if best == nil {
		return true
	}

	if candidate.TotalReturnPct != best.TotalReturnPct {
		return candidate.TotalReturnPct > best.TotalReturnPct
	}

	return candidate.Combination.Index < best.Combination.Index
}

// Run evaluates every combination and returns the best one. On cancellation
// the report holds what finished and the error has code ErrCodeBacktestCancelled.
func (o *Optimizer) Run(ctx context.Context, onProgress ProgressCallback) (Report, error) {
	if o.datasource == nil {
		return Report{}, errors.New(errors.ErrCodeBacktestNoDatasource, "no datasource set")
	}

	combinations := o.config.Grid.Combinations(o.config.MaxCombinations)
	if len(combinations) == 0 {
		return Report{}, errors.New(errors.ErrCodeOptimizerEmptyGrid, "parameter grid is empty")
	}

	total := len(combinations)
	scored := make([]*Result, total)
	outcomes := make([]string, total)
	tracker := &progress{total: total, callback: onProgress}

	o.log.Info("Starting optimization",
		zap.Int("combinations", total),
		zap.Int("workers", o.config.Workers),
		zap.Strings("tickers", o.config.Tickers),
	)

	if onProgress != nil {
		onProgress(fmt.Sprintf("Testing %d parameter combinations...", total), 0, total)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.config.Workers)

	for i, combination := range combinations {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			result, outcome, err := o.evaluate(gctx, combination)
			if err != nil {
				return err
			}

			scored[i] = result
			outcomes[i] = outcome
			o.metrics.RecordCombination(outcome)
			tracker.finish(result)

			return nil
		})
	}

	err := g.Wait()
	report := buildReport(scored, outcomes, total)

	if ctxErr := ctx.Err(); ctxErr != nil {
		report.Cancelled = true

		o.log.Info("Optimization cancelled", zap.Int("evaluated", len(report.Results)))

		return report, errors.Wrap(errors.ErrCodeBacktestCancelled, "optimization cancelled", ctxErr)
	}

	if err != nil {
		return report, err
	}

	if len(report.Results) == 0 {
		return report, errors.New(errors.ErrCodeOptimizerNoResults, "no combination produced any trade")
	}

	o.log.Info("Optimization completed",
		zap.Int("scored", len(report.Results)),
		zap.Int("no_trades", report.NoTrades),
		zap.Int("invalid", report.Invalid),
		zap.Stringer("best", report.Best.Combination),
		zap.Float64("best_return_pct", report.Best.TotalReturnPct),
	)

	return report, nil
}

// evaluate runs one backtest. Combinations rejected by config validation are
// reported as invalid rather than failing the optimization.
func (o *Optimizer) evaluate(ctx context.Context, combination Combination) (*Result, string, error) {
	backtest := engine_v1.NewBacktestEngineV1()
	backtest.SetLogger(o.log)
	backtest.SetMetrics(o.metrics)

	defer func() {
		if err := backtest.Close(); err != nil {
			o.log.Warn("Failed to close backtest engine", zap.Error(err))
		}
	}()

	if err := backtest.InitializeWithConfig(combination.Apply(o.config.Base)); err != nil {
		if isConfigError(err) {
			o.log.Debug("Skipping invalid combination",
				zap.Stringer("combination", combination),
				zap.Error(err),
			)

			return nil, observability.OutcomeInvalid, nil
		}

		return nil, "", err
	}

	if err := backtest.SetDataSource(o.datasource); err != nil {
		return nil, "", err
	}

	results, err := backtest.Run(ctx, o.config.Tickers, engine.LifecycleCallbacks{})
	if err != nil {
		return nil, "", fmt.Errorf("failed to run combination %s: %w", combination, err)
	}

	if len(results.Trades) == 0 {
		return nil, observability.OutcomeNoTrades, nil
	}

	return &Result{
		Combination:    combination,
		TotalReturnPct: results.Stats.TotalPnL / o.config.StartingCapital * 100,
		Stats:          results.Stats,
	}, observability.OutcomeScored, nil
}

func isConfigError(err error) bool {
	code := errors.GetCode(err)

	return (code >= errors.ErrCodeInvalidParameter && code <= errors.ErrCodeMissingParameter) ||
		code == errors.ErrCodeUnsupportedStrategy ||
		code == errors.ErrCodeVersionMismatch
}

func buildReport(scored []*Result, outcomes []string, total int) Report {
	report := Report{
		Total: total,
	}

	var best *Result

	for i, result := range scored {
		switch outcomes[i] {
		case observability.OutcomeNoTrades:
			report.NoTrades++
		case observability.OutcomeInvalid:
			report.Invalid++
		}

		if result == nil {
			continue
		}

		report.Results = append(report.Results, *result)

		if isBetter(*result, best) {
			best = result
		}
	}

	if best != nil {
		report.Best = *best
	}

	return report
}
