package engine

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-options/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-options/internal/backtest/engine/engine_v1/pricing"
	"github.com/rxtech-lab/argo-options/internal/types"
)

// Lifecycle callback types for backtest phases.
// Only OnBacktestStart can abort a run, by returning an error. The others are observers.

// OnBacktestStartCallback is called once before the first step.
type OnBacktestStartCallback func(runID string, tickers []string, totalSteps int) error

// OnBacktestEndCallback is called when the run completes (always called via defer).
type OnBacktestEndCallback func(err error)

// OnStepCallback is called after every simulated check date.
type OnStepCallback func(current int, total int, date time.Time)

// OnProgressCallback receives a human-readable status line at a fixed step interval.
type OnProgressCallback func(message string)

// OnPositionOpenedCallback is called after a new position enters the open set.
type OnPositionOpenedCallback func(position types.Position)

// OnPositionClosedCallback is called after a position is closed.
type OnPositionClosedCallback func(trade types.TradeRecord)

// LifecycleCallbacks holds all lifecycle callback functions for the backtest engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnBacktestStart  *OnBacktestStartCallback
	OnBacktestEnd    *OnBacktestEndCallback
	OnStep           *OnStepCallback
	OnProgress       *OnProgressCallback
	OnPositionOpened *OnPositionOpenedCallback
	OnPositionClosed *OnPositionClosedCallback
}

//nolint:interfacebloat // Engine is a core interface that naturally requires multiple methods
type Engine interface {
	// Initialize the engine with the given YAML configuration.
	Initialize(config string) error
	// SetDataSource sets the market data source for the engine.
	SetDataSource(dataSource datasource.DataSource) error
	// SetPricer replaces the P&L model used to mark open positions.
	SetPricer(pricer pricing.Pricer) error
	// SetResultsFolder sets the output directory for saving backtest results.
	// Results are written to <folder>/<strategy>/<start>_<end>/<run id>/.
	// An empty folder disables persistence.
	SetResultsFolder(folder string) error
	// Run simulates the configured strategy over tickers.
	// The context can be used to cancel the backtest; a cancelled run returns the
	// partial results together with an error.
	Run(ctx context.Context, tickers []string, callbacks LifecycleCallbacks) (types.Results, error)
	// GetConfigSchema returns the JSON schema of the engine configuration.
	GetConfigSchema() (string, error)
}
