package engine

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-options/internal/backtest/engine"
	"github.com/rxtech-lab/argo-options/internal/observability"
	"github.com/rxtech-lab/argo-options/internal/types"
	"github.com/rxtech-lab/argo-options/pkg/errors"
	"go.uber.org/zap"
)

// simulationState is the mutable state of one run. Only the driver touches it.
type simulationState struct {
	runID   string
	tickers []string
	start   time.Time
	open    []*types.Position
	closed  []types.TradeRecord
}

func newSimulationState(runID string, tickers []string, start time.Time) *simulationState {
	return &simulationState{
		runID:   runID,
		tickers: tickers,
		start:   types.Date(start),
		open:    nil,
		closed:  nil,
	}
}

func (s *simulationState) hasOpen(ticker string) bool {
	for _, position := range s.open {
		if position.Symbol == ticker {
			return true
		}
	}

	return false
}

// candidates returns the tickers without an open position, rotated so that the
// first one depends on the number of calendar days elapsed since the start.
func (s *simulationState) candidates(date time.Time) []string {
	n := len(s.tickers)
	if n == 0 {
		return nil
	}

	offset := types.DaysBetween(s.start, date) % n
	if offset < 0 {
		offset += n
	}

	candidates := make([]string, 0, n)

	for i := 0; i < n; i++ {
		ticker := s.tickers[(offset+i)%n]
		if !s.hasOpen(ticker) {
			candidates = append(candidates, ticker)
		}
	}

	return candidates
}

// step runs the update phase and then the entry phase for one check date.
func (b *BacktestEngineV1) step(ctx context.Context, sim *simulationState, date time.Time, callbacks engine.LifecycleCallbacks) error {
	if err := b.updatePositions(ctx, sim, date, callbacks); err != nil {
		return err
	}

	if len(sim.open) >= b.config.MaxPositions {
		return nil
	}

	candidates := sim.candidates(date)
	if len(candidates) == 0 {
		return nil
	}

	position, err := b.findEntry(ctx, candidates, date)
	if err != nil {
		return err
	}

	if position.IsNone() {
		return nil
	}

	b.openPosition(sim, position.Unwrap(), callbacks)

	return nil
}

// updatePositions marks every open position and closes those whose exit rule fired.
func (b *BacktestEngineV1) updatePositions(ctx context.Context, sim *simulationState, date time.Time, callbacks engine.LifecycleCallbacks) error {
	remaining := make([]*types.Position, 0, len(sim.open))

	for _, position := range sim.open {
		if expired := b.riskManager.Expired(position, date); expired.IsSome() {
			exitPrice := b.exitPrice(ctx, position, date)
			if err := b.closePosition(sim, position, date, exitPrice, expired.Unwrap(), callbacks); err != nil {
				return err
			}

			continue
		}

		price, err := b.datasource.GetUnderlyingPrice(ctx, position.Symbol, date)
		if err != nil || price.IsNone() {
			b.log.Debug("No underlying price, position not marked",
				zap.String("symbol", position.Symbol),
				zap.Time("date", date),
				zap.Error(err),
			)
			b.metrics.RecordSkipped(observability.StagePrice)

			remaining = append(remaining, position)

			continue
		}

		pnl := b.pricer.Mark(position, price.Unwrap(), date)
		if err := position.Mark(date, pnl); err != nil {
			return err
		}

		if reason := b.riskManager.Evaluate(position); reason.IsSome() {
			if err := b.closePosition(sim, position, date, price.Unwrap(), reason.Unwrap(), callbacks); err != nil {
				return err
			}

			continue
		}

		remaining = append(remaining, position)
	}

	sim.open = remaining

	return nil
}

// closeRemaining force-closes what is still open at the end date.
// Expiration keeps precedence over the forced close.
func (b *BacktestEngineV1) closeRemaining(ctx context.Context, sim *simulationState, callbacks engine.LifecycleCallbacks) error {
	end := types.Date(b.config.EndDate)

	for _, position := range sim.open {
		reason := b.riskManager.Expired(position, end).TakeOr(types.ExitReasonBacktestEnd)

		if err := b.closePosition(sim, position, end, b.exitPrice(ctx, position, end), reason, callbacks); err != nil {
			return err
		}
	}

	sim.open = nil

	return nil
}

func (b *BacktestEngineV1) openPosition(sim *simulationState, position *types.Position, callbacks engine.LifecycleCallbacks) {
	sim.open = append(sim.open, position)

	b.log.Debug("Position opened",
		zap.String("id", position.ID),
		zap.String("symbol", position.Symbol),
		zap.Time("entry_date", position.EntryDate),
		zap.Time("expiration", position.ExpirationDate),
		zap.Float64("credit", position.EntryCost),
		zap.Float64("max_loss", position.MaxLoss),
		zap.Int("contracts", position.Contracts),
	)
	b.metrics.RecordOpened(string(position.Strategy))

	if callbacks.OnPositionOpened != nil {
		(*callbacks.OnPositionOpened)(*position)
	}
}

// closePosition closes position and appends its trade record to the closed set.
// The caller removes it from the open set.
func (b *BacktestEngineV1) closePosition(sim *simulationState, position *types.Position, date time.Time, exitPrice float64, reason types.ExitReason, callbacks engine.LifecycleCallbacks) error {
	if err := position.Close(date, exitPrice, reason); err != nil {
		return err
	}

	trade, err := position.ToTradeRecord()
	if err != nil {
		return err
	}

	if err := b.state.Insert(trade); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestStateFailed, "failed to store trade", err)
	}

	sim.closed = append(sim.closed, trade)

	b.log.Debug("Position closed",
		zap.String("id", trade.PositionID),
		zap.String("symbol", trade.Symbol),
		zap.String("reason", string(reason)),
		zap.Float64("pnl", trade.PnL),
		zap.Int("days_held", trade.DaysHeld),
	)
	b.metrics.RecordClosed(string(reason))

	if callbacks.OnPositionClosed != nil {
		(*callbacks.OnPositionClosed)(trade)
	}

	return nil
}

// exitPrice returns the underlying price on date, or the entry price when none is available.
func (b *BacktestEngineV1) exitPrice(ctx context.Context, position *types.Position, date time.Time) float64 {
	price, err := b.datasource.GetUnderlyingPrice(ctx, position.Symbol, date)
	if err != nil {
		return position.UnderlyingEntryPrice
	}

	return price.TakeOr(position.UnderlyingEntryPrice)
}

func noPosition() optional.Option[*types.Position] {
	return optional.None[*types.Position]()
}
