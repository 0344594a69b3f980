package risk

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-options/internal/types"
)

// Rules holds the risk-management switches and their thresholds in percent.
type Rules struct {
	StopLossEnabled     bool
	StopLossPct         float64
	ProfitTargetEnabled bool
	ProfitTargetPct     float64
	TrailingStopEnabled bool
	TrailingStopPct     float64
}

// Manager decides whether an open position must be closed.
type Manager struct {
	rules Rules
}

func NewManager(rules Rules) *Manager {
	return &Manager{rules: rules}
}

// Expired reports whether the position has reached its expiration on date.
// Expiration is checked before any market data is needed and cannot be disabled.
func (m *Manager) Expired(position *types.Position, date time.Time) optional.Option[types.ExitReason] {
	if position.IsExpired(date) {
		return optional.Some(types.ExitReasonExpiration)
	}

	return optional.None[types.ExitReason]()
}

// Evaluate applies the P&L rules to a freshly marked position.
// The first matching rule wins: stop loss, then profit target, then trailing stop.
func (m *Manager) Evaluate(position *types.Position) optional.Option[types.ExitReason] {
	pnl := position.CurrentPnL

	if m.rules.StopLossEnabled && pnl <= -position.MaxLoss*m.rules.StopLossPct/100 {
		return optional.Some(types.ExitReasonStopLoss)
	}

	if m.rules.ProfitTargetEnabled && pnl >= position.MaxProfit*m.rules.ProfitTargetPct/100 {
		return optional.Some(types.ExitReasonProfitTarget)
	}

	hwm := position.HighWaterMark
	if m.rules.TrailingStopEnabled && hwm > 0 && pnl <= hwm-hwm*m.rules.TrailingStopPct/100 {
		return optional.Some(types.ExitReasonTrailingStop)
	}

	return optional.None[types.ExitReason]()
}

// Check runs the expiration check and then the P&L rules.
func (m *Manager) Check(position *types.Position, date time.Time) optional.Option[types.ExitReason] {
	if reason := m.Expired(position, date); reason.IsSome() {
		return reason
	}

	return m.Evaluate(position)
}
