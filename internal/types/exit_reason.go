package types

// ExitReason records why a position was closed.
type ExitReason string

const (
	ExitReasonExpiration   ExitReason = "Expiration"
	ExitReasonStopLoss     ExitReason = "Stop Loss"
	ExitReasonProfitTarget ExitReason = "Profit Target"
	ExitReasonTrailingStop ExitReason = "Trailing Stop"
	ExitReasonBacktestEnd  ExitReason = "Backtest End"
)

// AllExitReasons lists exit reasons in precedence order followed by the forced close.
var AllExitReasons = []ExitReason{
	ExitReasonExpiration,
	ExitReasonStopLoss,
	ExitReasonProfitTarget,
	ExitReasonTrailingStop,
	ExitReasonBacktestEnd,
}
