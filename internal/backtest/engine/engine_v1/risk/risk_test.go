package risk

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-options/internal/types"
	"github.com/stretchr/testify/suite"
)

type RiskTestSuite struct {
	suite.Suite
	entry      time.Time
	expiration time.Time
}

func TestRiskSuite(t *testing.T) {
	suite.Run(t, new(RiskTestSuite))
}

func (suite *RiskTestSuite) SetupTest() {
	suite.entry = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	suite.expiration = time.Date(2024, 4, 19, 0, 0, 0, 0, time.UTC)
}

func (suite *RiskTestSuite) position(maxProfit, maxLoss float64) *types.Position {
	return types.NewPosition("IWM", types.StrategyIronCondor, suite.entry, suite.expiration, nil, maxProfit, maxProfit, maxLoss, 200)
}

func (suite *RiskTestSuite) mark(pos *types.Position, pnls ...float64) {
	for i, pnl := range pnls {
		suite.Require().NoError(pos.Mark(suite.entry.AddDate(0, 0, i+1), pnl))
	}
}

func (suite *RiskTestSuite) TestStopLossThreshold() {
	manager := NewManager(Rules{StopLossEnabled: true, StopLossPct: 50})

	tests := []struct {
		name     string
		pnl      float64
		expected bool
	}{
		{"beyond threshold", -51, true},
		{"at threshold", -50, true},
		{"inside threshold", -49, false},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			pos := suite.position(40, 100)
			suite.mark(pos, tc.pnl)

			reason := manager.Evaluate(pos)
			suite.Equal(tc.expected, reason.IsSome())
			if tc.expected {
				suite.Equal(types.ExitReasonStopLoss, reason.Unwrap())
			}
		})
	}
}

func (suite *RiskTestSuite) TestDisabledRulesNeverFire() {
	manager := NewManager(Rules{StopLossPct: 50, ProfitTargetPct: 50, TrailingStopPct: 10})
	pos := suite.position(40, 100)

	suite.mark(pos, 39, -99)
	suite.True(manager.Evaluate(pos).IsNone())
}

func (suite *RiskTestSuite) TestProfitTarget() {
	manager := NewManager(Rules{ProfitTargetEnabled: true, ProfitTargetPct: 50})
	pos := suite.position(40, 100)

	suite.mark(pos, 19.99)
	suite.True(manager.Evaluate(pos).IsNone())

	suite.mark(pos, 20)
	suite.Equal(types.ExitReasonProfitTarget, manager.Evaluate(pos).Unwrap())
}

func (suite *RiskTestSuite) TestTrailingStop() {
	manager := NewManager(Rules{TrailingStopEnabled: true, TrailingStopPct: 25})
	pos := suite.position(40, 100)

	// no positive high-water mark yet
	suite.mark(pos, -10)
	suite.True(manager.Evaluate(pos).IsNone())

	suite.mark(pos, 32, 25)
	suite.True(manager.Evaluate(pos).IsNone())

	suite.mark(pos, 24)
	suite.Equal(types.ExitReasonTrailingStop, manager.Evaluate(pos).Unwrap())
}

func (suite *RiskTestSuite) TestPrecedence() {
	manager := NewManager(Rules{
		StopLossEnabled:     true,
		StopLossPct:         10,
		ProfitTargetEnabled: true,
		ProfitTargetPct:     0,
		TrailingStopEnabled: true,
		TrailingStopPct:     1,
	})

	// a loss satisfies stop loss and is evaluated before the zero profit target
	pos := suite.position(40, 100)
	suite.mark(pos, -20)
	suite.Equal(types.ExitReasonStopLoss, manager.Evaluate(pos).Unwrap())

	// profit target wins over trailing stop
	pos = suite.position(40, 100)
	suite.mark(pos, 30, 10)
	suite.Equal(types.ExitReasonProfitTarget, manager.Evaluate(pos).Unwrap())

	// expiration wins over everything
	suite.Equal(types.ExitReasonExpiration, manager.Check(pos, suite.expiration).Unwrap())
	suite.Equal(types.ExitReasonProfitTarget, manager.Check(pos, suite.expiration.AddDate(0, 0, -1)).Unwrap())
}

func (suite *RiskTestSuite) TestExpirationIsNotGated() {
	manager := NewManager(Rules{})
	pos := suite.position(40, 100)

	suite.True(manager.Expired(pos, suite.expiration.AddDate(0, 0, -1)).IsNone())
	suite.Equal(types.ExitReasonExpiration, manager.Expired(pos, suite.expiration).Unwrap())
	suite.Equal(types.ExitReasonExpiration, manager.Expired(pos, suite.expiration.AddDate(0, 0, 3)).Unwrap())
}
