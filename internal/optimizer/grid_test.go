package optimizer

import (
	"testing"
	"time"

	engine "github.com/rxtech-lab/argo-options/internal/backtest/engine/engine_v1"
	"github.com/stretchr/testify/suite"
)

type GridTestSuite struct {
	suite.Suite
	base engine.BacktestEngineV1Config
}

func TestGridSuite(t *testing.T) {
	suite.Run(t, new(GridTestSuite))
}

func (suite *GridTestSuite) SetupTest() {
	suite.base = engine.TestConfig(
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC),
		engine.TradeFrequencyDaily,
	)
}

func (suite *GridTestSuite) TestDefaultGridSize() {
	grid := DefaultGrid()

	suite.Equal(4*4*4*4*4*4*4, grid.Size())
	suite.Len(grid.Combinations(0), grid.Size())
	suite.Len(grid.Combinations(50), 50)
}

func (suite *GridTestSuite) TestCombinationOrder() {
	grid := Grid{
		StopLossPct:     []float64{25, 50},
		CapitalPerTrade: []float64{500, 1000, 2000},
	}

	combinations := grid.Combinations(0)
	suite.Require().Len(combinations, 6)

	expected := []struct {
		stopLoss float64
		capital  float64
	}{
		{25, 500}, {25, 1000}, {25, 2000},
		{50, 500}, {50, 1000}, {50, 2000},
	}

	for i, combination := range combinations {
		suite.Equal(i, combination.Index)
		suite.Equal(expected[i].stopLoss, *combination.StopLossPct)
		suite.Equal(expected[i].capital, *combination.CapitalPerTrade)
		suite.Nil(combination.ProfitTargetPct)
		suite.Nil(combination.MinDTE)
	}
}

func (suite *GridTestSuite) TestEmptyGrid() {
	grid := Grid{}

	suite.True(grid.IsEmpty())
	suite.Nil(grid.Combinations(0))
}

func (suite *GridTestSuite) TestApply() {
	stopLoss := 75.0
	trailing := 15.0
	maxPositions := 5

	config := Combination{
		StopLossPct:     &stopLoss,
		TrailingStopPct: &trailing,
		MaxPositions:    &maxPositions,
	}.Apply(suite.base)

	suite.True(config.RiskManagement.StopLossEnabled)
	suite.Equal(75.0, config.RiskManagement.StopLossPct)
	suite.True(config.RiskManagement.TrailingStopEnabled)
	suite.Equal(15.0, config.RiskManagement.TrailingStopPct)
	suite.False(config.RiskManagement.ProfitTargetEnabled)
	suite.Equal(5, config.MaxPositions)
	suite.Equal(suite.base.MinDTE, config.MinDTE)
	suite.Equal(suite.base.MaxDTE, config.MaxDTE)
	suite.Equal(suite.base.CapitalPerTrade, config.CapitalPerTrade)

	// base is untouched
	suite.False(suite.base.RiskManagement.StopLossEnabled)
}

func (suite *GridTestSuite) TestApplyRepairsDTEWindow() {
	tests := []struct {
		name     string
		minDTE   int
		maxDTE   int
		expected int
	}{
		{name: "valid window", minDTE: 20, maxDTE: 45, expected: 45},
		{name: "equal bounds", minDTE: 45, maxDTE: 45, expected: 60},
		{name: "inverted bounds", minDTE: 60, maxDTE: 45, expected: 75},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			config := Combination{MinDTE: &tc.minDTE, MaxDTE: &tc.maxDTE}.Apply(suite.base)

			suite.Equal(tc.minDTE, config.MinDTE)
			suite.Equal(tc.expected, config.MaxDTE)
			suite.NoError(config.Validate())
		})
	}
}

func (suite *GridTestSuite) TestDefaultGridCombinationsAreValid() {
	for _, combination := range DefaultGrid().Combinations(300) {
		config := combination.Apply(suite.base)
		suite.Less(config.MinDTE, config.MaxDTE, combination.String())
		suite.NoError(config.Validate(), combination.String())
	}
}

func (suite *GridTestSuite) TestString() {
	stopLoss := 50.0
	minDTE := 30

	suite.Equal("#3 sl=50 pt=- trail=- dte=30-- max_pos=- capital=-",
		Combination{Index: 3, StopLossPct: &stopLoss, MinDTE: &minDTE}.String())
}

func (suite *GridTestSuite) TestGetGridSchema() {
	schema, err := GetGridSchema()
	suite.Require().NoError(err)
	suite.Contains(schema, `"stop_loss_pct"`)
	suite.Contains(schema, `"capital_per_trade"`)
	suite.Contains(schema, "Trailing Stop %")
}
