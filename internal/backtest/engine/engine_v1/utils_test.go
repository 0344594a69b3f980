package engine

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-options/internal/types"
	"github.com/stretchr/testify/suite"
)

// UtilsTestSuite is a test suite for utils package
type UtilsTestSuite struct {
	suite.Suite
}

// TestUtilsSuite runs the test suite
func TestUtilsSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}

func (suite *UtilsTestSuite) TestGetResultFolder() {
	tests := []struct {
		name          string
		resultsFolder string
		strategy      types.StrategyKind
		start         time.Time
		end           time.Time
		runID         string
		expectedPath  string
	}{
		{
			name:          "iron condor",
			resultsFolder: "/results",
			strategy:      types.StrategyIronCondor,
			start:         time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			end:           time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC),
			runID:         "run-1",
			expectedPath:  filepath.Join("/results", "iron-condor", "20240102_20240628", "run-1"),
		},
		{
			name:          "relative folder",
			resultsFolder: "out",
			strategy:      types.StrategyBullPutSpread,
			start:         time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
			end:           time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
			runID:         "abc",
			expectedPath:  filepath.Join("out", "bull-put-spread", "20231201_20231231", "abc"),
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			b := NewBacktestEngineV1()
			b.resultsFolder = tc.resultsFolder
			b.config.Strategy = tc.strategy
			b.config.StartDate = tc.start
			b.config.EndDate = tc.end

			suite.Equal(tc.expectedPath, getResultFolder(b, tc.runID))
		})
	}
}

func (suite *UtilsTestSuite) TestUniqueTickers() {
	suite.Equal([]string{"SPY", "QQQ", "IWM"}, uniqueTickers([]string{"SPY", "QQQ", "", "SPY", "IWM", "QQQ"}))
	suite.Empty(uniqueTickers(nil))
	suite.Empty(uniqueTickers([]string{""}))
}
