package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-options/internal/types"
	"github.com/stretchr/testify/suite"
)

type EngineTestSuite struct {
	suite.Suite
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (suite *EngineTestSuite) TestOnBacktestStartCallbackCanAbort() {
	var callback OnBacktestStartCallback = func(runID string, tickers []string, totalSteps int) error {
		if len(tickers) == 0 {
			return errors.New("no tickers")
		}

		return nil
	}

	suite.NoError(callback("run", []string{"SPY"}, 10))
	suite.Error(callback("run", nil, 10))
}

func (suite *EngineTestSuite) TestOnStepCallbackWithProgress() {
	var progress []int
	callback := OnStepCallback(func(current int, total int, _ time.Time) {
		progress = append(progress, current)
	})

	for i := 1; i <= 5; i++ {
		callback(i, 5, time.Now())
	}

	suite.Equal([]int{1, 2, 3, 4, 5}, progress)
}

func (suite *EngineTestSuite) TestLifecycleCallbacksZeroValue() {
	var callbacks LifecycleCallbacks

	suite.Nil(callbacks.OnBacktestStart)
	suite.Nil(callbacks.OnProgress)
	suite.Nil(callbacks.OnPositionClosed)

	var closed []types.ExitReason
	onClosed := OnPositionClosedCallback(func(trade types.TradeRecord) {
		closed = append(closed, trade.ExitReason)
	})
	callbacks.OnPositionClosed = &onClosed

	(*callbacks.OnPositionClosed)(types.TradeRecord{ExitReason: types.ExitReasonStopLoss})
	suite.Equal([]types.ExitReason{types.ExitReasonStopLoss}, closed)
}
