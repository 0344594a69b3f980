package observability

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
)

type MetricsTestSuite struct {
	suite.Suite
	metrics *Metrics
}

func TestMetricsSuite(t *testing.T) {
	suite.Run(t, new(MetricsTestSuite))
}

func (suite *MetricsTestSuite) SetupTest() {
	suite.metrics = NewMetrics("test")
}

func (suite *MetricsTestSuite) TestRecordRun() {
	suite.metrics.RecordRun("iron-condor", StatusCompleted, 2*time.Second)
	suite.metrics.RecordRun("iron-condor", StatusCompleted, time.Second)
	suite.metrics.RecordRun("iron-condor", StatusCancelled, time.Second)

	suite.Equal(2.0, testutil.ToFloat64(suite.metrics.RunsTotal.WithLabelValues("iron-condor", StatusCompleted)))
	suite.Equal(1.0, testutil.ToFloat64(suite.metrics.RunsTotal.WithLabelValues("iron-condor", StatusCancelled)))
}

func (suite *MetricsTestSuite) TestRecordPositions() {
	suite.metrics.RecordOpened("iron-condor")
	suite.metrics.RecordClosed("Stop Loss")
	suite.metrics.RecordClosed("Stop Loss")
	suite.metrics.RecordSkipped(StageChain)
	suite.metrics.RecordStep(3)

	suite.Equal(1.0, testutil.ToFloat64(suite.metrics.PositionsOpened.WithLabelValues("iron-condor")))
	suite.Equal(2.0, testutil.ToFloat64(suite.metrics.PositionsClosed.WithLabelValues("Stop Loss")))
	suite.Equal(1.0, testutil.ToFloat64(suite.metrics.SkippedLookups.WithLabelValues(StageChain)))
	suite.Equal(3.0, testutil.ToFloat64(suite.metrics.OpenPositions))
	suite.Equal(1.0, testutil.ToFloat64(suite.metrics.StepsSimulated))
}

func (suite *MetricsTestSuite) TestNilMetricsIsNoop() {
	var metrics *Metrics

	suite.NotPanics(func() {
		metrics.RecordRun("iron-condor", StatusFailed, time.Second)
		metrics.RecordStep(1)
		metrics.RecordOpened("iron-condor")
		metrics.RecordClosed("Expiration")
		metrics.RecordSkipped(StagePrice)
		metrics.RecordCombination(OutcomeScored)
	})
}

func (suite *MetricsTestSuite) TestHandlerServesRegistry() {
	suite.metrics.RecordCombination(OutcomeNoTrades)

	recorder := httptest.NewRecorder()
	suite.metrics.Handler().ServeHTTP(recorder, httptest.NewRequest("GET", "/metrics", nil))

	suite.Equal(200, recorder.Code)
	suite.True(strings.Contains(recorder.Body.String(), "test_optimizer_combinations_evaluated_total"))
}

func (suite *MetricsTestSuite) TestSeparateRegistries() {
	other := NewMetrics("test")
	other.RecordOpened("iron-condor")

	suite.Equal(0.0, testutil.ToFloat64(suite.metrics.PositionsOpened.WithLabelValues("iron-condor")))
	suite.Equal(1.0, testutil.ToFloat64(other.PositionsOpened.WithLabelValues("iron-condor")))
}

func (suite *MetricsTestSuite) TestGathererReturnsOwnRegistry() {
	suite.metrics.RecordClosed("Stop Loss")
	suite.metrics.RecordClosed("Expiration")

	count, err := testutil.GatherAndCount(suite.metrics.Gatherer(), "test_positions_closed_total")
	suite.Require().NoError(err)
	suite.Equal(2, count)

	other := NewMetrics("test")
	count, err = testutil.GatherAndCount(other.Gatherer(), "test_positions_closed_total")
	suite.Require().NoError(err)
	suite.Equal(0, count)

	var metrics *Metrics
	suite.Equal(prometheus.DefaultGatherer, metrics.Gatherer())
}
