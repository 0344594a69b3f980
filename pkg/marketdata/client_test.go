package marketdata

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-options/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-options/internal/logger"
	"github.com/rxtech-lab/argo-options/internal/types"
	"github.com/rxtech-lab/argo-options/mocks"
	"github.com/rxtech-lab/argo-options/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ClientTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	dataDir string
	start   time.Time
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (suite *ClientTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.dataDir = filepath.Join(suite.T().TempDir(), "snapshot")
	suite.start = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
}

func (suite *ClientTestSuite) TestNewClientValidation() {
	source := mocks.NewMockDataSource(suite.ctrl)

	_, err := NewClient(ClientConfig{}, source, nil, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	_, err = NewClient(ClientConfig{DataPath: suite.dataDir}, nil, nil, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeBacktestNoDatasource))
}

func (suite *ClientTestSuite) TestDownloadParamsValidation() {
	client, err := NewClient(ClientConfig{DataPath: suite.dataDir}, mocks.NewMockDataSource(suite.ctrl), nil, nil)
	suite.Require().NoError(err)

	testCases := []struct {
		name   string
		params DownloadParams
	}{
		{
			name:   "no tickers",
			params: DownloadParams{StartDate: suite.start, EndDate: suite.start, MinDTE: 20, MaxDTE: 45},
		},
		{
			name:   "blank ticker",
			params: DownloadParams{Tickers: []string{""}, StartDate: suite.start, EndDate: suite.start, MinDTE: 20, MaxDTE: 45},
		},
		{
			name:   "end before start",
			params: DownloadParams{Tickers: []string{"SPY"}, StartDate: suite.start, EndDate: suite.start.AddDate(0, 0, -1), MinDTE: 20, MaxDTE: 45},
		},
		{
			name:   "dte window reversed",
			params: DownloadParams{Tickers: []string{"SPY"}, StartDate: suite.start, EndDate: suite.start, MinDTE: 45, MaxDTE: 20},
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			_, err := client.Download(context.Background(), tc.params)
			suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
		})
	}
}

// TestSnapshotReplaysThroughDuckDB downloads synthetic data and checks the duckdb
// data source returns the same market.
func (suite *ClientTestSuite) TestSnapshotReplaysThroughDuckDB() {
	synthetic := datasource.NewSyntheticDataSource(datasource.DefaultSyntheticConfig(42, suite.start))

	var progress []string

	client, err := NewClient(ClientConfig{DataPath: suite.dataDir}, synthetic, logger.NewNopLogger(),
		func(current float64, total float64, message string) {
			progress = append(progress, fmt.Sprintf("%.0f/%.0f %s", current, total, message))
		})
	suite.Require().NoError(err)

	tickers := []string{"SPY", "QQQ"}

	// Mar 4 2024 is a Monday; the range ends on Sunday Mar 10.
	output, err := client.Download(context.Background(), DownloadParams{
		Tickers:   tickers,
		StartDate: suite.start,
		EndDate:   suite.start.AddDate(0, 0, 6),
		MinDTE:    20,
		MaxDTE:    45,
	})
	suite.Require().NoError(err)
	suite.Equal(10, output.Prices)
	suite.Positive(output.Quotes)
	suite.Equal([]string{
		"1/5 Downloaded 2024-03-04",
		"2/5 Downloaded 2024-03-05",
		"3/5 Downloaded 2024-03-06",
		"4/5 Downloaded 2024-03-07",
		"5/5 Downloaded 2024-03-08",
	}, progress)

	replay, err := datasource.NewDuckDBDataSource(logger.NewNopLogger())
	suite.Require().NoError(err)

	defer replay.Close()

	suite.Require().NoError(replay.Initialize(output.PricesPath, output.QuotesPath))

	ctx := context.Background()
	day := suite.start.AddDate(0, 0, 2)

	for _, ticker := range tickers {
		want, err := synthetic.GetUnderlyingPrice(ctx, ticker, day)
		suite.Require().NoError(err)

		got, err := replay.GetUnderlyingPrice(ctx, ticker, day)
		suite.Require().NoError(err)
		suite.Equal(want.Unwrap(), got.Unwrap())

		wantExpirations, err := synthetic.ListExpirations(ctx, ticker, day, 20, 45)
		suite.Require().NoError(err)

		gotExpirations, err := replay.ListExpirations(ctx, ticker, day, 20, 45)
		suite.Require().NoError(err)
		suite.Require().NotEmpty(wantExpirations)
		suite.Require().Equal(formatDates(wantExpirations), formatDates(gotExpirations))

		wantChain, err := synthetic.GetOptionChain(ctx, ticker, day, wantExpirations[0])
		suite.Require().NoError(err)

		gotChain, err := replay.GetOptionChain(ctx, ticker, day, gotExpirations[0])
		suite.Require().NoError(err)
		suite.ElementsMatch(wantChain, gotChain)
	}

	weekend, err := replay.GetUnderlyingPrice(ctx, "SPY", suite.start.AddDate(0, 0, 5))
	suite.Require().NoError(err)
	suite.True(weekend.IsNone())
}

func (suite *ClientTestSuite) TestMissingDataIsSkipped() {
	source := mocks.NewMockDataSource(suite.ctrl)
	expiration := suite.start.AddDate(0, 0, 30)

	source.EXPECT().GetUnderlyingPrice(gomock.Any(), "SPY", suite.start).Return(optional.Some(500.0), nil)
	source.EXPECT().ListExpirations(gomock.Any(), "SPY", suite.start, 20, 45).Return([]time.Time{expiration, expiration.AddDate(0, 0, 7)}, nil)
	source.EXPECT().GetOptionChain(gomock.Any(), "SPY", suite.start, expiration).Return([]types.OptionQuote{
		{Strike: 510, Bid: 2, Ask: 2.2, OptionType: types.OptionTypeCall},
		{Strike: 490, Bid: 1.8, Ask: 2, OptionType: types.OptionTypePut},
	}, nil)
	source.EXPECT().GetOptionChain(gomock.Any(), "SPY", suite.start, expiration.AddDate(0, 0, 7)).Return(nil, fmt.Errorf("not found"))
	source.EXPECT().GetUnderlyingPrice(gomock.Any(), "QQQ", suite.start).Return(optional.None[float64](), nil)
	source.EXPECT().GetUnderlyingPrice(gomock.Any(), "IWM", suite.start).Return(optional.None[float64](), fmt.Errorf("unavailable"))

	client, err := NewClient(ClientConfig{DataPath: suite.dataDir}, source, nil, nil)
	suite.Require().NoError(err)

	output, err := client.Download(context.Background(), DownloadParams{
		Tickers:   []string{"SPY", "QQQ", "IWM"},
		StartDate: suite.start,
		EndDate:   suite.start,
		MinDTE:    20,
		MaxDTE:    45,
	})
	suite.Require().NoError(err)
	suite.Equal(1, output.Prices)
	suite.Equal(2, output.Quotes)
	suite.FileExists(output.PricesPath)
	suite.FileExists(output.QuotesPath)
}

func (suite *ClientTestSuite) TestCancelledDownload() {
	source := mocks.NewMockDataSource(suite.ctrl)

	client, err := NewClient(ClientConfig{DataPath: suite.dataDir}, source, nil, nil)
	suite.Require().NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.Download(ctx, DownloadParams{
		Tickers:   []string{"SPY"},
		StartDate: suite.start,
		EndDate:   suite.start,
		MinDTE:    20,
		MaxDTE:    45,
	})
	suite.Require().Error(err)
	suite.ErrorIs(err, context.Canceled)
	suite.NoFileExists(filepath.Join(suite.dataDir, "prices.parquet"))
}

func (suite *ClientTestSuite) TestTradingDays() {
	days := tradingDays(time.Date(2024, 3, 8, 15, 0, 0, 0, time.UTC), time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC))
	suite.Equal([]string{"2024-03-08", "2024-03-11"}, formatDates(days))

	suite.Empty(tradingDays(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)))
}

func formatDates(dates []time.Time) []string {
	formatted := make([]string, 0, len(dates))
	for _, date := range dates {
		formatted = append(formatted, date.Format("2006-01-02"))
	}

	return formatted
}
