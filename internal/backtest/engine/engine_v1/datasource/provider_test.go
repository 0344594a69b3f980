package datasource

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-options/internal/logger"
	"github.com/rxtech-lab/argo-options/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ProviderTestSuite struct {
	suite.Suite
	log *logger.Logger
}

func TestProviderSuite(t *testing.T) {
	suite.Run(t, new(ProviderTestSuite))
}

func (suite *ProviderTestSuite) SetupTest() {
	suite.log = logger.NewNopLogger()
}

func (suite *ProviderTestSuite) TestSynthetic() {
	anchor := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	dataSource, err := NewDataSource(ProviderConfig{Provider: ProviderSynthetic, Seed: 1, Anchor: anchor}, suite.log)
	suite.Require().NoError(err)
	suite.IsType(&SyntheticDataSource{}, dataSource)

	cached, err := NewDataSource(ProviderConfig{Provider: ProviderSynthetic, Seed: 1, Anchor: anchor, Cache: true}, suite.log)
	suite.Require().NoError(err)
	suite.IsType(&CachedDataSource{}, cached)
	suite.NoError(cached.Close())
}

func (suite *ProviderTestSuite) TestDuckDB() {
	dir := suite.T().TempDir()

	pricesPath, quotesPath, err := writeFixtures(dir)
	suite.Require().NoError(err)

	dataSource, err := NewDataSource(ProviderConfig{Provider: ProviderDuckDB, PricesPath: pricesPath, QuotesPath: quotesPath}, suite.log)
	suite.Require().NoError(err)
	suite.IsType(&DuckDBDataSource{}, dataSource)
	suite.NoError(dataSource.Close())
}

func (suite *ProviderTestSuite) TestInvalidConfigs() {
	tests := []struct {
		name   string
		config ProviderConfig
		code   errors.ErrorCode
	}{
		{
			name:   "unknown provider",
			config: ProviderConfig{Provider: "yahoo"},
			code:   errors.ErrCodeInvalidProvider,
		},
		{
			name:   "duckdb without paths",
			config: ProviderConfig{Provider: ProviderDuckDB},
			code:   errors.ErrCodeMissingParameter,
		},
		{
			name:   "polygon without key",
			config: ProviderConfig{Provider: ProviderPolygon},
			code:   errors.ErrCodeMissingParameter,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			_, err := NewDataSource(tc.config, suite.log)
			suite.Equal(tc.code, errors.GetCode(err))
		})
	}
}

func (suite *ProviderTestSuite) TestPolygon() {
	dataSource, err := NewDataSource(ProviderConfig{Provider: ProviderPolygon, PolygonAPIKey: "key"}, suite.log)
	suite.Require().NoError(err)
	suite.IsType(&PolygonDataSource{}, dataSource)
}
