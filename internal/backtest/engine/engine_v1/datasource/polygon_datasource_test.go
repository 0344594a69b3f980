package datasource

import (
	"testing"

	"github.com/rxtech-lab/argo-options/internal/logger"
	"github.com/rxtech-lab/argo-options/internal/types"
	"github.com/rxtech-lab/argo-options/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteFromClose(t *testing.T) {
	tests := []struct {
		name        string
		close       float64
		expectedBid float64
		expectedAsk float64
	}{
		{name: "minimum spread", close: 1.00, expectedBid: 0.975, expectedAsk: 1.025},
		{name: "proportional spread", close: 10.00, expectedBid: 9.9, expectedAsk: 10.1},
		{name: "bid floor", close: 0.02, expectedBid: 0.01, expectedAsk: 0.045},
		{name: "tiny close", close: 0.001, expectedBid: 0.01, expectedAsk: 0.026},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := quoteFromClose(types.OptionTypePut, 95, tt.close)
			assert.InDelta(t, tt.expectedBid, quote.Bid, 1e-9)
			assert.InDelta(t, tt.expectedAsk, quote.Ask, 1e-9)
			assert.Equal(t, types.OptionTypePut, quote.OptionType)
			assert.Equal(t, 95.0, quote.Strike)
			assert.True(t, quote.OpenInterest.IsNone())
		})
	}
}

func TestNewPolygonDataSourceRequiresKey(t *testing.T) {
	_, err := NewPolygonDataSource("", logger.NewNopLogger())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeMissingParameter))

	source, err := NewPolygonDataSource("test-key", logger.NewNopLogger())
	require.NoError(t, err)
	assert.NoError(t, source.Close())
}
