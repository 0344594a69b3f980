package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeInvalidConfiguration, "invalid configuration")
	suite.Equal(ErrCodeInvalidConfiguration, err.Code)
	suite.Equal("invalid configuration", err.Message)
	suite.Empty(err.Field)
	suite.Nil(err.Cause)
	suite.Equal("[101] invalid configuration", err.Error())
}

func (suite *ErrorTestSuite) TestNewfError() {
	err := Newf(ErrCodeDataNotFound, "no price for %s", "SPY")
	suite.Equal("no price for SPY", err.Message)
}

func (suite *ErrorTestSuite) TestNewFieldError() {
	err := NewField(ErrCodeInvalidMaxPositions, "max_positions", "must be greater than 0")
	suite.Equal("max_positions", err.Field)
	suite.Equal("[103] max_positions: must be greater than 0", err.Error())
	suite.Equal("max_positions", GetField(err))
	suite.Equal("max_positions", GetField(fmt.Errorf("outer: %w", err)))
	suite.Empty(GetField(errors.New("plain")))
}

func (suite *ErrorTestSuite) TestWrapError() {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeQueryFailed, "failed to query option chain", cause)
	suite.Equal(cause, err.Unwrap())
	suite.Equal("[202] failed to query option chain: connection refused", err.Error())
}

func (suite *ErrorTestSuite) TestWrapfError() {
	err := Wrapf(ErrCodeBacktestCancelled, context.Canceled, "backtest stopped at %s", "2024-01-05")
	suite.Equal("backtest stopped at 2024-01-05", err.Message)
	suite.True(Is(err, context.Canceled))
}

func (suite *ErrorTestSuite) TestGetCode() {
	tests := []struct {
		name     string
		err      error
		expected ErrorCode
	}{
		{"direct", New(ErrCodePositionAlreadyClosed, "closed"), ErrCodePositionAlreadyClosed},
		{"wrapped by fmt", fmt.Errorf("outer: %w", New(ErrCodeEmptyTickerUniverse, "empty")), ErrCodeEmptyTickerUniverse},
		{"plain error", errors.New("plain"), ErrCodeUnknown},
		{"nil error", nil, ErrCodeUnknown},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, GetCode(tc.err))
		})
	}
}

func (suite *ErrorTestSuite) TestHasCode() {
	err := New(ErrCodeInvalidDateRange, "start after end")
	suite.True(HasCode(err, ErrCodeInvalidDateRange))
	suite.False(HasCode(err, ErrCodeInvalidConfiguration))
}

func (suite *ErrorTestSuite) TestAs() {
	var target *Error

	err := fmt.Errorf("wrapped: %w", New(ErrCodeUnsupportedStrategy, "unknown strategy"))
	suite.True(As(err, &target))
	suite.Equal(ErrCodeUnsupportedStrategy, target.Code)
}
