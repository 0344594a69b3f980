package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidDateRange     ErrorCode = 102
	ErrCodeInvalidMaxPositions  ErrorCode = 103
	ErrCodeInvalidThreshold     ErrorCode = 104
	ErrCodeInvalidDTERange      ErrorCode = 105
	ErrCodeEmptyTickerUniverse  ErrorCode = 106
	ErrCodeInvalidFrequency     ErrorCode = 107
	ErrCodeInvalidVersion       ErrorCode = 108
	ErrCodeMissingParameter     ErrorCode = 109

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeResultWriteFailed     ErrorCode = 203

	// Strategy errors (400-499)
	ErrCodeUnsupportedStrategy ErrorCode = 400
	ErrCodeVersionMismatch     ErrorCode = 401

	// Position errors (500-599)
	ErrCodePositionAlreadyClosed ErrorCode = 500
	ErrCodePositionNotFound      ErrorCode = 501

	// Backtest errors (600-699)
	ErrCodeBacktestNotInitialized ErrorCode = 600
	ErrCodeBacktestNoDatasource   ErrorCode = 601
	ErrCodeBacktestCancelled      ErrorCode = 602
	ErrCodeBacktestStateFailed    ErrorCode = 603

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeInvalidProvider       ErrorCode = 701

	// Optimizer errors (900-999)
	ErrCodeOptimizerNoResults ErrorCode = 900
	ErrCodeOptimizerEmptyGrid ErrorCode = 901
)
