package engine

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-options/internal/logger"
	"github.com/rxtech-lab/argo-options/internal/types"
	"go.uber.org/zap"
)

const tradesFileName = "trades.parquet"

var tradeColumns = []string{
	"position_id", "symbol", "strategy", "entry_date", "exit_date", "expiration_date",
	"days_held", "underlying_entry_price", "underlying_exit_price", "entry_cost",
	"pnl", "pnl_pct", "max_profit", "max_loss", "exit_reason", "win", "contracts", "fees",
}

// BacktestState stores the closed trades of a run in an in-memory DuckDB table
// so they can be exported to Parquet alongside the results file.
type BacktestState struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

func NewBacktestState(logger *logger.Logger) (*BacktestState, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		logger.Error("Failed to open database", zap.Error(err))

		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &BacktestState{
		logger: logger,
		db:     db,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Initialize creates the trades table.
func (b *BacktestState) Initialize() error {
	_, err := b.db.Exec(`CREATE SEQUENCE IF NOT EXISTS trade_seq`)
	if err != nil {
		return fmt.Errorf("failed to create sequence: %w", err)
	}

	_, err = b.db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			seq BIGINT DEFAULT nextval('trade_seq'),
			position_id TEXT PRIMARY KEY,
			symbol TEXT,
			strategy TEXT,
			entry_date TIMESTAMP,
			exit_date TIMESTAMP,
			expiration_date TIMESTAMP,
			days_held INTEGER,
			underlying_entry_price DOUBLE,
			underlying_exit_price DOUBLE,
			entry_cost DOUBLE,
			pnl DOUBLE,
			pnl_pct DOUBLE,
			max_profit DOUBLE,
			max_loss DOUBLE,
			exit_reason TEXT,
			win BOOLEAN,
			contracts INTEGER,
			fees DOUBLE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create trades table: %w", err)
	}

	return nil
}

// Insert stores a closed trade.
func (b *BacktestState) Insert(trade types.TradeRecord) error {
	insertQuery := b.sq.
		Insert("trades").
		Columns(tradeColumns...).
		Values(
			trade.PositionID, trade.Symbol, string(trade.Strategy), trade.EntryDate, trade.ExitDate, trade.ExpirationDate,
			trade.DaysHeld, trade.UnderlyingEntryPrice, trade.UnderlyingExitPrice, trade.EntryCost,
			trade.PnL, trade.PnLPct, trade.MaxProfit, trade.MaxLoss, string(trade.ExitReason), trade.Win, trade.Contracts, trade.Fees,
		).
		RunWith(b.db)

	if _, err := insertQuery.Exec(); err != nil {
		return fmt.Errorf("failed to insert trade %s: %w", trade.PositionID, err)
	}

	return nil
}

// GetAllTrades returns all trades in the order they were closed.
func (b *BacktestState) GetAllTrades() ([]types.TradeRecord, error) {
	selectQuery := b.sq.
		Select(tradeColumns...).
		From("trades").
		OrderBy("seq ASC").
		RunWith(b.db)

	rows, err := selectQuery.Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []types.TradeRecord

	for rows.Next() {
		var (
			trade      types.TradeRecord
			strategy   string
			exitReason string
		)

		err := rows.Scan(
			&trade.PositionID,
			&trade.Symbol,
			&strategy,
			&trade.EntryDate,
			&trade.ExitDate,
			&trade.ExpirationDate,
			&trade.DaysHeld,
			&trade.UnderlyingEntryPrice,
			&trade.UnderlyingExitPrice,
			&trade.EntryCost,
			&trade.PnL,
			&trade.PnLPct,
			&trade.MaxProfit,
			&trade.MaxLoss,
			&exitReason,
			&trade.Win,
			&trade.Contracts,
			&trade.Fees,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}

		trade.Strategy = types.StrategyKind(strategy)
		trade.ExitReason = types.ExitReason(exitReason)
		trades = append(trades, trade)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}

	return trades, nil
}

// Count returns the number of stored trades.
func (b *BacktestState) Count() (int, error) {
	var count int

	err := b.sq.Select("COUNT(*)").From("trades").RunWith(b.db).QueryRow().Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count trades: %w", err)
	}

	return count, nil
}

// Cleanup resets the database state
func (b *BacktestState) Cleanup() error {
	// Squirrel doesn't have DROP syntax
	_, err := b.db.Exec(`
		DROP TABLE IF EXISTS trades;
		DROP SEQUENCE IF EXISTS trade_seq;
	`)
	if err != nil {
		return fmt.Errorf("failed to cleanup tables: %w", err)
	}

	return b.Initialize()
}

// Write exports the trades table to <path>/trades.parquet and returns the file path.
func (b *BacktestState) Write(path string) (string, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	// Squirrel doesn't support COPY
	tradesPath := filepath.Join(path, tradesFileName)

	_, err := b.db.Exec(fmt.Sprintf(`COPY (SELECT %s FROM trades ORDER BY seq) TO '%s' (FORMAT PARQUET)`,
		strings.Join(tradeColumns, ", "), tradesPath))
	if err != nil {
		return "", fmt.Errorf("failed to export trades to Parquet: %w", err)
	}

	b.logger.Debug("Exported trades to Parquet",
		zap.String("trades", tradesPath),
	)

	return tradesPath, nil
}

// Close releases the database.
func (b *BacktestState) Close() error {
	return b.db.Close()
}
