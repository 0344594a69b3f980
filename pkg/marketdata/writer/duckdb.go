package writer

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
)

const dateLayout = "2006-01-02"

// DuckDBWriter implements SnapshotWriter on an in-memory DuckDB database.
type DuckDBWriter struct {
	db        *sql.DB
	tx        *sql.Tx
	priceStmt *sql.Stmt
	quoteStmt *sql.Stmt
	outputDir string
	prices    int
	quotes    int
}

// NewDuckDBWriter creates a new DuckDBWriter that exports into outputDir.
func NewDuckDBWriter(outputDir string) SnapshotWriter {
	return &DuckDBWriter{
		outputDir: outputDir,
	}
}

// Initialize opens the database, creates the tables, begins a transaction and
// prepares the insert statements.
func (w *DuckDBWriter) Initialize() (err error) {
	w.db, err = sql.Open("duckdb", ":memory:")
	if err != nil {
		return fmt.Errorf("failed to open DuckDB connection: %w", err)
	}

	tables := []string{
		`CREATE TABLE IF NOT EXISTS prices (
			symbol TEXT,
			date DATE,
			close DOUBLE
		)`,
		`CREATE TABLE IF NOT EXISTS quotes (
			symbol TEXT,
			date DATE,
			expiration DATE,
			option_type TEXT,
			strike DOUBLE,
			bid DOUBLE,
			ask DOUBLE,
			open_interest BIGINT,
			volume BIGINT
		)`,
	}

	for _, table := range tables {
		if _, err = w.db.Exec(table); err != nil {
			w.db.Close()

			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()

		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	w.priceStmt, err = w.tx.Prepare(`INSERT INTO prices (symbol, date, close) VALUES (?, CAST(? AS DATE), ?)`)
	if err != nil {
		w.tx.Rollback()
		w.db.Close()

		return fmt.Errorf("failed to prepare price statement: %w", err)
	}

	w.quoteStmt, err = w.tx.Prepare(`
		INSERT INTO quotes (symbol, date, expiration, option_type, strike, bid, ask, open_interest, volume)
		VALUES (?, CAST(? AS DATE), CAST(? AS DATE), ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.priceStmt.Close()
		w.tx.Rollback()
		w.db.Close()

		return fmt.Errorf("failed to prepare quote statement: %w", err)
	}

	return nil
}

// WritePrice inserts a price row within the open transaction.
func (w *DuckDBWriter) WritePrice(row PriceRow) error {
	if w.priceStmt == nil {
		return fmt.Errorf("writer not initialized or statement is nil")
	}

	if _, err := w.priceStmt.Exec(row.Symbol, row.Date.Format(dateLayout), row.Close); err != nil {
		return fmt.Errorf("failed to insert price: %w", err)
	}

	w.prices++

	return nil
}

// WriteQuote inserts a quote row within the open transaction. Missing open
// interest and volume are stored as NULL.
func (w *DuckDBWriter) WriteQuote(row QuoteRow) error {
	if w.quoteStmt == nil {
		return fmt.Errorf("writer not initialized or statement is nil")
	}

	_, err := w.quoteStmt.Exec(
		row.Symbol,
		row.Date.Format(dateLayout),
		row.Expiration.Format(dateLayout),
		string(row.Quote.OptionType),
		row.Quote.Strike,
		row.Quote.Bid,
		row.Quote.Ask,
		nullable(row.Quote.OpenInterest.TakeOr(-1)),
		nullable(row.Quote.Volume.TakeOr(-1)),
	)
	if err != nil {
		return fmt.Errorf("failed to insert quote: %w", err)
	}

	w.quotes++

	return nil
}

// Finalize commits the transaction and exports both tables to parquet.
func (w *DuckDBWriter) Finalize() (Output, error) {
	if w.tx == nil {
		return Output{}, fmt.Errorf("writer not initialized or transaction is nil")
	}

	if err := w.tx.Commit(); err != nil {
		w.tx.Rollback()

		return Output{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.tx = nil

	output := Output{
		PricesPath: filepath.Join(w.outputDir, PricesFileName),
		QuotesPath: filepath.Join(w.outputDir, QuotesFileName),
		Prices:     w.prices,
		Quotes:     w.quotes,
	}

	exports := map[string]string{
		"prices": output.PricesPath,
		"quotes": output.QuotesPath,
	}

	for table, path := range exports {
		query := fmt.Sprintf(`COPY (SELECT * FROM %s ORDER BY ALL) TO '%s' (FORMAT PARQUET)`, table, escapePath(path))
		if _, err := w.db.Exec(query); err != nil {
			return Output{}, fmt.Errorf("failed to export %s to parquet: %w", table, err)
		}
	}

	return output, nil
}

// Close closes the statements, rolls back an unfinished transaction and closes the database.
func (w *DuckDBWriter) Close() error {
	var closeErrors []error

	for _, stmt := range []*sql.Stmt{w.priceStmt, w.quoteStmt} {
		if stmt == nil {
			continue
		}

		if err := stmt.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Errorf("failed to close statement: %w", err))
		}
	}

	w.priceStmt = nil
	w.quoteStmt = nil

	if w.tx != nil {
		if err := w.tx.Rollback(); err != nil {
			closeErrors = append(closeErrors, fmt.Errorf("failed to rollback transaction: %w", err))
		}

		w.tx = nil
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Errorf("failed to close db connection: %w", err))
		}

		w.db = nil
	}

	return errors.Join(closeErrors...)
}

// GetOutputDir returns the directory the parquet files are written to.
func (w *DuckDBWriter) GetOutputDir() string {
	return w.outputDir
}

func nullable(value int64) any {
	if value < 0 {
		return nil
	}

	return value
}

func escapePath(path string) string {
	return strings.ReplaceAll(path, "'", "''")
}
