package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"PortfolioLens/internal/model"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode lets the API read while scheduled jobs write.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS transactions (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			type            TEXT NOT NULL,
			ticker          TEXT NOT NULL,
			shares          TEXT NOT NULL,
			price_per_share TEXT NOT NULL,
			total_value     TEXT NOT NULL,
			notes           TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tx_ts ON transactions(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_tx_ticker ON transactions(ticker)`,

		`CREATE TABLE IF NOT EXISTS portfolio_snapshots (
			id                    INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp             INTEGER NOT NULL,
			positions             INTEGER,
			cash                  REAL,
			total_stock_value     REAL,
			total_portfolio_value REAL,
			total_change          REAL,
			change_pct            REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_portfolio_ts ON portfolio_snapshots(timestamp)`,

		`CREATE TABLE IF NOT EXISTS risk_snapshots (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			ticker       TEXT NOT NULL,
			benchmark    TEXT,
			observations INTEGER,
			volatility   REAL,
			beta         REAL,
			max_drawdown REAL,
			sharpe       REAL,
			var          REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_risk_ticker_ts ON risk_snapshots(ticker, timestamp)`,

		`CREATE TABLE IF NOT EXISTS watchlist_refreshes (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			refreshed INTEGER,
			failed    TEXT
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordTransaction(ctx context.Context, tx model.Transaction) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, `INSERT INTO transactions
		(timestamp, type, ticker, shares, price_per_share, total_value, notes)
		VALUES (?,?,?,?,?,?,?)`,
		tx.Date.Unix(), string(tx.Type), tx.Ticker,
		tx.Shares.String(), tx.PricePerShare.String(), tx.TotalValue.String(), tx.Notes,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListTransactions returns the matching transactions, newest first.
func (r *SQLiteRecorder) ListTransactions(ctx context.Context, f TransactionFilter) ([]model.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if !f.From.IsZero() {
		where = append(where, "timestamp >= ?")
		args = append(args, model.Day(f.From).Unix())
	}
	if !f.To.IsZero() {
		where = append(where, "timestamp < ?")
		args = append(args, model.Day(f.To).AddDate(0, 0, 1).Unix())
	}
	if f.Ticker != "" {
		where = append(where, "ticker = ?")
		args = append(args, strings.ToUpper(f.Ticker))
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(f.Type))
	}
	q := `SELECT id, timestamp, type, ticker, shares, price_per_share, total_value, notes FROM transactions`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY timestamp DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		var (
			tx                   model.Transaction
			ts                   int64
			typ                  string
			shares, price, total string
			notes                sql.NullString
		)
		if err := rows.Scan(&tx.ID, &ts, &typ, &tx.Ticker, &shares, &price, &total, &notes); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Date = time.Unix(ts, 0).UTC()
		tx.Type = model.TransactionType(typ)
		tx.Notes = notes.String
		if tx.Shares, err = decimal.NewFromString(shares); err != nil {
			return nil, fmt.Errorf("transaction %d shares: %w", tx.ID, err)
		}
		if tx.PricePerShare, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("transaction %d price: %w", tx.ID, err)
		}
		if tx.TotalValue, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("transaction %d total: %w", tx.ID, err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

// DeleteTransactions removes the transactions with the given ids and reports how many
// rows went away.
func (r *SQLiteRecorder) DeleteTransactions(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SQLiteRecorder) RecordPortfolio(ctx context.Context, snap PortfolioSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := snap.Summary
	_, err := r.db.ExecContext(ctx, `INSERT INTO portfolio_snapshots
		(timestamp, positions, cash, total_stock_value, total_portfolio_value, total_change, change_pct)
		VALUES (?,?,?,?,?,?,?)`,
		snap.Timestamp.Unix(), snap.Positions, s.Cash,
		s.TotalStockValue, s.TotalPortfolioValue, s.TotalChange, s.ChangePct,
	)
	return err
}

// RecordRisk stores the computed metrics of a report. Undefined metrics are stored as NULL.
func (r *SQLiteRecorder) RecordRisk(ctx context.Context, report model.RiskReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := report.Metrics
	_, err := r.db.ExecContext(ctx, `INSERT INTO risk_snapshots
		(timestamp, ticker, benchmark, observations, volatility, beta, max_drawdown, sharpe, var)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		report.To.Unix(), report.Ticker, report.Benchmark, report.Observations,
		nullable(m.Volatility), nullable(m.Beta), nullable(m.MaxDrawdown), nullable(m.Sharpe), nullable(m.VaR),
	)
	return err
}

func (r *SQLiteRecorder) RecordWatchlist(ctx context.Context, evt WatchlistEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO watchlist_refreshes (timestamp, refreshed, failed) VALUES (?,?,?)`,
		evt.Timestamp.Unix(), evt.Refreshed, strings.Join(evt.Failed, ","),
	)
	return err
}

func nullable(m model.Metric) sql.NullFloat64 {
	return sql.NullFloat64{Float64: m.Value, Valid: m.OK()}
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
