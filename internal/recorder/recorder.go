package recorder

import (
	"context"
	"time"

	"PortfolioLens/internal/model"
)

// TransactionFilter narrows ListTransactions. Zero fields match everything; From and To
// are inclusive calendar days.
type TransactionFilter struct {
	From   time.Time
	To     time.Time
	Ticker string
	Type   model.TransactionType
}

// PortfolioSnapshot is a point-in-time copy of the book totals.
type PortfolioSnapshot struct {
	Timestamp time.Time
	Summary   model.Summary
	Positions int
}

// WatchlistEvent records the outcome of one watchlist refresh.
type WatchlistEvent struct {
	Timestamp time.Time
	Refreshed int
	Failed    []string
}

// Recorder persists the transaction log and historical snapshots.
type Recorder interface {
	RecordTransaction(ctx context.Context, tx model.Transaction) (int64, error)
	ListTransactions(ctx context.Context, f TransactionFilter) ([]model.Transaction, error)
	DeleteTransactions(ctx context.Context, ids []int64) (int64, error)
	RecordPortfolio(ctx context.Context, snap PortfolioSnapshot) error
	RecordRisk(ctx context.Context, report model.RiskReport) error
	RecordWatchlist(ctx context.Context, evt WatchlistEvent) error
	Close() error
}
