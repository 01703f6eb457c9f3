package recorder

import (
	"context"

	"PortfolioLens/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordTransaction(_ context.Context, _ model.Transaction) (int64, error) {
	return 0, nil
}

func (n *NoopRecorder) ListTransactions(_ context.Context, _ TransactionFilter) ([]model.Transaction, error) {
	return nil, nil
}

func (n *NoopRecorder) DeleteTransactions(_ context.Context, _ []int64) (int64, error) { return 0, nil }
func (n *NoopRecorder) RecordPortfolio(_ context.Context, _ PortfolioSnapshot) error   { return nil }
func (n *NoopRecorder) RecordRisk(_ context.Context, _ model.RiskReport) error         { return nil }
func (n *NoopRecorder) RecordWatchlist(_ context.Context, _ WatchlistEvent) error      { return nil }
func (n *NoopRecorder) Close() error                                                   { return nil }
