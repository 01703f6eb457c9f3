package collector

import (
	"context"
	"time"

	"PortfolioLens/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchHistory returns daily bars with dates in [from, to], oldest first.
	FetchHistory(ctx context.Context, symbol string, from, to time.Time) ([]model.OHLCV, error)
	FetchQuote(ctx context.Context, symbol string) (model.Quote, error)
	Name() string
}
