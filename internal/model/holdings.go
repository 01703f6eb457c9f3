package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is a holding of one ticker. Price fields reflect the last successful quote.
type Position struct {
	Ticker      string    `json:"ticker"`
	Shares      float64   `json:"shares"`
	SharePrice  float64   `json:"share_price"`
	TotalValue  float64   `json:"total_value"`
	PriceChange float64   `json:"price_change"` // per share, vs previous close
	TotalChange float64   `json:"total_change"`
	QuotedAt    time.Time `json:"quoted_at"`
}

// TransactionType is Buy or Sell.
type TransactionType string

const (
	TransactionBuy  TransactionType = "Buy"
	TransactionSell TransactionType = "Sell"
)

// Transaction is one entry of the trade log.
type Transaction struct {
	ID            int64           `json:"id"`
	Date          time.Time       `json:"date"`
	Type          TransactionType `json:"type"`
	Ticker        string          `json:"ticker"`
	Shares        decimal.Decimal `json:"shares"`
	PricePerShare decimal.Decimal `json:"price_per_share"`
	TotalValue    decimal.Decimal `json:"total_value"`
	Notes         string          `json:"notes"`
}

// Book is the persisted state of the user's holdings, cash and watchlist.
// Operations on it return new copies; the holdings manager owns the stored instance.
type Book struct {
	Positions   []Position        `json:"positions"`
	Cash        decimal.Decimal   `json:"cash"`
	Watchlist   []WatchlistEntry  `json:"watchlist"`
	Sectors     map[string]string `json:"sectors"`
	LastRefresh time.Time         `json:"last_refresh"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Summary aggregates a book's positions.
type Summary struct {
	Cash                float64 `json:"cash"`
	TotalStockValue     float64 `json:"total_stock_value"`
	TotalPortfolioValue float64 `json:"total_portfolio_value"`
	TotalChange         float64 `json:"total_change"`
	ChangePct           float64 `json:"change_pct"`
}

// SectorAllocation is the value held in one sector.
type SectorAllocation struct {
	Sector string  `json:"sector"`
	Value  float64 `json:"value"`
}
