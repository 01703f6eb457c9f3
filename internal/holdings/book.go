// Package holdings maintains the positions, cash and watchlist of a portfolio book.
// The functions in this file are pure: they take a book and return a modified copy.
package holdings

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"PortfolioLens/internal/model"
)

var (
	ErrInvalidTicker      = errors.New("ticker must not be empty")
	ErrInvalidShares      = errors.New("shares must be positive")
	ErrUnknownTicker      = errors.New("ticker not in portfolio")
	ErrInsufficientShares = errors.New("more shares than owned")
	ErrNegativeCash       = errors.New("cash must not be negative")
	ErrAlreadyWatched     = errors.New("ticker already on watchlist")
	ErrNotWatched         = errors.New("ticker not on watchlist")
	ErrNoPrice            = errors.New("no price available")
)

// OtherSector collects tickers without a known sector.
const OtherSector = "Other"

// shareTolerance absorbs binary rounding left in share counts stored as float64.
const shareTolerance = 1e-9

// addShares and subShares do share arithmetic in decimal so that 0.3 - 0.1 is 0.2.
func addShares(a, b float64) float64 {
	return decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).InexactFloat64()
}

func subShares(a, b float64) float64 {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).InexactFloat64()
}

// NormalizeTicker trims and upper-cases a user-entered ticker.
func NormalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Clone returns a deep copy of b.
func Clone(b model.Book) model.Book {
	out := b
	out.Positions = append([]model.Position(nil), b.Positions...)
	out.Watchlist = append([]model.WatchlistEntry(nil), b.Watchlist...)
	out.Sectors = make(map[string]string, len(b.Sectors))
	for k, v := range b.Sectors {
		out.Sectors[k] = v
	}
	return out
}

func indexOf(positions []model.Position, ticker string) int {
	for i, p := range positions {
		if p.Ticker == ticker {
			return i
		}
	}
	return -1
}

func checkQuote(ticker string, q model.Quote) error {
	if q.Price <= 0 || q.PreviousClose <= 0 {
		return fmt.Errorf("%s: %w", ticker, ErrNoPrice)
	}
	return nil
}

// priced sets the display fields of p from q.
func priced(p model.Position, q model.Quote, at time.Time) model.Position {
	change := q.Price - q.PreviousClose
	p.SharePrice = q.Price
	p.TotalValue = p.Shares * q.Price
	p.PriceChange = change
	p.TotalChange = change * p.Shares
	p.QuotedAt = at
	return p
}

func transaction(typ model.TransactionType, ticker string, shares float64, q model.Quote, at time.Time, notes string) model.Transaction {
	n := decimal.NewFromFloat(shares)
	price := decimal.NewFromFloat(q.Price)
	return model.Transaction{
		Date:          at,
		Type:          typ,
		Ticker:        ticker,
		Shares:        n,
		PricePerShare: price,
		TotalValue:    n.Mul(price).Round(2),
		Notes:         notes,
	}
}

// AddShares buys shares of ticker at the quoted price, creating the position if needed.
func AddShares(b model.Book, ticker string, shares float64, q model.Quote, at time.Time, notes string) (model.Book, model.Transaction, error) {
	ticker = NormalizeTicker(ticker)
	if ticker == "" {
		return b, model.Transaction{}, ErrInvalidTicker
	}
	if shares <= 0 {
		return b, model.Transaction{}, fmt.Errorf("%v: %w", shares, ErrInvalidShares)
	}
	if err := checkQuote(ticker, q); err != nil {
		return b, model.Transaction{}, err
	}

	out := Clone(b)
	i := indexOf(out.Positions, ticker)
	if i < 0 {
		out.Positions = append(out.Positions, model.Position{Ticker: ticker})
		i = len(out.Positions) - 1
	}
	pos := out.Positions[i]
	pos.Shares = addShares(pos.Shares, shares)
	out.Positions[i] = priced(pos, q, at)
	out.UpdatedAt = at
	return out, transaction(model.TransactionBuy, ticker, shares, q, at, notes), nil
}

// RemoveShares sells shares of ticker. Selling every share, give or take rounding noise,
// drops the position.
func RemoveShares(b model.Book, ticker string, shares float64, q model.Quote, at time.Time, notes string) (model.Book, model.Transaction, error) {
	ticker = NormalizeTicker(ticker)
	if ticker == "" {
		return b, model.Transaction{}, ErrInvalidTicker
	}
	if shares <= 0 {
		return b, model.Transaction{}, fmt.Errorf("%v: %w", shares, ErrInvalidShares)
	}
	i := indexOf(b.Positions, ticker)
	if i < 0 {
		return b, model.Transaction{}, fmt.Errorf("%s: %w", ticker, ErrUnknownTicker)
	}
	owned := b.Positions[i].Shares
	if shares > owned+shareTolerance {
		return b, model.Transaction{}, fmt.Errorf("selling %v of %s, own %v: %w", shares, ticker, owned, ErrInsufficientShares)
	}
	if err := checkQuote(ticker, q); err != nil {
		return b, model.Transaction{}, err
	}

	out := Clone(b)
	if remaining := subShares(owned, shares); remaining < shareTolerance {
		out.Positions = append(out.Positions[:i], out.Positions[i+1:]...)
	} else {
		pos := out.Positions[i]
		pos.Shares = remaining
		out.Positions[i] = priced(pos, q, at)
	}
	out.UpdatedAt = at
	return out, transaction(model.TransactionSell, ticker, shares, q, at, notes), nil
}

// SetCash replaces the cash balance.
func SetCash(b model.Book, cash decimal.Decimal, at time.Time) (model.Book, error) {
	if cash.IsNegative() {
		return b, fmt.Errorf("%s: %w", cash, ErrNegativeCash)
	}
	out := Clone(b)
	out.Cash = cash
	out.UpdatedAt = at
	return out, nil
}

// ApplyQuotes refreshes the price fields of every position with a valid quote. Positions
// without one keep their last known values.
func ApplyQuotes(b model.Book, quotes map[string]model.Quote, at time.Time) model.Book {
	out := Clone(b)
	for i, p := range out.Positions {
		q, ok := quotes[p.Ticker]
		if !ok || checkQuote(p.Ticker, q) != nil {
			continue
		}
		out.Positions[i] = priced(p, q, at)
	}
	out.LastRefresh = at
	out.UpdatedAt = at
	return out
}

// Summarize totals the book. ChangePct is relative to stock value and zero without stock.
func Summarize(b model.Book) model.Summary {
	var s model.Summary
	for _, p := range b.Positions {
		s.TotalStockValue += p.TotalValue
		s.TotalChange += p.TotalChange
	}
	s.Cash = b.Cash.InexactFloat64()
	s.TotalPortfolioValue = s.TotalStockValue + s.Cash
	if s.TotalStockValue > 0 {
		s.ChangePct = s.TotalChange / s.TotalStockValue * 100
	}
	return s
}

// Unclassified returns the held tickers without a cached sector.
func Unclassified(b model.Book) []string {
	var out []string
	for _, p := range b.Positions {
		if _, ok := b.Sectors[p.Ticker]; !ok {
			out = append(out, p.Ticker)
		}
	}
	return out
}

// SectorAllocation sums position values by sector, largest first. Sectors holding no value
// are omitted.
func SectorAllocation(b model.Book) []model.SectorAllocation {
	totals := make(map[string]float64)
	for _, p := range b.Positions {
		sector, ok := b.Sectors[p.Ticker]
		if !ok || sector == "" {
			sector = OtherSector
		}
		totals[sector] += p.TotalValue
	}
	out := make([]model.SectorAllocation, 0, len(totals))
	for sector, v := range totals {
		if v > 0 {
			out = append(out, model.SectorAllocation{Sector: sector, Value: v})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Sector < out[j].Sector
	})
	return out
}

// Watch appends an empty entry for ticker to the watchlist.
func Watch(b model.Book, ticker string) (model.Book, error) {
	ticker = NormalizeTicker(ticker)
	if ticker == "" {
		return b, ErrInvalidTicker
	}
	for _, e := range b.Watchlist {
		if e.Ticker == ticker {
			return b, fmt.Errorf("%s: %w", ticker, ErrAlreadyWatched)
		}
	}
	out := Clone(b)
	out.Watchlist = append(out.Watchlist, model.WatchlistEntry{Ticker: ticker})
	return out, nil
}

// Unwatch removes ticker from the watchlist.
func Unwatch(b model.Book, ticker string) (model.Book, error) {
	ticker = NormalizeTicker(ticker)
	for i, e := range b.Watchlist {
		if e.Ticker == ticker {
			out := Clone(b)
			out.Watchlist = append(out.Watchlist[:i], out.Watchlist[i+1:]...)
			return out, nil
		}
	}
	return b, fmt.Errorf("%s: %w", ticker, ErrNotWatched)
}

// MergeWatchlist replaces watchlist entries with the refreshed ones of the same ticker.
// Refreshed entries whose ticker is no longer watched are ignored.
func MergeWatchlist(b model.Book, refreshed []model.WatchlistEntry) model.Book {
	byTicker := make(map[string]model.WatchlistEntry, len(refreshed))
	for _, e := range refreshed {
		byTicker[e.Ticker] = e
	}
	out := Clone(b)
	for i, e := range out.Watchlist {
		if r, ok := byTicker[e.Ticker]; ok {
			out.Watchlist[i] = r
		}
	}
	return out
}
