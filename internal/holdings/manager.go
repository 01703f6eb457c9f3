package holdings

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"PortfolioLens/internal/model"
	"PortfolioLens/internal/watchlist"
)

// TransactionLog stores executed trades.
type TransactionLog interface {
	RecordTransaction(ctx context.Context, tx model.Transaction) (int64, error)
}

// SectorClassifier names the sector of a ticker.
type SectorClassifier interface {
	ClassifySector(ctx context.Context, ticker string) (string, error)
}

// Manager owns the persisted book and serializes every change to it.
// Network calls are made outside the lock and their results merged afterwards.
type Manager struct {
	mu       sync.Mutex
	book     model.Book
	filePath string

	market  watchlist.Provider
	txlog   TransactionLog
	workers int
	now     func() time.Time
	log     zerolog.Logger
}

// NewManager creates a Manager, loading or initializing the book from disk.
func NewManager(filePath string, market watchlist.Provider, txlog TransactionLog, workers int, log zerolog.Logger) (*Manager, error) {
	book, err := LoadBook(filePath)
	if err != nil {
		return nil, fmt.Errorf("load book %s: %w", filePath, err)
	}
	if workers <= 0 {
		workers = 4
	}
	m := &Manager{
		book:     book,
		filePath: filePath,
		market:   market,
		txlog:    txlog,
		workers:  workers,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log.With().Str("component", "holdings").Logger(),
	}
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

// Book returns a copy of the current book.
func (m *Manager) Book() model.Book {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Clone(m.book)
}

// Summary totals the current book.
func (m *Manager) Summary() model.Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Summarize(m.book)
}

// Buy quotes ticker, adds shares to the book and logs the transaction.
func (m *Manager) Buy(ctx context.Context, ticker string, shares float64, notes string) (model.Transaction, error) {
	return m.trade(ctx, ticker, shares, notes, AddShares)
}

// Sell quotes ticker, removes shares from the book and logs the transaction.
func (m *Manager) Sell(ctx context.Context, ticker string, shares float64, notes string) (model.Transaction, error) {
	return m.trade(ctx, ticker, shares, notes, RemoveShares)
}

type tradeFunc func(model.Book, string, float64, model.Quote, time.Time, string) (model.Book, model.Transaction, error)

func (m *Manager) trade(ctx context.Context, ticker string, shares float64, notes string, apply tradeFunc) (model.Transaction, error) {
	ticker = NormalizeTicker(ticker)
	if ticker == "" {
		return model.Transaction{}, ErrInvalidTicker
	}
	if shares <= 0 {
		return model.Transaction{}, fmt.Errorf("%v: %w", shares, ErrInvalidShares)
	}
	q, err := m.market.Quote(ctx, ticker)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%s: %w: %w", ticker, ErrNoPrice, err)
	}

	m.mu.Lock()
	book, tx, err := apply(m.book, ticker, shares, q, m.now(), notes)
	if err != nil {
		m.mu.Unlock()
		return model.Transaction{}, err
	}
	m.book = book
	err = m.save()
	m.mu.Unlock()
	if err != nil {
		return tx, fmt.Errorf("save book: %w", err)
	}

	if m.txlog != nil {
		id, err := m.txlog.RecordTransaction(ctx, tx)
		if err != nil {
			m.log.Error().Err(err).Str("ticker", ticker).Msg("failed to record transaction")
		}
		tx.ID = id
	}
	m.log.Info().Str("type", string(tx.Type)).Str("ticker", ticker).Float64("shares", shares).Float64("price", q.Price).Msg("trade applied")
	return tx, nil
}

// SetCash replaces the cash balance.
func (m *Manager) SetCash(cash decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	book, err := SetCash(m.book, cash, m.now())
	if err != nil {
		return err
	}
	m.book = book
	return m.save()
}

// RefreshPrices quotes every held ticker and updates the price fields. A ticker whose quote
// fails keeps its previous values and is reported in the returned map.
func (m *Manager) RefreshPrices(ctx context.Context) (map[string]error, error) {
	tickers := make([]string, 0)
	for _, p := range m.Book().Positions {
		tickers = append(tickers, p.Ticker)
	}

	quotes := make(map[string]model.Quote, len(tickers))
	failed := make(map[string]error)
	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(m.workers)
	for _, t := range tickers {
		g.Go(func() error {
			q, err := m.market.Quote(ctx, t)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[t] = err
				return nil
			}
			quotes[t] = q
			return nil
		})
	}
	_ = g.Wait()

	for t, err := range failed {
		m.log.Warn().Err(err).Str("ticker", t).Msg("price refresh failed, keeping last price")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.book = ApplyQuotes(m.book, quotes, m.now())
	return failed, m.save()
}

// Sectors returns the sector allocation, classifying tickers not seen before. A failed
// classification counts the ticker as Other for this call and retries next time.
func (m *Manager) Sectors(ctx context.Context, c SectorClassifier) ([]model.SectorAllocation, error) {
	pending := Unclassified(m.Book())
	classified := make(map[string]string, len(pending))
	if c != nil {
		for _, t := range pending {
			sector, err := c.ClassifySector(ctx, t)
			if err != nil {
				m.log.Warn().Err(err).Str("ticker", t).Msg("sector classification failed")
				continue
			}
			classified[t] = sector
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(classified) > 0 {
		book := Clone(m.book)
		for t, s := range classified {
			book.Sectors[t] = s
		}
		m.book = book
		if err := m.save(); err != nil {
			return nil, err
		}
	}
	return SectorAllocation(m.book), nil
}

// Watchlist returns the current watchlist entries.
func (m *Manager) Watchlist() []model.WatchlistEntry {
	return m.Book().Watchlist
}

// Watch adds ticker to the watchlist and refreshes it right away. When the refresh fails
// the entry stays with undefined fields and the error is returned alongside it.
func (m *Manager) Watch(ctx context.Context, ticker string) (model.WatchlistEntry, error) {
	m.mu.Lock()
	book, err := Watch(m.book, ticker)
	if err != nil {
		m.mu.Unlock()
		return model.WatchlistEntry{}, err
	}
	m.book = book
	err = m.save()
	m.mu.Unlock()
	if err != nil {
		return model.WatchlistEntry{}, err
	}

	prior := model.WatchlistEntry{Ticker: NormalizeTicker(ticker)}
	entry, refreshErr := watchlist.RefreshEntry(ctx, m.market, prior, m.now())
	if refreshErr != nil {
		return entry, refreshErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.book = MergeWatchlist(m.book, []model.WatchlistEntry{entry})
	return entry, m.save()
}

// Unwatch removes ticker from the watchlist.
func (m *Manager) Unwatch(ticker string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	book, err := Unwatch(m.book, ticker)
	if err != nil {
		return err
	}
	m.book = book
	return m.save()
}

// RefreshWatchlist refreshes every watchlist entry. Failed tickers keep their previous
// values and are reported in the returned map.
func (m *Manager) RefreshWatchlist(ctx context.Context) (map[string]error, error) {
	entries := m.Watchlist()
	refreshed, failed := watchlist.RefreshAll(ctx, m.market, entries, m.now(), m.workers)
	for t, err := range failed {
		m.log.Warn().Err(err).Str("ticker", t).Msg("watchlist refresh failed, keeping last values")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.book = MergeWatchlist(m.book, refreshed)
	return failed, m.save()
}

func (m *Manager) save() error {
	m.book.UpdatedAt = m.now()
	return SaveBook(m.filePath, m.book)
}
