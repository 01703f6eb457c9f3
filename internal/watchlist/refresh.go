// Package watchlist refreshes anchored 1/3/6-month price changes for watched tickers.
package watchlist

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"PortfolioLens/internal/calculator"
	"PortfolioLens/internal/model"
)

// Anchor offsets in days before now.
const (
	Anchor1M = 30
	Anchor3M = 90
	Anchor6M = 182

	// bufferDays extends the history window before the oldest anchor so that a
	// weekend or holiday at the anchor still has an earlier trading day.
	bufferDays = 30
)

// Provider supplies quotes and daily close history.
type Provider interface {
	Quote(ctx context.Context, symbol string) (model.Quote, error)
	Series(ctx context.Context, symbol string, from, to time.Time) (model.PriceSeries, error)
}

// RefreshEntry recomputes prior's prices and percentage changes as of now. If the quote
// or any anchor price cannot be obtained, prior is returned unchanged together with the
// error. Providers report an absent price or previous close as an error; a zero previous
// close or anchor only leaves its own percentage undefined.
func RefreshEntry(ctx context.Context, p Provider, prior model.WatchlistEntry, now time.Time) (model.WatchlistEntry, error) {
	ticker := prior.Ticker

	q, err := p.Quote(ctx, ticker)
	if err != nil {
		return prior, fmt.Errorf("quote %s: %w", ticker, err)
	}

	from := now.AddDate(0, 0, -(Anchor6M + bufferDays))
	series, err := p.Series(ctx, ticker, from, now)
	if err != nil {
		return prior, fmt.Errorf("history %s: %w", ticker, err)
	}

	var anchors [3]float64
	for i, days := range []int{Anchor1M, Anchor3M, Anchor6M} {
		v, err := calculator.PriceOnOrBefore(series, now.AddDate(0, 0, -days))
		if err != nil {
			return prior, fmt.Errorf("%s price %d days back: %w", ticker, days, err)
		}
		anchors[i] = v
	}

	current := q.Price
	return model.WatchlistEntry{
		Ticker:    ticker,
		PriceNow:  ptr(current),
		Price1M:   ptr(anchors[0]),
		Price3M:   ptr(anchors[1]),
		Price6M:   ptr(anchors[2]),
		PctDay:    pct(current, q.PreviousClose),
		Pct1M:     pct(current, anchors[0]),
		Pct3M:     pct(current, anchors[1]),
		Pct6M:     pct(current, anchors[2]),
		UpdatedAt: now,
	}, nil
}

// RefreshAll refreshes entries with at most workers concurrent lookups. The result keeps
// the input order; an entry whose refresh fails or panics is kept as it was and its
// error is reported under its ticker.
func RefreshAll(ctx context.Context, p Provider, entries []model.WatchlistEntry, now time.Time, workers int) ([]model.WatchlistEntry, map[string]error) {
	if workers <= 0 {
		workers = 1
	}
	out := make([]model.WatchlistEntry, len(entries))
	failed := make(map[string]error)
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, e := range entries {
		g.Go(func() error {
			updated, err := safeRefresh(ctx, p, e, now)
			out[i] = updated
			if err != nil {
				mu.Lock()
				failed[e.Ticker] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return out, failed
}

func safeRefresh(ctx context.Context, p Provider, prior model.WatchlistEntry, now time.Time) (entry model.WatchlistEntry, err error) {
	defer func() {
		if r := recover(); r != nil {
			entry, err = prior, fmt.Errorf("refresh %s: panic: %v", prior.Ticker, r)
		}
	}()
	return RefreshEntry(ctx, p, prior, now)
}

func pct(current, anchor float64) *float64 {
	v, err := calculator.PercentChange(current, anchor)
	if err != nil {
		return nil
	}
	return &v
}

func ptr(v float64) *float64 { return &v }
