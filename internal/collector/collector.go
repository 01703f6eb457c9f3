package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"PortfolioLens/internal/calculator"
	"PortfolioLens/internal/metrics"
	"PortfolioLens/internal/model"
	"PortfolioLens/internal/strategy"
)

// PerformanceRanges are the lookback windows offered for basket performance, in days.
var PerformanceRanges = []int{30, 90, 180, 365, 1095, 1825}

// researchLookbackDays covers 200 trading days for MA200 and a full 52-week range.
const researchLookbackDays = 400

// Options tunes a Collector.
type Options struct {
	Benchmark     string // performance comparison index
	RiskBenchmark string // beta reference
	Workers       int
	LookbackDays  int // risk window
	Risk          calculator.RiskOptions
}

// DefaultOptions returns the stock benchmark and risk settings.
func DefaultOptions() Options {
	return Options{
		Benchmark:     "^GSPC",
		RiskBenchmark: "SPY",
		Workers:       4,
		LookbackDays:  365,
		Risk:          calculator.DefaultRiskOptions(),
	}
}

// Collector orchestrates data fetching and feeds the calculators.
type Collector struct {
	fetcher Fetcher
	opts    Options
	metrics *metrics.Recorder
	log     zerolog.Logger
}

// NewCollector creates a new Collector. Zero option fields fall back to DefaultOptions.
func NewCollector(fetcher Fetcher, opts Options, m *metrics.Recorder, log zerolog.Logger) *Collector {
	def := DefaultOptions()
	if opts.Benchmark == "" {
		opts.Benchmark = def.Benchmark
	}
	if opts.RiskBenchmark == "" {
		opts.RiskBenchmark = def.RiskBenchmark
	}
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = def.LookbackDays
	}
	if opts.Risk.PeriodsPerYear == 0 {
		opts.Risk.PeriodsPerYear = def.Risk.PeriodsPerYear
	}
	if opts.Risk.Confidence == 0 {
		opts.Risk.Confidence = def.Risk.Confidence
	}
	return &Collector{
		fetcher: fetcher,
		opts:    opts,
		metrics: m,
		log:     log.With().Str("component", "collector").Str("provider", fetcher.Name()).Logger(),
	}
}

// Name returns the underlying provider name.
func (c *Collector) Name() string { return c.fetcher.Name() }

// Options returns the effective options.
func (c *Collector) Options() Options { return c.opts }

func (c *Collector) bars(ctx context.Context, symbol string, from, to time.Time) ([]model.OHLCV, error) {
	start := time.Now()
	c.metrics.RecordFetch(c.fetcher.Name(), "history")
	bars, err := c.fetcher.FetchHistory(ctx, symbol, from, to)
	c.metrics.RecordLatency("fetch_history", time.Since(start).Seconds())
	if err != nil {
		c.metrics.RecordError("fetch_history")
		return nil, fmt.Errorf("fetch history %s: %w", symbol, err)
	}
	return bars, nil
}

// Series fetches the daily close series of symbol between from and to.
func (c *Collector) Series(ctx context.Context, symbol string, from, to time.Time) (model.PriceSeries, error) {
	bars, err := c.bars(ctx, symbol, from, to)
	if err != nil {
		return model.PriceSeries{Symbol: symbol}, err
	}
	return model.SeriesFromBars(symbol, bars), nil
}

// Quote fetches the latest quote for symbol.
func (c *Collector) Quote(ctx context.Context, symbol string) (model.Quote, error) {
	start := time.Now()
	c.metrics.RecordFetch(c.fetcher.Name(), "quote")
	q, err := c.fetcher.FetchQuote(ctx, symbol)
	c.metrics.RecordLatency("fetch_quote", time.Since(start).Seconds())
	if err != nil {
		c.metrics.RecordError("fetch_quote")
		return model.Quote{}, fmt.Errorf("fetch quote %s: %w", symbol, err)
	}
	c.metrics.RecordLastPrice(symbol, q.Price)
	return q, nil
}

// CollectMany fetches the series of every symbol concurrently, at most Workers at a time.
// A failing symbol lands in the error map and never cancels the others.
func (c *Collector) CollectMany(ctx context.Context, symbols []string, from, to time.Time) (map[string]model.PriceSeries, map[string]error) {
	series := make(map[string]model.PriceSeries, len(symbols))
	failed := make(map[string]error)
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(c.opts.Workers)
	for _, sym := range dedupe(symbols) {
		g.Go(func() error {
			s, err := c.safeSeries(ctx, sym, from, to)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[sym] = err
				return nil
			}
			series[sym] = s
			return nil
		})
	}
	_ = g.Wait()
	return series, failed
}

func (c *Collector) safeSeries(ctx context.Context, symbol string, from, to time.Time) (s model.PriceSeries, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Str("symbol", symbol).Interface("panic", r).Msg("series fetch panicked")
			err = fmt.Errorf("fetch %s: panic: %v", symbol, r)
		}
	}()
	return c.Series(ctx, symbol, from, to)
}

func dedupe(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Performance reconstructs the value of the held positions over the last days and
// compares it with the benchmark. Tickers that fail to fetch are reported in Failed.
func (c *Collector) Performance(ctx context.Context, positions []model.Position, days int, now time.Time) (model.PerformanceReport, error) {
	report := model.PerformanceReport{Days: days}
	if days <= 0 {
		return report, fmt.Errorf("invalid range of %d days", days)
	}

	shares := make(map[string]float64, len(positions))
	tickers := make([]string, 0, len(positions))
	for _, p := range positions {
		if p.Shares <= 0 {
			continue
		}
		shares[p.Ticker] += p.Shares
		tickers = append(tickers, p.Ticker)
	}
	if len(shares) == 0 {
		return report, fmt.Errorf("no positions held: %w", calculator.ErrAlignmentEmpty)
	}

	from := now.AddDate(0, 0, -days)
	fetched, failed := c.CollectMany(ctx, append(tickers, c.opts.Benchmark), from, now)

	bench, ok := fetched[c.opts.Benchmark]
	if err := failed[c.opts.Benchmark]; err != nil || !ok {
		return report, fmt.Errorf("benchmark %s: %w", c.opts.Benchmark, errors.Join(err, calculator.ErrMissing))
	}

	raw := make(map[string]model.PriceSeries, len(shares))
	for t := range shares {
		if err := failed[t]; err != nil {
			if report.Failed == nil {
				report.Failed = make(map[string]string)
			}
			report.Failed[t] = err.Error()
			c.log.Warn().Err(err).Str("ticker", t).Msg("excluding ticker from performance")
			continue
		}
		raw[t] = fetched[t]
	}

	set, err := calculator.Align(raw, from, now)
	report.Dropped = set.Dropped
	if err != nil {
		return report, err
	}
	valuation, err := calculator.Reconstruct(set, shares)
	if err != nil {
		return report, err
	}
	report.Valuation = valuation

	cmp, err := calculator.Compare(valuation, bench)
	if err != nil {
		return report, err
	}
	report.Comparison = cmp
	return report, nil
}

// Risk computes the risk metrics of ticker over the lookback window against the risk
// benchmark. A benchmark failure only leaves Beta undefined.
func (c *Collector) Risk(ctx context.Context, ticker string, now time.Time) (model.RiskReport, error) {
	from := now.AddDate(0, 0, -c.opts.LookbackDays)
	report := model.RiskReport{
		Ticker:     ticker,
		Benchmark:  c.opts.RiskBenchmark,
		From:       model.Day(from),
		To:         model.Day(now),
		Confidence: c.opts.Risk.Confidence,
	}

	fetched, failed := c.CollectMany(ctx, []string{ticker, c.opts.RiskBenchmark}, from, now)
	if err := failed[ticker]; err != nil {
		return report, err
	}
	inst := fetched[ticker]
	bench := fetched[c.opts.RiskBenchmark]
	if err := failed[c.opts.RiskBenchmark]; err != nil {
		c.log.Warn().Err(err).Str("benchmark", c.opts.RiskBenchmark).Msg("benchmark unavailable, beta undefined")
		bench = model.PriceSeries{Symbol: c.opts.RiskBenchmark}
	}

	report.Prices = inst
	report.Observations = inst.Len()
	report.Metrics = calculator.ComputeRisk(inst, bench, c.opts.Risk)
	return report, nil
}

// Research assembles the quote and technical snapshot of ticker. Indicators the history
// is too short for stay nil.
func (c *Collector) Research(ctx context.Context, ticker string) (model.ResearchSnapshot, error) {
	snap := model.ResearchSnapshot{Symbol: ticker}

	q, err := c.Quote(ctx, ticker)
	if err != nil {
		return snap, err
	}
	snap.CurrentPrice = q.Price
	snap.PreviousClose = q.PreviousClose
	snap.Volume = q.Volume
	if v, err := calculator.PercentChange(q.Price, q.PreviousClose); err == nil {
		snap.DayChangePct = &v
	}

	now := q.FetchedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	bars, err := c.bars(ctx, ticker, now.AddDate(0, 0, -researchLookbackDays), now)
	if err != nil {
		c.log.Warn().Err(err).Str("ticker", ticker).Msg("history unavailable, indicators skipped")
		return snap, nil
	}
	closes := model.SeriesFromBars(ticker, bars).Closes()

	if ma, err := calculator.MA200(closes); err == nil {
		snap.MA200 = &ma
	} else {
		c.log.Debug().Err(err).Str("ticker", ticker).Msg("MA200 skipped")
	}
	if rsi, err := calculator.RSI(closes, 14); err == nil {
		snap.DailyRSI = &rsi
	} else {
		c.log.Debug().Err(err).Str("ticker", ticker).Msg("RSI skipped")
	}
	if h, l, err := calculator.Range52Week(bars); err == nil {
		snap.High52w, snap.Low52w = &h, &l
		if pos, err := calculator.RangePosition(q.Price, h, l); err == nil {
			snap.Position52w = &pos
		}
	}
	if h, l, err := calculator.Range30Day(bars); err == nil {
		snap.High30d, snap.Low30d = &h, &l
	}
	snap.Score = strategy.Assess(snap)
	return snap, nil
}
