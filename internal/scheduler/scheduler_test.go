package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PortfolioLens/internal/collector"
	"PortfolioLens/internal/commentary"
	"PortfolioLens/internal/holdings"
	"PortfolioLens/internal/metrics"
	"PortfolioLens/internal/model"
	"PortfolioLens/internal/news"
	"PortfolioLens/internal/recorder"
)

var now = time.Date(2024, 3, 1, 21, 0, 0, 0, time.UTC)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

type fakeNews struct {
	articles []model.Article
	err      error
}

func (f *fakeNews) CompanyNews(_ context.Context, _ string, _, _ time.Time) ([]model.Article, error) {
	return f.articles, f.err
}

type fakeGenerator struct{ reply string }

func (g fakeGenerator) Generate(_ context.Context, _, _ string) (string, error) { return g.reply, nil }

// spyRecorder captures snapshots on top of a real store.
type spyRecorder struct {
	recorder.Recorder
	mu        sync.Mutex
	watchlist []recorder.WatchlistEvent
	portfolio []recorder.PortfolioSnapshot
	risk      []model.RiskReport
}

func (s *spyRecorder) RecordWatchlist(ctx context.Context, evt recorder.WatchlistEvent) error {
	s.mu.Lock()
	s.watchlist = append(s.watchlist, evt)
	s.mu.Unlock()
	return s.Recorder.RecordWatchlist(ctx, evt)
}

func (s *spyRecorder) RecordPortfolio(ctx context.Context, snap recorder.PortfolioSnapshot) error {
	s.mu.Lock()
	s.portfolio = append(s.portfolio, snap)
	s.mu.Unlock()
	return s.Recorder.RecordPortfolio(ctx, snap)
}

func (s *spyRecorder) RecordRisk(ctx context.Context, report model.RiskReport) error {
	s.mu.Lock()
	s.risk = append(s.risk, report)
	s.mu.Unlock()
	return s.Recorder.RecordRisk(ctx, report)
}

type fixture struct {
	sched   *Scheduler
	fetcher *collector.MockFetcher
	sender  *fakeSender
	rec     *spyRecorder
	news    *fakeNews
}

func newFixture(t *testing.T, gen commentary.Generator) *fixture {
	t.Helper()
	dir := t.TempDir()
	log := zerolog.Nop()

	fetcher := &collector.MockFetcher{Price: 100, Errs: map[string]error{"BAD": errors.New("no such symbol")}}
	col := collector.NewCollector(fetcher, collector.DefaultOptions(), metrics.New(prometheus.NewRegistry()), log)

	store, err := recorder.NewSQLiteRecorder(filepath.Join(dir, "lens.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	rec := &spyRecorder{Recorder: store}

	mgr, err := holdings.NewManager(filepath.Join(dir, "book.json"), col, rec, 2, log)
	require.NoError(t, err)

	sender := &fakeSender{}
	nws := &fakeNews{}
	var svc *commentary.Service
	if gen != nil {
		svc = commentary.NewService(gen, log)
	}
	s := NewScheduler(context.Background(), Deps{
		Portfolio:  mgr,
		Market:     col,
		News:       nws,
		Commentary: svc,
		Notifier:   sender,
		Recorder:   rec,
		Metrics:    metrics.New(prometheus.NewRegistry()),
	}, log)
	s.now = func() time.Time { return now }
	return &fixture{sched: s, fetcher: fetcher, sender: sender, rec: rec, news: nws}
}

func (f *fixture) cmd(text string) string {
	return f.sched.HandleCommand(context.Background(), text)
}

func TestRegisterAll(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.sched.RegisterAll("0 30 16 * * 1-5", "0 5 16 * * 1-5", "0 0 9 * * 6"))
	assert.Len(t, f.sched.Cron.Entries(), 3)

	g := newFixture(t, nil)
	assert.Error(t, g.sched.RegisterAll("not a cron", "0 5 16 * * 1-5", "0 0 9 * * 6"))
}

func TestTradeCommands(t *testing.T) {
	f := newFixture(t, nil)

	assert.Equal(t, "🛒 <b>Buy AAPL</b> 2 @ 100.00 = 200.00 (#1)", f.cmd("/buy aapl 2 first lot"))
	assert.Equal(t, "💵 <b>Sell AAPL</b> 0.5 @ 100.00 = 50.00 (#2)", f.cmd("/sell AAPL 0.5"))
	assert.Contains(t, f.cmd("/sell AAPL 10"), "❌ sell failed")
	assert.Contains(t, f.cmd("/buy AAPL"), "Usage: /buy")
	assert.Contains(t, f.cmd("/buy AAPL many"), "Usage: /buy")
	assert.Contains(t, f.cmd("/buy BAD 1"), "❌ buy failed")

	assert.Equal(t, "💵 Cash set to 250.00", f.cmd("/cash 250"))
	assert.Contains(t, f.cmd("/cash -1"), "❌ cash update failed")

	out := f.cmd("/portfolio")
	assert.Contains(t, out, "<b>AAPL</b> 1.5 @ 100.00 = 150.00")
	assert.Contains(t, out, "<b>Total: 400.00</b>")

	hist := f.cmd("/history")
	assert.Contains(t, hist, "#2")
	assert.Contains(t, hist, "#1")
	assert.Contains(t, hist, "first lot")
	assert.Equal(t, "🗑 Deleted 1 transaction(s)", f.cmd("/history delete #1"))
	assert.NotContains(t, f.cmd("/history AAPL"), "first lot")
	assert.Contains(t, f.cmd("/history delete x"), "Usage")
}

func TestAnalysisCommands(t *testing.T) {
	f := newFixture(t, fakeGenerator{reply: "Technology"})
	f.news.articles = []model.Article{{Headline: "Record quarter", Published: now}}
	f.cmd("/buy AAPL 2")

	perf := f.cmd("/performance 90")
	assert.Contains(t, perf, "90 days vs ^GSPC")
	assert.Contains(t, f.cmd("/performance 12"), "Usage")

	risk := f.cmd("/risk aapl")
	assert.Contains(t, risk, "Risk: AAPL</b> vs SPY")
	assert.Contains(t, risk, "🤖 Technology")
	require.Len(t, f.rec.risk, 1)
	assert.Equal(t, "AAPL", f.rec.risk[0].Ticker)
	assert.Contains(t, f.cmd("/risk BAD"), "❌ risk failed")

	research := f.cmd("/research AAPL")
	assert.Contains(t, research, "🔎 <b>AAPL</b>")
	assert.Contains(t, research, "Record quarter")

	assert.Contains(t, f.cmd("/sectors"), "Technology: 200.00 (100.0%)")
	assert.Contains(t, f.cmd("/news AAPL"), "News: AAPL")

	f.news.err = news.ErrNoAPIKey
	assert.Equal(t, "📰 News is not configured.", f.cmd("/news AAPL"))
	assert.NotContains(t, f.cmd("/research AAPL"), "News")
}

func TestSectorsWithoutCommentary(t *testing.T) {
	f := newFixture(t, nil)
	f.cmd("/buy AAPL 1")
	assert.Contains(t, f.cmd("/sectors"), "Other: 100.00 (100.0%)")
}

func TestWatchlistCommands(t *testing.T) {
	f := newFixture(t, nil)

	assert.Contains(t, f.cmd("/watch msft"), "<b>MSFT</b> 100.00")
	assert.Contains(t, f.cmd("/watch MSFT"), "❌ watch failed")
	assert.Contains(t, f.cmd("/watch BAD"), "Watching BAD (prices unavailable")

	list := f.cmd("/watchlist")
	assert.Contains(t, list, "<b>MSFT</b>")
	assert.Contains(t, list, "<b>BAD</b> n/a")

	assert.Equal(t, "🗑 Removed BAD from the watchlist", f.cmd("/unwatch bad"))
	assert.Contains(t, f.cmd("/unwatch BAD"), "❌ unwatch failed")
}

func TestWatchlistTask(t *testing.T) {
	f := newFixture(t, nil)
	f.cmd("/watch MSFT")
	f.cmd("/watch BAD")

	f.sched.watchlistTask()

	require.Len(t, f.rec.watchlist, 1)
	evt := f.rec.watchlist[0]
	assert.Equal(t, 1, evt.Refreshed)
	assert.Equal(t, []string{"BAD"}, evt.Failed)
	assert.Equal(t, now, evt.Timestamp)
}

func TestPortfolioTaskAndRefresh(t *testing.T) {
	f := newFixture(t, nil)
	f.cmd("/buy AAPL 3")

	f.sched.portfolioTask()
	require.Len(t, f.rec.portfolio, 1)
	assert.Equal(t, 1, f.rec.portfolio[0].Positions)
	assert.InDelta(t, 300, f.rec.portfolio[0].Summary.TotalStockValue, 1e-9)

	f.fetcher.Errs["AAPL"] = errors.New("timeout")
	out := f.cmd("/refresh")
	assert.Contains(t, out, "<b>AAPL</b> 3 @ 100.00")
	assert.Contains(t, out, "Stale prices: AAPL")
}

func TestReportTask(t *testing.T) {
	f := newFixture(t, fakeGenerator{reply: "Steady week."})
	f.cmd("/buy AAPL 1")

	f.sched.RunReportNow()

	require.Len(t, f.sender.sent, 1)
	msg := f.sender.sent[0]
	assert.Contains(t, msg, "weekly report")
	assert.Contains(t, msg, "30 days vs ^GSPC")
	assert.Contains(t, msg, "🤖 Steady week.")
}

func TestReportTask_EmptyBook(t *testing.T) {
	f := newFixture(t, nil)
	f.sched.RunReportNow()
	require.Len(t, f.sender.sent, 1)
	assert.Contains(t, f.sender.sent[0], "No positions.")
}

func TestHelp(t *testing.T) {
	f := newFixture(t, nil)
	assert.Contains(t, f.cmd("/help"), "PortfolioLens commands")
	assert.Contains(t, f.cmd(""), "PortfolioLens commands")
	assert.Contains(t, f.cmd("/portfolio@PortfolioLensBot"), "Portfolio")
}
