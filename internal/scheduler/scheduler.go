package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"PortfolioLens/internal/calculator"
	"PortfolioLens/internal/commentary"
	"PortfolioLens/internal/holdings"
	"PortfolioLens/internal/metrics"
	"PortfolioLens/internal/model"
	"PortfolioLens/internal/notifier"
	"PortfolioLens/internal/recorder"
)

// ReportDays is the performance window of the weekly report.
const ReportDays = 30

// Portfolio is the holdings book as used by jobs and commands.
type Portfolio interface {
	Book() model.Book
	Summary() model.Summary
	Buy(ctx context.Context, ticker string, shares float64, notes string) (model.Transaction, error)
	Sell(ctx context.Context, ticker string, shares float64, notes string) (model.Transaction, error)
	SetCash(cash decimal.Decimal) error
	RefreshPrices(ctx context.Context) (map[string]error, error)
	Sectors(ctx context.Context, c holdings.SectorClassifier) ([]model.SectorAllocation, error)
	Watchlist() []model.WatchlistEntry
	Watch(ctx context.Context, ticker string) (model.WatchlistEntry, error)
	Unwatch(ticker string) error
	RefreshWatchlist(ctx context.Context) (map[string]error, error)
}

// Market provides the analysis views built from price history.
type Market interface {
	Performance(ctx context.Context, positions []model.Position, days int, now time.Time) (model.PerformanceReport, error)
	Risk(ctx context.Context, ticker string, now time.Time) (model.RiskReport, error)
	Research(ctx context.Context, ticker string) (model.ResearchSnapshot, error)
}

// NewsSource lists company news.
type NewsSource interface {
	CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]model.Article, error)
}

// Sender delivers chat messages.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Deps are the services the scheduler drives.
type Deps struct {
	Portfolio  Portfolio
	Market     Market
	News       NewsSource
	Commentary *commentary.Service
	Notifier   Sender
	Recorder   recorder.Recorder
	Metrics    *metrics.Recorder
	// NewsDays is how far back /news and /research look.
	NewsDays int
}

// Scheduler manages all cron tasks and answers chat commands.
type Scheduler struct {
	Cron *cron.Cron
	Deps
	Ctx context.Context

	now func() time.Time
	log zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, deps Deps, log zerolog.Logger) *Scheduler {
	if deps.Recorder == nil {
		deps.Recorder = recorder.NewNoopRecorder()
	}
	if deps.NewsDays <= 0 {
		deps.NewsDays = 60
	}
	return &Scheduler{
		Cron: cron.New(cron.WithSeconds()),
		Deps: deps,
		Ctx:  ctx,
		now:  func() time.Time { return time.Now().UTC() },
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// RegisterAll registers the watchlist, price refresh and weekly report tasks.
func (s *Scheduler) RegisterAll(watchlistCron, portfolioCron, reportCron string) error {
	if _, err := s.Cron.AddFunc(watchlistCron, s.watchlistTask); err != nil {
		return fmt.Errorf("register watchlist task: %w", err)
	}
	if _, err := s.Cron.AddFunc(portfolioCron, s.portfolioTask); err != nil {
		return fmt.Errorf("register portfolio task: %w", err)
	}
	if _, err := s.Cron.AddFunc(reportCron, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunReportNow executes the weekly report immediately.
func (s *Scheduler) RunReportNow() {
	s.reportTask()
}

func (s *Scheduler) watchlistTask() {
	err := s.refreshWatchlist(s.Ctx)
	s.Metrics.RecordJob("watchlist", err)
}

func (s *Scheduler) refreshWatchlist(ctx context.Context) error {
	s.log.Info().Msg("running watchlist refresh")
	failed, err := s.Portfolio.RefreshWatchlist(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("watchlist refresh")
		return err
	}
	evt := recorder.WatchlistEvent{
		Timestamp: s.now(),
		Refreshed: len(s.Portfolio.Watchlist()) - len(failed),
		Failed:    sortedKeys(failed),
	}
	if err := s.Recorder.RecordWatchlist(ctx, evt); err != nil {
		s.log.Error().Err(err).Msg("record watchlist refresh")
	}
	return nil
}

func (s *Scheduler) portfolioTask() {
	_, err := s.refreshPrices(s.Ctx)
	s.Metrics.RecordJob("portfolio", err)
}

func (s *Scheduler) refreshPrices(ctx context.Context) (map[string]error, error) {
	s.log.Info().Msg("running price refresh")
	failed, err := s.Portfolio.RefreshPrices(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("price refresh")
		return failed, err
	}
	book := s.Portfolio.Book()
	snap := recorder.PortfolioSnapshot{
		Timestamp: s.now(),
		Summary:   s.Portfolio.Summary(),
		Positions: len(book.Positions),
	}
	if err := s.Recorder.RecordPortfolio(ctx, snap); err != nil {
		s.log.Error().Err(err).Msg("record portfolio snapshot")
	}
	return failed, nil
}

func (s *Scheduler) reportTask() {
	s.log.Info().Msg("running weekly report")
	report, err := s.weeklyReport(s.Ctx)
	s.Metrics.RecordJob("report", err)
	if err != nil {
		s.log.Error().Err(err).Msg("weekly report")
		s.trySend(fmt.Sprintf("❌ Weekly report failed: %v", err))
		return
	}
	s.trySend(report)
}

func (s *Scheduler) weeklyReport(ctx context.Context) (string, error) {
	if _, err := s.refreshPrices(ctx); err != nil {
		return "", err
	}
	book := s.Portfolio.Book()
	summary := s.Portfolio.Summary()
	now := s.now()
	if len(book.Positions) == 0 {
		return notifier.FormatPortfolio(summary, nil, book.LastRefresh), nil
	}

	perf, err := s.Market.Performance(ctx, book.Positions, ReportDays, now)
	if err != nil && !errors.Is(err, calculator.ErrAlignmentEmpty) {
		return "", err
	}
	review := ""
	if s.Commentary.Enabled() {
		if review, err = s.Commentary.PortfolioReview(ctx, summary, perf); err != nil {
			s.log.Warn().Err(err).Msg("portfolio review skipped")
			review = ""
		}
	}
	return notifier.FormatWeeklyReport(summary, perf, review, now), nil
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}

func sortedKeys(m map[string]error) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
