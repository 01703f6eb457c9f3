package scheduler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"PortfolioLens/internal/collector"
	"PortfolioLens/internal/holdings"
	"PortfolioLens/internal/model"
	"PortfolioLens/internal/news"
	"PortfolioLens/internal/notifier"
	"PortfolioLens/internal/recorder"
)

const newsLimit = 5

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	args := strings.Fields(command)
	if len(args) == 0 {
		return notifier.HelpText
	}
	// Group chats append the bot name: /portfolio@PortfolioLensBot.
	name, _, _ := strings.Cut(strings.ToLower(args[0]), "@")
	args = args[1:]

	switch name {
	case "/portfolio":
		book := s.Portfolio.Book()
		return notifier.FormatPortfolio(s.Portfolio.Summary(), book.Positions, book.LastRefresh)
	case "/buy", "/sell":
		return s.trade(ctx, name, args)
	case "/cash":
		return s.setCash(args)
	case "/refresh":
		return s.refresh(ctx)
	case "/sectors":
		return s.sectors(ctx)
	case "/performance":
		return s.performance(ctx, args)
	case "/risk":
		return s.risk(ctx, args)
	case "/research":
		return s.research(ctx, args)
	case "/news":
		return s.news(ctx, args)
	case "/watchlist":
		return notifier.FormatWatchlist(s.Portfolio.Watchlist(), nil)
	case "/watch":
		return s.watch(ctx, args)
	case "/unwatch":
		return s.unwatch(args)
	case "/history":
		return s.history(ctx, args)
	default:
		return notifier.HelpText
	}
}

func usage(text string) string { return "Usage: " + text }

func failure(action string, err error) string {
	return fmt.Sprintf("❌ %s failed: %v", action, err)
}

func (s *Scheduler) ticker(args []string) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	t := holdings.NormalizeTicker(args[0])
	return t, t != ""
}

func (s *Scheduler) trade(ctx context.Context, name string, args []string) string {
	if len(args) < 2 {
		return usage(name + " TICKER SHARES [notes]")
	}
	shares, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return usage(name + " TICKER SHARES [notes]")
	}
	notes := strings.Join(args[2:], " ")

	var tx model.Transaction
	if name == "/buy" {
		tx, err = s.Portfolio.Buy(ctx, args[0], shares, notes)
	} else {
		tx, err = s.Portfolio.Sell(ctx, args[0], shares, notes)
	}
	if err != nil {
		return failure(strings.TrimPrefix(name, "/"), err)
	}
	return notifier.FormatTransaction(tx)
}

func (s *Scheduler) setCash(args []string) string {
	if len(args) != 1 {
		return usage("/cash AMOUNT")
	}
	amount, err := decimal.NewFromString(args[0])
	if err != nil {
		return usage("/cash AMOUNT")
	}
	if err := s.Portfolio.SetCash(amount); err != nil {
		return failure("cash update", err)
	}
	return fmt.Sprintf("💵 Cash set to %s", amount.StringFixed(2))
}

func (s *Scheduler) refresh(ctx context.Context) string {
	failed, err := s.refreshPrices(ctx)
	if err != nil {
		return failure("refresh", err)
	}
	book := s.Portfolio.Book()
	out := notifier.FormatPortfolio(s.Portfolio.Summary(), book.Positions, book.LastRefresh)
	if len(failed) > 0 {
		out += fmt.Sprintf("\n⚠️ Stale prices: %s", strings.Join(sortedKeys(failed), ", "))
	}
	return out
}

func (s *Scheduler) sectors(ctx context.Context) string {
	var classifier holdings.SectorClassifier
	if s.Commentary.Enabled() {
		classifier = s.Commentary
	}
	allocs, err := s.Portfolio.Sectors(ctx, classifier)
	if err != nil {
		return failure("sector allocation", err)
	}
	return notifier.FormatSectors(allocs)
}

func (s *Scheduler) performance(ctx context.Context, args []string) string {
	days := ReportDays
	if len(args) > 0 {
		d, err := strconv.Atoi(args[0])
		if err != nil || !slices.Contains(collector.PerformanceRanges, d) {
			return usage(fmt.Sprintf("/performance [DAYS], DAYS one of %v", collector.PerformanceRanges))
		}
		days = d
	}
	report, err := s.Market.Performance(ctx, s.Portfolio.Book().Positions, days, s.now())
	if err != nil {
		return failure("performance", err)
	}
	return notifier.FormatPerformance(report)
}

func (s *Scheduler) risk(ctx context.Context, args []string) string {
	ticker, ok := s.ticker(args)
	if !ok {
		return usage("/risk TICKER")
	}
	report, err := s.Market.Risk(ctx, ticker, s.now())
	if err != nil {
		return failure("risk", err)
	}
	if s.Commentary.Enabled() {
		if text, err := s.Commentary.RiskCommentary(ctx, report); err == nil {
			report.Commentary = text
		} else {
			s.log.Warn().Err(err).Str("ticker", ticker).Msg("risk commentary skipped")
		}
	}
	if err := s.Recorder.RecordRisk(ctx, report); err != nil {
		s.log.Error().Err(err).Str("ticker", ticker).Msg("record risk")
	}
	return notifier.FormatRisk(report)
}

func (s *Scheduler) research(ctx context.Context, args []string) string {
	ticker, ok := s.ticker(args)
	if !ok {
		return usage("/research TICKER")
	}
	snap, err := s.Market.Research(ctx, ticker)
	if err != nil {
		return failure("research", err)
	}
	overview := ""
	if s.Commentary.Enabled() {
		if overview, err = s.Commentary.ResearchOverview(ctx, snap); err != nil {
			s.log.Warn().Err(err).Str("ticker", ticker).Msg("research overview skipped")
			overview = ""
		}
	}
	out := notifier.FormatResearch(snap, overview)
	if articles, err := s.companyNews(ctx, ticker); err == nil {
		out += "\n" + notifier.FormatNews(ticker, articles, newsLimit)
	}
	return out
}

func (s *Scheduler) companyNews(ctx context.Context, ticker string) ([]model.Article, error) {
	if s.News == nil {
		return nil, news.ErrNoAPIKey
	}
	now := s.now()
	return s.News.CompanyNews(ctx, ticker, now.AddDate(0, 0, -s.NewsDays), now)
}

func (s *Scheduler) news(ctx context.Context, args []string) string {
	ticker, ok := s.ticker(args)
	if !ok {
		return usage("/news TICKER")
	}
	articles, err := s.companyNews(ctx, ticker)
	if errors.Is(err, news.ErrNoAPIKey) {
		return "📰 News is not configured."
	}
	if err != nil {
		return failure("news", err)
	}
	return notifier.FormatNews(ticker, articles, newsLimit)
}

func (s *Scheduler) watch(ctx context.Context, args []string) string {
	if len(args) != 1 {
		return usage("/watch TICKER")
	}
	entry, err := s.Portfolio.Watch(ctx, args[0])
	if errors.Is(err, holdings.ErrAlreadyWatched) || errors.Is(err, holdings.ErrInvalidTicker) {
		return failure("watch", err)
	}
	if err != nil {
		return fmt.Sprintf("👀 Watching %s (prices unavailable: %v)", entry.Ticker, err)
	}
	return notifier.FormatWatchlist([]model.WatchlistEntry{entry}, nil)
}

func (s *Scheduler) unwatch(args []string) string {
	ticker, ok := s.ticker(args)
	if !ok || len(args) != 1 {
		return usage("/unwatch TICKER")
	}
	if err := s.Portfolio.Unwatch(ticker); err != nil {
		return failure("unwatch", err)
	}
	return fmt.Sprintf("🗑 Removed %s from the watchlist", ticker)
}

func (s *Scheduler) history(ctx context.Context, args []string) string {
	if len(args) > 0 && strings.EqualFold(args[0], "delete") {
		return s.deleteHistory(ctx, args[1:])
	}
	var f recorder.TransactionFilter
	if ticker, ok := s.ticker(args); ok {
		f.Ticker = ticker
	}
	txs, err := s.Recorder.ListTransactions(ctx, f)
	if err != nil {
		return failure("history", err)
	}
	return notifier.FormatTransactions(txs)
}

func (s *Scheduler) deleteHistory(ctx context.Context, args []string) string {
	if len(args) == 0 {
		return usage("/history delete ID [ID...]")
	}
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(strings.TrimPrefix(a, "#"), 10, 64)
		if err != nil {
			return usage("/history delete ID [ID...]")
		}
		ids = append(ids, id)
	}
	n, err := s.Recorder.DeleteTransactions(ctx, ids)
	if err != nil {
		return failure("delete", err)
	}
	return fmt.Sprintf("🗑 Deleted %d transaction(s)", n)
}
