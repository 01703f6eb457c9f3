package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"PortfolioLens/internal/model"
)

// HelpText lists the bot commands.
const HelpText = `📖 <b>PortfolioLens commands</b>

/portfolio - holdings and totals
/buy TICKER SHARES [notes] - record a purchase
/sell TICKER SHARES [notes] - record a sale
/cash AMOUNT - set the cash balance
/refresh - refresh holding prices
/sectors - sector allocation
/performance [DAYS] - portfolio vs benchmark
/risk TICKER - risk metrics
/research TICKER - quote and indicators
/news TICKER - recent company news
/watchlist - watched tickers
/watch TICKER - add to the watchlist
/unwatch TICKER - remove from the watchlist
/history [TICKER] - transaction log
/history delete ID [ID...] - delete log entries`

const dateLayout = "2006-01-02"

func esc(s string) string { return html.EscapeString(s) }

func optPct(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", *v)
}

func optNum(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

func arrow(v float64) string {
	switch {
	case v > 0:
		return "🟢"
	case v < 0:
		return "🔴"
	default:
		return "⚪"
	}
}

// FormatPortfolio renders the holdings table and totals.
func FormatPortfolio(summary model.Summary, positions []model.Position, lastRefresh time.Time) string {
	var b strings.Builder
	b.WriteString("💼 <b>Portfolio</b>\n\n")
	if len(positions) == 0 {
		b.WriteString("No positions.\n")
	}
	for _, p := range positions {
		b.WriteString(fmt.Sprintf("%s <b>%s</b> %g @ %.2f = %.2f (%+.2f)\n",
			arrow(p.TotalChange), esc(p.Ticker), p.Shares, p.SharePrice, p.TotalValue, p.TotalChange))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Stocks: %.2f\n", summary.TotalStockValue))
	b.WriteString(fmt.Sprintf("Cash: %.2f\n", summary.Cash))
	b.WriteString(fmt.Sprintf("<b>Total: %.2f</b>\n", summary.TotalPortfolioValue))
	b.WriteString(fmt.Sprintf("Day change: %+.2f (%+.2f%%)\n", summary.TotalChange, summary.ChangePct))
	if !lastRefresh.IsZero() {
		b.WriteString(fmt.Sprintf("Prices as of %s\n", lastRefresh.Format("2006-01-02 15:04")))
	}
	return b.String()
}

// FormatTransaction confirms a single recorded trade.
func FormatTransaction(tx model.Transaction) string {
	icon := "🛒"
	if tx.Type == model.TransactionSell {
		icon = "💵"
	}
	s := fmt.Sprintf("%s <b>%s %s</b> %s @ %s = %s",
		icon, tx.Type, esc(tx.Ticker), tx.Shares.String(), tx.PricePerShare.StringFixed(2), tx.TotalValue.StringFixed(2))
	if tx.ID > 0 {
		s += fmt.Sprintf(" (#%d)", tx.ID)
	}
	return s
}

// FormatTransactions renders the transaction log, newest first as given.
func FormatTransactions(txs []model.Transaction) string {
	if len(txs) == 0 {
		return "📜 No transactions recorded."
	}
	var b strings.Builder
	b.WriteString("📜 <b>Transactions</b>\n\n")
	for _, tx := range txs {
		b.WriteString(fmt.Sprintf("#%d %s %s <b>%s</b> %s @ %s",
			tx.ID, tx.Date.Format(dateLayout), tx.Type, esc(tx.Ticker), tx.Shares.String(), tx.PricePerShare.StringFixed(2)))
		if tx.Notes != "" {
			b.WriteString(" - " + esc(tx.Notes))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatPerformance renders the rebased portfolio against its benchmark.
func FormatPerformance(r model.PerformanceReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>Performance</b> | %d days vs %s\n\n", r.Days, esc(r.Comparison.Benchmark)))
	c := r.Comparison
	if n := len(c.Dates); n > 0 {
		port := c.Portfolio[n-1] - 100
		idx := c.Index[n-1] - 100
		b.WriteString(fmt.Sprintf("%s to %s\n", c.Dates[0].Format(dateLayout), c.Dates[n-1].Format(dateLayout)))
		b.WriteString(fmt.Sprintf("%s Portfolio: %+.2f%%\n", arrow(port), port))
		b.WriteString(fmt.Sprintf("%s %s: %+.2f%%\n", arrow(idx), esc(c.Benchmark), idx))
		b.WriteString(fmt.Sprintf("Relative: %+.2f pts\n", port-idx))
	} else {
		b.WriteString("No overlapping history with the benchmark.\n")
	}
	if n := len(r.Valuation); n > 0 {
		b.WriteString(fmt.Sprintf("Basket value: %.2f\n", r.Valuation[n-1].Value))
	}
	if len(r.Dropped) > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ No data: %s\n", esc(strings.Join(r.Dropped, ", "))))
	}
	if len(r.Failed) > 0 {
		tickers := make([]string, 0, len(r.Failed))
		for t := range r.Failed {
			tickers = append(tickers, t)
		}
		sort.Strings(tickers)
		b.WriteString(fmt.Sprintf("⚠️ Fetch failed: %s\n", esc(strings.Join(tickers, ", "))))
	}
	return b.String()
}

func metricLine(name string, m model.Metric, format func(float64) string) string {
	if !m.OK() {
		return fmt.Sprintf("%s: n/a (%s)\n", name, esc(m.Err.Error()))
	}
	return fmt.Sprintf("%s: %s\n", name, format(m.Value))
}

// FormatRisk renders the per-metric risk results; failed metrics show their reason.
func FormatRisk(r model.RiskReport) string {
	pct := func(v float64) string { return fmt.Sprintf("%.2f%%", v*100) }
	num := func(v float64) string { return fmt.Sprintf("%.2f", v) }

	var b strings.Builder
	b.WriteString(fmt.Sprintf("🛡 <b>Risk: %s</b> vs %s\n", esc(r.Ticker), esc(r.Benchmark)))
	if !r.From.IsZero() {
		b.WriteString(fmt.Sprintf("%s to %s, %d observations\n", r.From.Format(dateLayout), r.To.Format(dateLayout), r.Observations))
	}
	b.WriteString("\n")
	b.WriteString(metricLine("Volatility", r.Metrics.Volatility, pct))
	b.WriteString(metricLine("Beta", r.Metrics.Beta, num))
	b.WriteString(metricLine("Max drawdown", r.Metrics.MaxDrawdown, pct))
	b.WriteString(metricLine("Sharpe ratio", r.Metrics.Sharpe, num))
	b.WriteString(metricLine(fmt.Sprintf("VaR %.0f%%", r.Confidence*100), r.Metrics.VaR, pct))
	if r.Commentary != "" {
		b.WriteString("\n🤖 " + esc(r.Commentary) + "\n")
	}
	return b.String()
}

// FormatResearch renders a quote snapshot and an optional overview.
func FormatResearch(s model.ResearchSnapshot, overview string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔎 <b>%s</b>\n\n", esc(s.Symbol)))
	b.WriteString(fmt.Sprintf("Price: %.2f (prev %.2f, %s)\n", s.CurrentPrice, s.PreviousClose, optPct(s.DayChangePct)))
	b.WriteString(fmt.Sprintf("MA200: %s | RSI(14): %s\n", optNum(s.MA200), optNum(s.DailyRSI)))
	b.WriteString(fmt.Sprintf("52w: %s - %s", optNum(s.Low52w), optNum(s.High52w)))
	if s.Position52w != nil {
		b.WriteString(fmt.Sprintf(" (at %.0f%%)", *s.Position52w*100))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("30d: %s - %s\n", optNum(s.Low30d), optNum(s.High30d)))
	if s.Volume > 0 {
		b.WriteString(fmt.Sprintf("Volume: %.0f\n", s.Volume))
	}
	if sc := s.Score; sc != nil {
		b.WriteString(fmt.Sprintf("\n📐 <b>Technical score: %+.2f</b> (%s)\n", sc.Total, esc(sc.Label)))
		for _, f := range sc.Factors {
			b.WriteString(fmt.Sprintf("  %s (%s): %+.1f ×%.2f\n", esc(f.Name), esc(f.Detail), f.Raw, f.Weight))
		}
		if sc.Warning != "" {
			b.WriteString("⚠️ " + esc(sc.Warning) + "\n")
		}
	}
	if overview != "" {
		b.WriteString("\n🤖 " + esc(overview) + "\n")
	}
	return b.String()
}

// FormatNews renders up to limit articles.
func FormatNews(symbol string, articles []model.Article, limit int) string {
	if len(articles) == 0 {
		return fmt.Sprintf("📰 No recent news for %s.", esc(symbol))
	}
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📰 <b>News: %s</b>\n\n", esc(symbol)))
	for _, a := range articles {
		b.WriteString(fmt.Sprintf("• %s ", a.Published.Format(dateLayout)))
		if a.URL != "" {
			b.WriteString(fmt.Sprintf("<a href=\"%s\">%s</a>", esc(a.URL), esc(a.Headline)))
		} else {
			b.WriteString(esc(a.Headline))
		}
		if a.Source != "" {
			b.WriteString(" <i>(" + esc(a.Source) + ")</i>")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatWatchlist renders anchored changes per entry. Failed tickers are listed last.
func FormatWatchlist(entries []model.WatchlistEntry, failed map[string]error) string {
	if len(entries) == 0 {
		return "👀 Watchlist is empty."
	}
	var b strings.Builder
	b.WriteString("👀 <b>Watchlist</b>\n\n")
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("<b>%s</b> %s | 1D %s | 1M %s | 3M %s | 6M %s\n",
			esc(e.Ticker), optNum(e.PriceNow), optPct(e.PctDay), optPct(e.Pct1M), optPct(e.Pct3M), optPct(e.Pct6M)))
	}
	if len(failed) > 0 {
		tickers := make([]string, 0, len(failed))
		for t := range failed {
			tickers = append(tickers, t)
		}
		sort.Strings(tickers)
		b.WriteString(fmt.Sprintf("\n⚠️ Not refreshed: %s\n", esc(strings.Join(tickers, ", "))))
	}
	return b.String()
}

// FormatSectors renders the sector allocation with each sector's share of the total.
func FormatSectors(allocs []model.SectorAllocation) string {
	if len(allocs) == 0 {
		return "🧩 No sector data."
	}
	total := 0.0
	for _, a := range allocs {
		total += a.Value
	}
	var b strings.Builder
	b.WriteString("🧩 <b>Sectors</b>\n\n")
	for _, a := range allocs {
		share := 0.0
		if total > 0 {
			share = a.Value / total * 100
		}
		b.WriteString(fmt.Sprintf("%s: %.2f (%.1f%%)\n", esc(a.Sector), a.Value, share))
	}
	return b.String()
}

// FormatWeeklyReport combines totals, performance and an optional review.
func FormatWeeklyReport(summary model.Summary, perf model.PerformanceReport, review string, at time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗓 <b>PortfolioLens weekly report</b> | %s\n\n", at.Format(dateLayout)))
	b.WriteString(fmt.Sprintf("Total: %.2f (stocks %.2f, cash %.2f)\n\n", summary.TotalPortfolioValue, summary.TotalStockValue, summary.Cash))
	b.WriteString(FormatPerformance(perf))
	if review != "" {
		b.WriteString("\n🤖 " + esc(review) + "\n")
	}
	return b.String()
}
