package commentary

import (
	"fmt"
	"strings"

	"PortfolioLens/internal/model"
)

const (
	sectorSystem = "You are a financial assistant that classifies companies into one of the provided sectors."
	sectorPrompt = "Classify the company with ticker %s into exactly one of these sectors: %s. " +
		"Respond with only the sector name, nothing else."

	riskSystem = "You are a quantitative finance expert specializing in stock risk analysis. " +
		"Given stock risk metrics, briefly define each metric, interpret what its value means for the " +
		"stock's risk and return profile, and close with a summary of the overall risk profile. " +
		"Metrics reported as unavailable must be acknowledged, not guessed."

	researchSystem = "You are a financial analyst. Given stock data, give a clear, professional summary " +
		"of the price action, the technical picture and the main risks. Do not give personalized advice."

	portfolioSystem = "You are a portfolio analyst. Comment briefly on the portfolio totals and on how " +
		"the portfolio performed against its benchmark over the period."
)

// RiskPrompt lists the metrics of report, marking undefined ones.
func RiskPrompt(report model.RiskReport) string {
	m := report.Metrics
	var sb strings.Builder
	fmt.Fprintf(&sb, "Here are the risk metrics for %s over %s to %s:\n",
		strings.ToUpper(report.Ticker), report.From.Format("2006-01-02"), report.To.Format("2006-01-02"))
	fmt.Fprintf(&sb, "- Annualized Volatility: %s\n", percent(m.Volatility))
	fmt.Fprintf(&sb, "- Beta vs %s: %s\n", report.Benchmark, number(m.Beta))
	fmt.Fprintf(&sb, "- Max Drawdown: %s\n", percent(m.MaxDrawdown))
	fmt.Fprintf(&sb, "- Sharpe Ratio: %s\n", number(m.Sharpe))
	fmt.Fprintf(&sb, "- %.0f%% Value at Risk (daily): %s\n", report.Confidence*100, percent(m.VaR))
	return sb.String()
}

// ResearchPrompt lists the quote and indicators of snap.
func ResearchPrompt(snap model.ResearchSnapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Analyze %s using these metrics:\n", strings.ToUpper(snap.Symbol))
	fmt.Fprintf(&sb, "PRICING: current %.2f, previous close %.2f, day change %s\n",
		snap.CurrentPrice, snap.PreviousClose, optional(snap.DayChangePct, "%.2f%%"))
	fmt.Fprintf(&sb, "TRADING RANGES: 52-week %s to %s (position %s), 30-day %s to %s\n",
		optional(snap.Low52w, "%.2f"), optional(snap.High52w, "%.2f"), optional(snap.Position52w, "%.2f"),
		optional(snap.Low30d, "%.2f"), optional(snap.High30d, "%.2f"))
	fmt.Fprintf(&sb, "TECHNICALS: MA200 %s, daily RSI(14) %s\n",
		optional(snap.MA200, "%.2f"), optional(snap.DailyRSI, "%.1f"))
	fmt.Fprintf(&sb, "VOLUME: %.0f\n", snap.Volume)
	if snap.Score != nil {
		fmt.Fprintf(&sb, "TECHNICAL SCORE: %+.2f (%s)\n", snap.Score.Total, snap.Score.Label)
	}
	return sb.String()
}

// PortfolioPrompt describes the totals and the rebased end values of the comparison.
func PortfolioPrompt(summary model.Summary, perf model.PerformanceReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Portfolio totals: stock value %.2f, cash %.2f, total %.2f, day change %.2f (%.2f%%).\n",
		summary.TotalStockValue, summary.Cash, summary.TotalPortfolioValue, summary.TotalChange, summary.ChangePct)
	cmp := perf.Comparison
	if n := len(cmp.Dates); n > 0 {
		fmt.Fprintf(&sb, "Over the last %d days (rebased to 100): portfolio %.2f, %s %.2f.\n",
			perf.Days, cmp.Portfolio[n-1], cmp.Benchmark, cmp.Index[n-1])
	}
	if len(perf.Dropped) > 0 {
		fmt.Fprintf(&sb, "No price history for: %s.\n", strings.Join(perf.Dropped, ", "))
	}
	return sb.String()
}

func percent(m model.Metric) string {
	if !m.OK() {
		return "unavailable (" + m.Err.Error() + ")"
	}
	return fmt.Sprintf("%.2f%%", m.Value*100)
}

func number(m model.Metric) string {
	if !m.OK() {
		return "unavailable (" + m.Err.Error() + ")"
	}
	return fmt.Sprintf("%.2f", m.Value)
}

func optional(v *float64, format string) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf(format, *v)
}
