package notifier

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"PortfolioLens/internal/model"
)

func f(v float64) *float64 { return &v }

var day = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestFormatPortfolio(t *testing.T) {
	out := FormatPortfolio(
		model.Summary{Cash: 100, TotalStockValue: 900, TotalPortfolioValue: 1000, TotalChange: -5, ChangePct: -0.5},
		[]model.Position{{Ticker: "AAPL", Shares: 5, SharePrice: 180, TotalValue: 900, TotalChange: -5}},
		day,
	)
	assert.Contains(t, out, "<b>AAPL</b> 5 @ 180.00 = 900.00 (-5.00)")
	assert.Contains(t, out, "<b>Total: 1000.00</b>")
	assert.Contains(t, out, "Day change: -5.00 (-0.50%)")
	assert.Contains(t, out, "🔴")
}

func TestFormatTransaction(t *testing.T) {
	tx := model.Transaction{
		ID: 7, Type: model.TransactionSell, Ticker: "MSFT",
		Shares: decimal.NewFromInt(2), PricePerShare: decimal.NewFromFloat(410.5), TotalValue: decimal.NewFromFloat(821),
	}
	assert.Equal(t, "💵 <b>Sell MSFT</b> 2 @ 410.50 = 821.00 (#7)", FormatTransaction(tx))
}

func TestFormatTransactions_EscapesNotes(t *testing.T) {
	out := FormatTransactions([]model.Transaction{{
		ID: 1, Date: day, Type: model.TransactionBuy, Ticker: "AAPL",
		Shares: decimal.NewFromInt(1), PricePerShare: decimal.NewFromInt(100), Notes: "a<b",
	}})
	assert.Contains(t, out, "#1 2024-03-01 Buy <b>AAPL</b> 1 @ 100.00 - a&lt;b")
	assert.Equal(t, "📜 No transactions recorded.", FormatTransactions(nil))
}

func TestFormatPerformance(t *testing.T) {
	r := model.PerformanceReport{
		Days: 30,
		Comparison: model.Comparison{
			Benchmark: "^GSPC",
			Dates:     []time.Time{day, day.AddDate(0, 0, 1)},
			Portfolio: []float64{100, 120},
			Index:     []float64{100, 105},
		},
		Dropped: []string{"ZZZ"},
		Failed:  map[string]string{"BAD": "boom"},
	}
	out := FormatPerformance(r)
	assert.Contains(t, out, "30 days vs ^GSPC")
	assert.Contains(t, out, "Portfolio: +20.00%")
	assert.Contains(t, out, "^GSPC: +5.00%")
	assert.Contains(t, out, "Relative: +15.00 pts")
	assert.Contains(t, out, "No data: ZZZ")
	assert.Contains(t, out, "Fetch failed: BAD")

	empty := FormatPerformance(model.PerformanceReport{Days: 7})
	assert.Contains(t, empty, "No overlapping history")
}

func TestFormatRisk_ShowsMetricStatus(t *testing.T) {
	r := model.RiskReport{
		Ticker: "AAPL", Benchmark: "SPY", Confidence: 0.95,
		Metrics: model.RiskMetrics{
			Volatility:  model.Metric{Value: 0.25},
			Beta:        model.Metric{Err: errors.New("insufficient data")},
			MaxDrawdown: model.Metric{Value: -0.1},
			Sharpe:      model.Metric{Value: 1.234},
			VaR:         model.Metric{Value: -0.031},
		},
	}
	out := FormatRisk(r)
	assert.Contains(t, out, "Volatility: 25.00%")
	assert.Contains(t, out, "Beta: n/a (insufficient data)")
	assert.Contains(t, out, "Max drawdown: -10.00%")
	assert.Contains(t, out, "Sharpe ratio: 1.23")
	assert.Contains(t, out, "VaR 95%: -3.10%")
}

func TestFormatResearch(t *testing.T) {
	s := model.ResearchSnapshot{
		Symbol: "NVDA", CurrentPrice: 110, PreviousClose: 100, DayChangePct: f(10),
		MA200: f(95), Low52w: f(50), High52w: f(150), Position52w: f(0.6),
	}
	s.Score = &model.TechnicalScore{
		Total: 0.6, Label: "Oversold",
		Factors: []model.TechnicalFactor{{Name: "Daily RSI", Detail: "RSI=38", Raw: 1, Weight: 0.3}},
	}
	out := FormatResearch(s, "Strong trend")
	assert.Contains(t, out, "Technical score: +0.60</b> (Oversold)")
	assert.Contains(t, out, "Daily RSI (RSI=38): +1.0 ×0.30")
	assert.Contains(t, out, "Price: 110.00 (prev 100.00, +10.00%)")
	assert.Contains(t, out, "MA200: 95.00 | RSI(14): n/a")
	assert.Contains(t, out, "52w: 50.00 - 150.00 (at 60%)")
	assert.Contains(t, out, "🤖 Strong trend")
}

func TestFormatNews_Limit(t *testing.T) {
	arts := []model.Article{
		{Headline: "One", URL: "https://x/1", Source: "Wire", Published: day},
		{Headline: "Two", Published: day},
	}
	out := FormatNews("AAPL", arts, 1)
	assert.Contains(t, out, `<a href="https://x/1">One</a> <i>(Wire)</i>`)
	assert.NotContains(t, out, "Two")
	assert.Contains(t, FormatNews("AAPL", nil, 5), "No recent news")
}

func TestFormatWatchlist(t *testing.T) {
	out := FormatWatchlist([]model.WatchlistEntry{
		{Ticker: "AAPL", PriceNow: f(190), PctDay: f(1), Pct1M: f(-2.5)},
		{Ticker: "NEW"},
	}, map[string]error{"NEW": errors.New("x")})
	assert.Contains(t, out, "<b>AAPL</b> 190.00 | 1D +1.00% | 1M -2.50% | 3M n/a | 6M n/a")
	assert.Contains(t, out, "<b>NEW</b> n/a")
	assert.Contains(t, out, "Not refreshed: NEW")
}

func TestFormatSectors(t *testing.T) {
	out := FormatSectors([]model.SectorAllocation{{Sector: "Technology", Value: 750}, {Sector: "Energy", Value: 250}})
	assert.Contains(t, out, "Technology: 750.00 (75.0%)")
	assert.Contains(t, out, "Energy: 250.00 (25.0%)")
}
