package calculator

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"PortfolioLens/internal/model"
)

// TradingDaysPerYear annualizes daily statistics.
const TradingDaysPerYear = 252

// RiskOptions parameterizes ComputeRisk.
type RiskOptions struct {
	RiskFreeRate   float64 // annual
	Confidence     float64 // VaR confidence, e.g. 0.95
	PeriodsPerYear float64
}

// DefaultRiskOptions returns a 1% risk-free rate and 95% VaR over daily data.
func DefaultRiskOptions() RiskOptions {
	return RiskOptions{RiskFreeRate: 0.01, Confidence: 0.95, PeriodsPerYear: TradingDaysPerYear}
}

// ComputeRisk computes every risk metric of instrument against benchmark.
// Each metric succeeds or fails on its own.
func ComputeRisk(instrument, benchmark model.PriceSeries, opts RiskOptions) model.RiskMetrics {
	if opts.PeriodsPerYear <= 0 {
		opts.PeriodsPerYear = TradingDaysPerYear
	}

	var m model.RiskMetrics
	dated, err := DatedReturns(instrument)
	if err != nil {
		err = fmt.Errorf("%s: %w", instrument.Symbol, err)
		fail := model.Metric{Err: err}
		return model.RiskMetrics{Volatility: fail, Beta: fail, MaxDrawdown: fail, Sharpe: fail, VaR: fail}
	}
	rets := values(dated)

	m.Volatility = metric(AnnualizedVolatility(rets, opts.PeriodsPerYear))
	m.MaxDrawdown = metric(MaxDrawdown(rets))
	m.Sharpe = metric(SharpeRatio(rets, opts.RiskFreeRate, opts.PeriodsPerYear))
	m.VaR = metric(HistoricalVaR(rets, opts.Confidence))

	benchRets, err := DatedReturns(benchmark)
	if err != nil {
		m.Beta = model.Metric{Err: fmt.Errorf("benchmark %s: %w", benchmark.Symbol, err)}
	} else {
		m.Beta = metric(Beta(dated, benchRets))
	}
	return m
}

func metric(v float64, err error) model.Metric {
	if err != nil {
		return model.Metric{Err: err}
	}
	return model.Metric{Value: v}
}

// AnnualizedVolatility is the sample standard deviation of returns scaled by sqrt(periodsPerYear).
func AnnualizedVolatility(returns []float64, periodsPerYear float64) (float64, error) {
	if len(returns) < 2 {
		return 0, fmt.Errorf("volatility needs 2 returns, have %d: %w", len(returns), ErrInsufficientData)
	}
	return stat.StdDev(returns, nil) * math.Sqrt(periodsPerYear), nil
}

// Beta is cov(instrument, benchmark) / var(benchmark) over the dates both return series share.
func Beta(instrument, benchmark []model.PricePoint) (float64, error) {
	byDate := make(map[int64]float64, len(benchmark))
	for _, p := range benchmark {
		byDate[p.Date.Unix()] = p.Close
	}
	var xs, ys []float64
	for _, p := range instrument {
		if b, ok := byDate[p.Date.Unix()]; ok {
			xs = append(xs, p.Close)
			ys = append(ys, b)
		}
	}
	if len(xs) < 2 {
		return 0, fmt.Errorf("beta needs 2 matched returns, have %d: %w", len(xs), ErrInsufficientData)
	}
	if constant(ys) {
		return 0, fmt.Errorf("benchmark variance is zero: %w", ErrDivisionUndefined)
	}
	return stat.Covariance(xs, ys, nil) / stat.Variance(ys, nil), nil
}

// MaxDrawdown is the deepest fall of the cumulative growth index below its running peak,
// as a fraction in [-1, 0]. The index starts at 1 on the first price.
func MaxDrawdown(returns []float64) (float64, error) {
	if len(returns) == 0 {
		return 0, fmt.Errorf("drawdown needs 1 return: %w", ErrInsufficientData)
	}
	growth, peak, worst := 1.0, 1.0, 0.0
	for _, r := range returns {
		growth *= 1 + r
		if growth > peak {
			peak = growth
		}
		if dd := (growth - peak) / peak; dd < worst {
			worst = dd
		}
	}
	return worst, nil
}

// SharpeRatio is mean(excess)/stdev(excess) * sqrt(periodsPerYear) with
// excess = r - riskFreeRate/periodsPerYear.
func SharpeRatio(returns []float64, riskFreeRate, periodsPerYear float64) (float64, error) {
	if len(returns) < 2 {
		return 0, fmt.Errorf("sharpe needs 2 returns, have %d: %w", len(returns), ErrInsufficientData)
	}
	daily := riskFreeRate / periodsPerYear
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - daily
	}
	if constant(excess) {
		return 0, fmt.Errorf("excess return deviation is zero: %w", ErrDivisionUndefined)
	}
	return stat.Mean(excess, nil) / stat.StdDev(excess, nil) * math.Sqrt(periodsPerYear), nil
}

// HistoricalVaR returns the (1-confidence) quantile of returns, interpolating
// linearly between order statistics. A negative value is a loss threshold.
func HistoricalVaR(returns []float64, confidence float64) (float64, error) {
	if confidence <= 0 || confidence >= 1 {
		return 0, errors.New("confidence must be within (0, 1)")
	}
	if len(returns) < 2 {
		return 0, fmt.Errorf("VaR needs 2 returns, have %d: %w", len(returns), ErrInsufficientData)
	}
	return percentile(returns, (1-confidence)*100), nil
}

// constant reports whether every value equals the first, i.e. the variance is exactly zero.
func constant(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}

// percentile follows the linear method: rank = p/100 * (n-1).
func percentile(data []float64, p float64) float64 {
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
