package calculator

import (
	"fmt"
	"math"

	"PortfolioLens/internal/model"
)

// Reconstruct values the basket on every aligned date as the sum of close x shares over
// retained tickers. Dates whose total is not a positive finite number are left out.
func Reconstruct(set model.AlignedSet, shares map[string]float64) (model.ValuationSeries, error) {
	tickers := set.Tickers()
	out := make(model.ValuationSeries, 0, len(set.Index))
	for i, d := range set.Index {
		total := 0.0
		for _, t := range tickers {
			n, ok := shares[t]
			if !ok {
				continue
			}
			total += set.Values[t][i] * n
		}
		if math.IsNaN(total) || math.IsInf(total, 0) || total <= 0 {
			continue
		}
		out = append(out, model.ValuationPoint{Date: d, Value: total})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no positive basket value: %w", ErrAlignmentEmpty)
	}
	return out, nil
}

// Rebase scales values so the first one becomes 100.
func Rebase(values []float64) ([]float64, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("rebase of empty series: %w", ErrInsufficientData)
	}
	first := values[0]
	if first == 0 || math.IsNaN(first) || math.IsInf(first, 0) {
		return nil, fmt.Errorf("rebase with first value %v: %w", first, ErrInsufficientData)
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v / first * 100
	}
	return out, nil
}

// Compare rebases the portfolio and the benchmark independently and pairs them on the
// dates both series contain.
func Compare(portfolio model.ValuationSeries, benchmark model.PriceSeries) (model.Comparison, error) {
	cmp := model.Comparison{Benchmark: benchmark.Symbol}

	pv := make([]float64, len(portfolio))
	for i, p := range portfolio {
		pv[i] = p.Value
	}
	pr, err := Rebase(pv)
	if err != nil {
		return cmp, fmt.Errorf("portfolio: %w", err)
	}
	br, err := Rebase(benchmark.Closes())
	if err != nil {
		return cmp, fmt.Errorf("benchmark %s: %w", benchmark.Symbol, err)
	}

	byDate := make(map[int64]float64, len(br))
	for i, p := range benchmark.Points {
		byDate[p.Date.Unix()] = br[i]
	}
	for i, p := range portfolio {
		b, ok := byDate[p.Date.Unix()]
		if !ok {
			continue
		}
		cmp.Dates = append(cmp.Dates, p.Date)
		cmp.Portfolio = append(cmp.Portfolio, pr[i])
		cmp.Index = append(cmp.Index, b)
	}
	return cmp, nil
}
