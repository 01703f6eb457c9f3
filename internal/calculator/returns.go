package calculator

import (
	"fmt"

	"PortfolioLens/internal/model"
)

// Returns computes simple period-over-period returns: r[i] = p[i+1]/p[i] - 1.
func Returns(prices []float64) ([]float64, error) {
	if len(prices) < 2 {
		return nil, fmt.Errorf("returns need 2 prices, have %d: %w", len(prices), ErrInsufficientData)
	}
	out := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			return nil, fmt.Errorf("zero price at index %d: %w", i-1, ErrDivisionUndefined)
		}
		out[i-1] = prices[i]/prices[i-1] - 1
	}
	return out, nil
}

// DatedReturns computes returns keyed by the date of the later price.
func DatedReturns(series model.PriceSeries) ([]model.PricePoint, error) {
	rets, err := Returns(series.Closes())
	if err != nil {
		return nil, err
	}
	out := make([]model.PricePoint, len(rets))
	for i, r := range rets {
		out[i] = model.PricePoint{Date: series.Points[i+1].Date, Close: r}
	}
	return out, nil
}

func values(points []model.PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Close
	}
	return out
}
