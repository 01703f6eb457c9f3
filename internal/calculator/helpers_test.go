package calculator

import (
	"time"

	"PortfolioLens/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dailySeries lays closes out on consecutive calendar days starting at start.
func dailySeries(symbol string, start time.Time, closes ...float64) model.PriceSeries {
	pts := make([]model.PricePoint, len(closes))
	for i, c := range closes {
		pts[i] = model.PricePoint{Date: start.AddDate(0, 0, i), Close: c}
	}
	return model.NewPriceSeries(symbol, pts)
}

func datedSeries(symbol string, pts ...model.PricePoint) model.PriceSeries {
	return model.NewPriceSeries(symbol, pts)
}

func pt(d time.Time, c float64) model.PricePoint { return model.PricePoint{Date: d, Close: c} }
