package model

import (
	"math"
	"sort"
	"time"
)

// OHLCV represents a single daily candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PricePoint is one dated close.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries holds the closes of one instrument in strictly increasing date order.
// Treat it as immutable once built.
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// NewPriceSeries builds a PriceSeries from raw provider points. Points are sorted by
// date, non-finite closes are dropped and duplicate calendar days keep the later point.
func NewPriceSeries(symbol string, points []PricePoint) PriceSeries {
	clean := make([]PricePoint, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.Close) || math.IsInf(p.Close, 0) {
			continue
		}
		clean = append(clean, PricePoint{Date: Day(p.Date), Close: p.Close})
	}
	sort.SliceStable(clean, func(i, j int) bool { return clean[i].Date.Before(clean[j].Date) })

	out := clean[:0]
	for _, p := range clean {
		if n := len(out); n > 0 && out[n-1].Date.Equal(p.Date) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return PriceSeries{Symbol: symbol, Points: out}
}

// SeriesFromBars converts daily bars to a close series.
func SeriesFromBars(symbol string, bars []OHLCV) PriceSeries {
	points := make([]PricePoint, len(bars))
	for i, b := range bars {
		points[i] = PricePoint{Date: b.Time, Close: b.Close}
	}
	return NewPriceSeries(symbol, points)
}

// Len returns the number of points.
func (s PriceSeries) Len() int { return len(s.Points) }

// Closes returns the close values in date order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// Day truncates t to its calendar date, expressed in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Quote is a point-in-time price snapshot for one symbol.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	PreviousClose float64   `json:"previous_close"`
	DayHigh       float64   `json:"day_high,omitempty"`
	DayLow        float64   `json:"day_low,omitempty"`
	High52w       float64   `json:"high_52w,omitempty"`
	Low52w        float64   `json:"low_52w,omitempty"`
	Volume        float64   `json:"volume,omitempty"`
	Currency      string    `json:"currency,omitempty"`
	FetchedAt     time.Time `json:"fetched_at"`
}
