package model

import (
	"sort"
	"time"
)

// AlignedSet is a group of close series sharing one date index.
// Every entry of Values has exactly len(Index) elements.
type AlignedSet struct {
	Index   []time.Time          `json:"index"`
	Values  map[string][]float64 `json:"values"`
	Dropped []string             `json:"dropped,omitempty"`
}

// Tickers returns the retained tickers in sorted order.
func (a AlignedSet) Tickers() []string {
	out := make([]string, 0, len(a.Values))
	for t := range a.Values {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// ValuationPoint is the total basket value on one date.
type ValuationPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// ValuationSeries is a basket value series with strictly positive values.
type ValuationSeries []ValuationPoint

// Comparison pairs a rebased portfolio series with a rebased benchmark on shared dates.
type Comparison struct {
	Benchmark string      `json:"benchmark"`
	Dates     []time.Time `json:"dates"`
	Portfolio []float64   `json:"portfolio"`
	Index     []float64   `json:"index"`
}

// PerformanceReport is the basket-vs-benchmark view handed to presentation.
type PerformanceReport struct {
	Days       int               `json:"days"`
	Valuation  ValuationSeries   `json:"valuation"`
	Comparison Comparison        `json:"comparison"`
	Dropped    []string          `json:"dropped,omitempty"`
	Failed     map[string]string `json:"failed,omitempty"`
}
