package calculator

import (
	"fmt"
	"math"

	"PortfolioLens/internal/model"
)

const (
	bars52w = 252
	bars30d = 22
)

// HighLow scans the most recent lookback bars and returns the highest high and lowest low.
func HighLow(bars []model.OHLCV, lookback int) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, fmt.Errorf("high/low over no bars: %w", ErrInsufficientData)
	}
	start := len(bars) - lookback
	if start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range bars[start:] {
		high = math.Max(high, b.High)
		low = math.Min(low, b.Low)
	}
	return high, low, nil
}

// Range52Week returns the 52-week high and low.
func Range52Week(bars []model.OHLCV) (float64, float64, error) { return HighLow(bars, bars52w) }

// Range30Day returns the 30-day high and low.
func Range30Day(bars []model.OHLCV) (float64, float64, error) { return HighLow(bars, bars30d) }

// RangePosition returns where current sits within [low, high], clamped to 0.0~1.0.
func RangePosition(current, high, low float64) (float64, error) {
	if high < low {
		return 0, fmt.Errorf("high %.2f below low %.2f", high, low)
	}
	if high == low {
		return 0, fmt.Errorf("flat range: %w", ErrDivisionUndefined)
	}
	pos := (current - low) / (high - low)
	return math.Min(math.Max(pos, 0), 1), nil
}

// PercentChange returns (current-anchor)/anchor*100.
func PercentChange(current, anchor float64) (float64, error) {
	if anchor == 0 || math.IsNaN(anchor) {
		return 0, fmt.Errorf("anchor %v: %w", anchor, ErrDivisionUndefined)
	}
	return (current - anchor) / anchor * 100, nil
}
