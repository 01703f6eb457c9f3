package strategy

import (
	"fmt"
	"math"

	"PortfolioLens/internal/model"
)

const (
	weightMA200    = 0.40
	weightRSI      = 0.30
	weightPosition = 0.15
	weightTrend    = 0.15
)

func factor(name string, raw, weight float64, detail string) model.TechnicalFactor {
	return model.TechnicalFactor{Name: name, Raw: raw, Weight: weight, Weighted: raw * weight, Detail: detail}
}

// scoreMA200Deviation scores how far the current price sits from MA200.
func scoreMA200Deviation(price, ma200 float64) model.TechnicalFactor {
	deviation := (price - ma200) / ma200 * 100

	var score float64
	switch {
	case deviation <= -20:
		score = 2.0
	case deviation <= -10:
		score = 1.5
	case deviation <= -5:
		score = 1.0
	case deviation <= 0:
		score = 0.5
	case deviation <= 5:
		score = 0
	case deviation <= 10:
		score = -0.5
	case deviation <= 15:
		score = -1.0
	case deviation <= 20:
		score = -1.5
	default:
		score = -2.0
	}
	return factor("MA200 deviation", score, weightMA200, fmt.Sprintf("%+.1f%%", deviation))
}

// scoreRSI scores the daily RSI(14).
func scoreRSI(rsi float64) model.TechnicalFactor {
	var score float64
	switch {
	case rsi <= 25:
		score = 2.0
	case rsi <= 30:
		score = 1.5
	case rsi <= 40:
		score = 1.0
	case rsi <= 45:
		score = 0.5
	case rsi <= 55:
		score = 0
	case rsi <= 60:
		score = -0.5
	case rsi <= 70:
		score = -1.0
	case rsi <= 80:
		score = -1.5
	default:
		score = -2.0
	}
	return factor("Daily RSI", score, weightRSI, fmt.Sprintf("RSI=%.0f", rsi))
}

// score52WeekPosition scores where the price sits in the 52-week range.
// Above 95% it gives -2 only when the other factors average below -1, otherwise -1.
func score52WeekPosition(position, otherFactorsAvg float64) model.TechnicalFactor {
	pos := position * 100

	var score float64
	switch {
	case pos <= 10:
		score = 2.0
	case pos <= 20:
		score = 1.5
	case pos <= 30:
		score = 1.0
	case pos <= 40:
		score = 0.5
	case pos <= 60:
		score = 0
	case pos <= 70:
		score = -0.5
	case pos <= 80:
		score = -1.0
	case pos <= 95:
		score = -1.5
	default:
		if otherFactorsAvg < -1 {
			score = -2.0
		} else {
			score = -1.0
		}
	}
	return factor("52-week position", score, weightPosition, fmt.Sprintf("%.0f%% of range", pos))
}

// scoreTrend combines the MA200 side with 30-day extremes.
// A new 30-day high above MA200 reads as momentum, a new low below it as breakdown.
func scoreTrend(price, ma200, high30d, low30d float64) model.TechnicalFactor {
	above := price > ma200
	nearHigh := high30d > 0 && math.Abs(price-high30d)/high30d < 0.01
	nearLow := low30d > 0 && math.Abs(price-low30d)/low30d < 0.01

	var score float64
	var detail string
	switch {
	case above && nearHigh:
		score, detail = 1.5, "uptrend at 30-day high"
	case above:
		score, detail = 1.0, "above MA200"
	case !above && nearLow:
		score, detail = -1.0, "downtrend at 30-day low"
	default:
		score, detail = -0.5, "below MA200"
	}
	return factor("Trend", score, weightTrend, detail)
}
