// Package strategy rates a research snapshot with a weighted multi-factor technical score.
package strategy

import "PortfolioLens/internal/model"

// Labels maps total scores to a reading, highest threshold first.
var Labels = []struct {
	MinScore float64
	Label    string
}{
	{1.2, "Deeply oversold"},
	{0.5, "Oversold"},
	{-0.5, "Neutral"},
	{-1.2, "Overbought"},
}

// DefaultLabel is the reading for scores below every threshold.
const DefaultLabel = "Extended"

func label(total float64) string {
	for _, l := range Labels {
		if total >= l.MinScore {
			return l.Label
		}
	}
	return DefaultLabel
}

// Assess scores the indicators present in snap. Factors whose inputs are missing are
// left out and the remaining weights rescaled. It returns nil when no factor applies.
func Assess(snap model.ResearchSnapshot) *model.TechnicalScore {
	price := snap.CurrentPrice
	if price <= 0 {
		return nil
	}

	var factors []model.TechnicalFactor
	if snap.MA200 != nil && *snap.MA200 > 0 {
		factors = append(factors, scoreMA200Deviation(price, *snap.MA200))
		if snap.High30d != nil && snap.Low30d != nil {
			factors = append(factors, scoreTrend(price, *snap.MA200, *snap.High30d, *snap.Low30d))
		}
	}
	if snap.DailyRSI != nil {
		factors = append(factors, scoreRSI(*snap.DailyRSI))
	}
	if snap.Position52w != nil {
		avg := 0.0
		for _, f := range factors {
			avg += f.Raw
		}
		if len(factors) > 0 {
			avg /= float64(len(factors))
		}
		factors = append(factors, score52WeekPosition(*snap.Position52w, avg))
	}
	if len(factors) == 0 {
		return nil
	}

	weights := 0.0
	for _, f := range factors {
		weights += f.Weight
	}
	total := 0.0
	for i := range factors {
		factors[i].Weight /= weights
		factors[i].Weighted = factors[i].Raw * factors[i].Weight
		total += factors[i].Weighted
	}

	score := &model.TechnicalScore{Factors: factors, Total: total, Label: label(total)}
	if snap.DailyRSI != nil && *snap.DailyRSI > 85 {
		score.Warning = "RSI above 85, consider taking profit"
	}
	return score
}
