package model

// ResearchSnapshot holds the quote and technical indicators shown for a single stock.
// Pointer fields are nil when the history was too short to compute them.
type ResearchSnapshot struct {
	Symbol        string   `json:"symbol"`
	CurrentPrice  float64  `json:"current_price"`
	PreviousClose float64  `json:"previous_close"`
	DayChangePct  *float64 `json:"day_change_pct"`
	MA200         *float64 `json:"ma200"`
	DailyRSI      *float64 `json:"daily_rsi"`
	High52w       *float64 `json:"high_52w"`
	Low52w        *float64 `json:"low_52w"`
	High30d       *float64 `json:"high_30d"`
	Low30d        *float64 `json:"low_30d"`
	Position52w   *float64 `json:"position_52w"` // 0.0 ~ 1.0
	Volume        float64  `json:"volume"`

	Score *TechnicalScore `json:"score,omitempty"`
}

// TechnicalFactor is one scored indicator of a TechnicalScore.
type TechnicalFactor struct {
	Name     string  `json:"name"`
	Raw      float64 `json:"raw"` // -2.0 ~ +2.0
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
	Detail   string  `json:"detail"`
}

// TechnicalScore rates how stretched a stock is, from +2 (deeply depressed) to -2 (extended).
type TechnicalScore struct {
	Factors []TechnicalFactor `json:"factors"`
	Total   float64           `json:"total"`
	Label   string            `json:"label"`
	Warning string            `json:"warning,omitempty"`
}
