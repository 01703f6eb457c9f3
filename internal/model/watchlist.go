package model

import "time"

// WatchlistEntry holds anchored price changes for a watched ticker.
// Nil fields are undefined: never fetched, or a zero anchor price.
type WatchlistEntry struct {
	Ticker    string    `json:"ticker"`
	PriceNow  *float64  `json:"price_now"`
	Price1M   *float64  `json:"price_1m"`
	Price3M   *float64  `json:"price_3m"`
	Price6M   *float64  `json:"price_6m"`
	PctDay    *float64  `json:"pct_day"`
	Pct1M     *float64  `json:"pct_1m"`
	Pct3M     *float64  `json:"pct_3m"`
	Pct6M     *float64  `json:"pct_6m"`
	UpdatedAt time.Time `json:"updated_at"`
}
