package calculator

import (
	"sort"
	"time"

	"PortfolioLens/internal/model"
)

// PriceOnOrBefore resolves a calendar date to a trading-day close.
// A date before the first point clamps to the first close; otherwise the latest
// close on or before the date is returned.
func PriceOnOrBefore(series model.PriceSeries, date time.Time) (float64, error) {
	pts := series.Points
	if len(pts) == 0 {
		return 0, ErrMissing
	}
	target := model.Day(date)
	if target.Before(pts[0].Date) {
		return pts[0].Close, nil
	}
	// first index strictly after target
	i := sort.Search(len(pts), func(i int) bool { return pts[i].Date.After(target) })
	return pts[i-1].Close, nil
}
